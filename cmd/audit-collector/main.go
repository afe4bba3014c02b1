// 审计采集器主入口：加载配置、注册指标、定时触发审计并暴露 /metrics
package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"aws-audit-collector/internal/audit"
	"aws-audit-collector/internal/awsclient"
	"aws-audit-collector/internal/config"
	"aws-audit-collector/internal/logger"
	"aws-audit-collector/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// main 启动 HTTP 服务并周期性执行审计
func main() {
	cfg, err := config.Load(os.Getenv("AUDIT_CONFIG"))
	if err != nil {
		logger.Log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server != nil && cfg.Server.Log != nil {
		logger.Init(cfg.Server.Log)
	}
	defer logger.Sync()

	logger.Log.Infof("配置加载完成: accounts=%d concurrency=%d window=%v",
		len(cfg.Accounts), cfg.Concurrency(), cfg.Window())

	port := os.Getenv("AUDIT_PORT")
	if port == "" {
		if cfg.Server != nil && cfg.Server.Port > 0 {
			port = strconv.Itoa(cfg.Server.Port)
		} else {
			port = "9110"
		}
	}

	// 审计周期：默认每 6 小时一轮，可用环境变量覆盖
	interval := 6 * time.Hour
	if envInterval := os.Getenv("AUDIT_INTERVAL"); envInterval != "" {
		if d, err := config.ParseDuration(envInterval); err == nil {
			interval = d
		} else {
			logger.Log.Warnf("Warning: invalid AUDIT_INTERVAL env: %v", err)
		}
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	go func() {
		ctx := context.Background()
		for {
			// 客户端缓存由单次运行独占，跨轮不复用过期凭证
			runner := audit.NewRunner(cfg, awsclient.New())
			runner.RunAll(ctx)
			logger.Log.Infof("审计完成，休眠 %v", interval)
			time.Sleep(interval)
		}
	}()

	http.Handle("/metrics", promhttp.Handler())
	logger.Log.Infof("服务启动，端口=%s", port)
	logger.Log.Fatal(http.ListenAndServe(":"+port, nil))
}
