// Package audit 实现各类闲置资源的审计流程
//
// 每类审计按账号×区域展开为目标列表，经 executor 并行收集，
// 指标类判定统一走 cloudwatch 批量查询。
package audit

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"aws-audit-collector/internal/awsclient"
	"aws-audit-collector/internal/cloudwatch"
	"aws-audit-collector/internal/config"
	"aws-audit-collector/internal/executor"
	"aws-audit-collector/internal/logger"
	"aws-audit-collector/internal/metrics"
)

// 审计类型名，与配置中 audits 字段对应
const (
	AuditEBS   = "ebs"
	AuditNATGW = "natgw"
	AuditELB   = "elb"
	AuditS3    = "s3"
)

// EC2API 定义审计依赖的 EC2 接口
type EC2API interface {
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
	DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error)
}

// S3API 定义审计依赖的 S3 接口
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// ELBAPI 定义审计依赖的 Classic ELB 接口
type ELBAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancing.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancing.Options)) (*elasticloadbalancing.DescribeLoadBalancersOutput, error)
}

// ELBv2API 定义审计依赖的 ALB/NLB 接口
type ELBv2API interface {
	DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error)
}

// Clients 定义审计获取各服务客户端的入口，便于测试时注入 mock
type Clients interface {
	CloudWatch(ctx context.Context, account config.CloudAccount, region string) (cloudwatch.API, error)
	EC2(ctx context.Context, account config.CloudAccount, region string) (EC2API, error)
	S3(ctx context.Context, account config.CloudAccount, region string) (S3API, error)
	ELB(ctx context.Context, account config.CloudAccount, region string) (ELBAPI, error)
	ELBv2(ctx context.Context, account config.CloudAccount, region string) (ELBv2API, error)
}

// cacheClients 把 awsclient.Cache 适配为 Clients 接口
type cacheClients struct {
	cache *awsclient.Cache
}

func (c cacheClients) CloudWatch(ctx context.Context, account config.CloudAccount, region string) (cloudwatch.API, error) {
	return c.cache.CloudWatch(ctx, account, region)
}

func (c cacheClients) EC2(ctx context.Context, account config.CloudAccount, region string) (EC2API, error) {
	return c.cache.EC2(ctx, account, region)
}

func (c cacheClients) S3(ctx context.Context, account config.CloudAccount, region string) (S3API, error) {
	return c.cache.S3(ctx, account, region)
}

func (c cacheClients) ELB(ctx context.Context, account config.CloudAccount, region string) (ELBAPI, error) {
	return c.cache.ELB(ctx, account, region)
}

func (c cacheClients) ELBv2(ctx context.Context, account config.CloudAccount, region string) (ELBv2API, error) {
	return c.cache.ELBv2(ctx, account, region)
}

// Runner 驱动一次完整的审计运行
type Runner struct {
	cfg      *config.Config
	clients  Clients
	accounts map[string]config.CloudAccount
}

// NewRunner 创建审计运行器，客户端缓存由本次运行独占
func NewRunner(cfg *config.Config, cache *awsclient.Cache) *Runner {
	return newRunner(cfg, cacheClients{cache: cache})
}

func newRunner(cfg *config.Config, clients Clients) *Runner {
	accounts := make(map[string]config.CloudAccount, len(cfg.Accounts))
	for _, acc := range cfg.Accounts {
		accounts[acc.AccountID] = acc
	}
	return &Runner{cfg: cfg, clients: clients, accounts: accounts}
}

// BuildTargets 将配置展开为账号×区域的目标列表
func (r *Runner) BuildTargets() []executor.Target {
	var targets []executor.Target
	for _, acc := range r.cfg.Accounts {
		for _, region := range acc.Regions {
			targets = append(targets, executor.Target{
				AccountID:   acc.AccountID,
				AccountName: acc.AccountName,
				Region:      region,
			})
		}
	}
	return targets
}

// accountTargets 每个账号只取一个目标（首个配置区域），
// 用于 S3 这类账号级全局资源，避免跨区域重复收集。
func (r *Runner) accountTargets() []executor.Target {
	var targets []executor.Target
	for _, acc := range r.cfg.Accounts {
		if len(acc.Regions) == 0 {
			continue
		}
		targets = append(targets, executor.Target{
			AccountID:   acc.AccountID,
			AccountName: acc.AccountName,
			Region:      acc.Regions[0],
		})
	}
	return targets
}

// filterEnabled 过滤出启用了指定审计类型的目标
func (r *Runner) filterEnabled(targets []executor.Target, audit string) []executor.Target {
	var enabled []executor.Target
	for _, t := range targets {
		if r.auditEnabled(r.accounts[t.AccountID], audit) {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

// auditEnabled 判断账号是否启用指定审计（空列表和 "*" 表示全部）
func (r *Runner) auditEnabled(account config.CloudAccount, audit string) bool {
	if len(account.Audits) == 0 {
		return true
	}
	for _, a := range account.Audits {
		if a == "*" || a == audit {
			return true
		}
	}
	return false
}

// window 返回本次运行的指标时间窗口
func (r *Runner) window() (time.Time, time.Time) {
	end := time.Now()
	return end.Add(-r.cfg.Window()), end
}

// periodSeconds 返回指标聚合周期（秒）
func (r *Runner) periodSeconds() int32 {
	return int32(r.cfg.Period() / time.Second)
}

// batchExecutor 为目标区域的 CloudWatch 客户端构建批量执行器
func (r *Runner) batchExecutor(client cloudwatch.API) *cloudwatch.BatchExecutor {
	retry := cloudwatch.DefaultRetryConfig()
	retry.MaxRetries = r.cfg.MetricRetries()
	return cloudwatch.NewBatchExecutor(client, retry)
}

// RunAll 执行全部启用的审计并更新指标
func (r *Runner) RunAll(ctx context.Context) {
	started := time.Now()
	ctxLog := logger.NewContextLogger("Audit")
	ctxLog.Info("开始审计运行")

	publish(AuditEBS, r.CollectIdleVolumes(ctx))
	publish(AuditNATGW, r.CollectIdleNatGateways(ctx))
	publish(AuditELB, r.CollectIdleLoadBalancers(ctx))
	publish(AuditS3, r.CollectInactiveBuckets(ctx))

	metrics.CollectionDuration.Observe(time.Since(started).Seconds())
	ctxLog.Infof("审计运行完成, 耗时 %v", time.Since(started))
}

// publish 将单类审计结果写入 prometheus 指标并输出摘要日志
func publish[T any](audit string, result *executor.CollectionResult[[]T]) {
	total := 0
	for _, tr := range result.Results {
		metrics.IdleResources.WithLabelValues(audit, tr.Target.AccountID, tr.Target.Region).Set(float64(len(tr.Data)))
		total += len(tr.Data)
	}

	failuresByCategory := make(map[string]int)
	for _, f := range result.Failures {
		failuresByCategory[string(f.Category)]++
	}
	for category, count := range failuresByCategory {
		metrics.TargetFailures.WithLabelValues(audit, category).Set(float64(count))
	}

	ctxLog := logger.NewContextLogger("Audit", "audit", audit)
	if result.ErrorCount() > 0 {
		ctxLog.Warnf("收集完成: 闲置资源 %d, 成功目标 %d, 失败目标 %d (%s)",
			total, result.SuccessCount(), result.ErrorCount(), result.ErrorSummary())
		return
	}
	ctxLog.Infof("收集完成: 闲置资源 %d, 成功目标 %d", total, result.SuccessCount())
}
