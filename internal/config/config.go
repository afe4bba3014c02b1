// 配置包：定义账号与全局配置结构，提供 YAML 加载能力
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CloudAccount 描述单个 AWS 账号的审计范围与凭证
type CloudAccount struct {
	AccountID       string   `yaml:"account_id"`
	AccountName     string   `yaml:"account_name"`
	AccessKeyID     string   `yaml:"access_key_id"`
	AccessKeySecret string   `yaml:"access_key_secret"`
	Regions         []string `yaml:"regions"`
	// Audits 指定要执行的审计类型（ebs/natgw/elb/s3），"*" 表示全部
	Audits []string `yaml:"audits"`
}

// ServerConf 全局运行参数
type ServerConf struct {
	Port int `yaml:"port"`
	// TargetConcurrency 控制账号×区域目标的并行度
	TargetConcurrency int `yaml:"target_concurrency"`
	// MetricMaxRetries 控制 GetMetricData 限流重试次数
	MetricMaxRetries int `yaml:"metric_max_retries"`
	// Window 指标回看窗口，支持 d 后缀（如 "30d"）
	Window string `yaml:"window"`
	// Period 指标聚合周期（秒），默认 86400（按天）
	Period int        `yaml:"period"`
	Log    *LogConfig `yaml:"log"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string         `yaml:"level"`
	Format string         `yaml:"format"`
	Output string         `yaml:"output"`
	File   *FileLogConfig `yaml:"file"`
}

// FileLogConfig 文件日志轮转配置
type FileLogConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Config 汇总全部配置
type Config struct {
	Server   *ServerConf    `yaml:"server"`
	Accounts []CloudAccount `yaml:"accounts"`
}

const (
	defaultTargetConcurrency = 20
	defaultMetricMaxRetries  = 3
	defaultPeriodSeconds     = 86400
	defaultWindow            = "30d"
)

// Concurrency 返回目标并行度，未配置时使用默认值
func (c *Config) Concurrency() int {
	if c.Server != nil && c.Server.TargetConcurrency > 0 {
		return c.Server.TargetConcurrency
	}
	return defaultTargetConcurrency
}

// MetricRetries 返回指标批量查询的限流重试次数
func (c *Config) MetricRetries() int {
	if c.Server != nil && c.Server.MetricMaxRetries > 0 {
		return c.Server.MetricMaxRetries
	}
	return defaultMetricMaxRetries
}

// Period 返回指标聚合周期
func (c *Config) Period() time.Duration {
	if c.Server != nil && c.Server.Period > 0 {
		return time.Duration(c.Server.Period) * time.Second
	}
	return defaultPeriodSeconds * time.Second
}

// Window 返回指标回看窗口
func (c *Config) Window() time.Duration {
	w := defaultWindow
	if c.Server != nil && c.Server.Window != "" {
		w = c.Server.Window
	}
	d, err := ParseDuration(w)
	if err != nil {
		d, _ = ParseDuration(defaultWindow)
	}
	return d
}

// ParseDuration 解析时长字符串，在标准单位之外支持 d（天）后缀
func ParseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// Validate 验证配置的完整性和合法性
func (c *Config) Validate() error {
	var errs []string

	if c.Server != nil {
		if c.Server.Port < 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("invalid port: %d (must be 0-65535)", c.Server.Port))
		}
		if c.Server.TargetConcurrency < 0 || c.Server.TargetConcurrency > 100 {
			errs = append(errs, fmt.Sprintf("invalid target_concurrency: %d (must be 0-100)", c.Server.TargetConcurrency))
		}
		if c.Server.Window != "" {
			if _, err := ParseDuration(c.Server.Window); err != nil {
				errs = append(errs, fmt.Sprintf("invalid window: %s", c.Server.Window))
			}
		}
		if c.Server.Log != nil {
			level := strings.ToLower(c.Server.Log.Level)
			validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true}
			if !validLevels[level] {
				errs = append(errs, fmt.Sprintf("invalid log level: %s", c.Server.Log.Level))
			}
			output := strings.ToLower(c.Server.Log.Output)
			validOutputs := map[string]bool{"": true, "stdout": true, "console": true, "file": true, "both": true}
			if !validOutputs[output] {
				errs = append(errs, fmt.Sprintf("invalid log output: %s", c.Server.Log.Output))
			}
		}
	}

	if len(c.Accounts) == 0 {
		errs = append(errs, "no accounts configured")
	}
	for i, acc := range c.Accounts {
		if acc.AccountID == "" {
			errs = append(errs, fmt.Sprintf("account[%d].account_id is required", i))
		}
		if acc.AccessKeyID == "" {
			errs = append(errs, fmt.Sprintf("account[%d].access_key_id is required", i))
		}
		if acc.AccessKeySecret == "" {
			errs = append(errs, fmt.Sprintf("account[%d].access_key_secret is required", i))
		}
		if len(acc.Regions) == 0 {
			errs = append(errs, fmt.Sprintf("account[%d].regions is empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
