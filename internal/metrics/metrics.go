// 指标包：统一定义审计采集过程的 prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestTotal AWS API 请求次数统计，status 为分类后的结果（success/throttling/...）
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_api_request_total",
			Help: " - AWS API 请求次数统计",
		},
		[]string{"service", "api", "status"},
	)
	// RequestDuration AWS API 请求耗时
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_api_request_duration_seconds",
			Help:    " - AWS API 请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "api"},
	)
	// RateLimitTotal AWS API 限流次数统计
	RateLimitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_api_rate_limit_total",
			Help: " - AWS API 限流次数统计",
		},
		[]string{"service", "api"},
	)
	// IdleResources 各审计类型发现的闲置资源数量
	IdleResources = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audit_idle_resources",
			Help: " - 闲置资源数量（按审计类型/账号/区域）",
		},
		[]string{"audit", "account_id", "region"},
	)
	// TargetFailures 上一轮采集中按类别统计的目标失败数
	TargetFailures = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audit_target_failures",
			Help: " - 上一轮采集失败的目标数（按审计类型/错误类别）",
		},
		[]string{"audit", "category"},
	)
	// CollectionDuration 单轮审计总耗时
	CollectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_collection_duration_seconds",
			Help:    " - 审计周期总耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// MustRegister 将本包全部指标注册到给定 registry
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		RequestTotal,
		RequestDuration,
		RateLimitTotal,
		IdleResources,
		TargetFailures,
		CollectionDuration,
	)
}

// RecordAPICall 记录一次 API 调用结果，限流额外计数
func RecordAPICall(service, api, status string, seconds float64) {
	RequestTotal.WithLabelValues(service, api, status).Inc()
	RequestDuration.WithLabelValues(service, api).Observe(seconds)
	if status == "throttling" {
		RateLimitTotal.WithLabelValues(service, api).Inc()
	}
}
