// Package cloudwatch 提供 CloudWatch GetMetricData 的批量查询引擎
//
// 相比逐个指标调用 GetMetricStatistics，GetMetricData 单次调用可查询
// 最多 500 个指标，大幅减少 API 调用次数。本包负责查询 ID 规范化、
// 批次切分、分页拉取、限流退避重试与结果合并。
package cloudwatch

import (
	"regexp"
	"strings"
)

// Dimension 表示一个有序的指标维度键值对
type Dimension struct {
	Name  string
	Value string
}

// MetricQuery 描述单个命名的指标查询
//
// ID 必须满足 ^[A-Za-z][A-Za-z0-9_]{0,199}$ 且在同一次查询内唯一，
// 通过 SanitizeMetricID 加指标后缀的方式构造（见 builders.go）
type MetricQuery struct {
	ID         string
	Namespace  string
	MetricName string
	Dimensions []Dimension
	Stat       string
}

var (
	nonWordRun    = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	underscoreRun = regexp.MustCompile(`_+`)
	digitStart    = regexp.MustCompile(`^[0-9]`)
)

// SanitizeMetricID 将任意资源名转换为合法的查询 ID
//
// 规则（与 GetMetricData 的 ID 约束对应）：
//   - 连续的非法字符压缩为单个下划线
//   - 去掉开头的下划线，以数字开头时追加 m_ 前缀
//   - 空结果回退为 "metric"
//   - 截断到 200 字符（为指标后缀预留空间）
//
// 结果始终匹配 ^[A-Za-z][A-Za-z0-9_]{0,199}$，确定且幂等；
// 不保证无碰撞，唯一性由调用方通过后缀约定保证。
func SanitizeMetricID(name string) string {
	sanitized := nonWordRun.ReplaceAllString(name, "_")
	sanitized = underscoreRun.ReplaceAllString(sanitized, "_")
	sanitized = strings.TrimLeft(sanitized, "_")

	if digitStart.MatchString(sanitized) {
		sanitized = "m_" + sanitized
	}
	if sanitized == "" {
		sanitized = "metric"
	}
	if len(sanitized) > 200 {
		sanitized = sanitized[:200]
	}
	return sanitized
}
