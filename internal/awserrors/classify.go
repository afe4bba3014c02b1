// Package awserrors 提供 AWS API 错误的统一分类逻辑
package awserrors

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// Category 表示统一的错误类别
// 分类结果决定上层的处理策略：跳过、重试或立即上报
type Category string

const (
	// CategoryAccessDenied 表示权限不足或凭证无效
	// 此类错误不应重试，通常记录后跳过该目标
	CategoryAccessDenied Category = "access_denied"
	// CategoryNotFound 表示资源不存在
	// 此类错误不应重试，低严重度，记录后跳过
	CategoryNotFound Category = "not_found"
	// CategoryThrottling 表示限流错误
	// 此类错误应该使用指数退避策略重试
	CategoryThrottling Category = "throttling"
	// CategoryOther 表示无法明确分类的错误，必须立即上报
	CategoryOther Category = "error"
)

// Classify 将 AWS API 错误分类为统一的错误类别
// 优先使用 smithy.APIError 携带的结构化错误码，其次回退到消息关键字匹配。
// nil 与无法识别的错误均归为 CategoryOther。
func Classify(err error) Category {
	if err == nil {
		return CategoryOther
	}
	return classifyCode(ErrorCode(err))
}

// ErrorCode 提取错误码字符串
// smithy.APIError 返回其 ErrorCode，否则返回完整错误消息用于关键字匹配
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return err.Error()
}

// IsThrottling 判断错误是否为限流错误
func IsThrottling(err error) bool {
	return Classify(err) == CategoryThrottling
}

func classifyCode(code string) Category {
	c := strings.ToLower(code)
	if c == "" {
		return CategoryOther
	}
	for _, kw := range []string{"accessdenied", "unauthorized", "forbidden", "expiredtoken", "invalidclienttokenid"} {
		if strings.Contains(c, kw) {
			return CategoryAccessDenied
		}
	}
	for _, kw := range []string{"notfound", "nosuch", "doesnotexist"} {
		if strings.Contains(c, kw) {
			return CategoryNotFound
		}
	}
	for _, kw := range []string{"throttl", "ratelimit", "toomanyrequests", "rate exceeded", "requestlimitexceeded", "slowdown"} {
		if strings.Contains(c, kw) {
			return CategoryThrottling
		}
	}
	return CategoryOther
}
