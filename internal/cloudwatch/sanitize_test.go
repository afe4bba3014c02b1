package cloudwatch

import (
	"regexp"
	"strings"
	"testing"
)

func TestSanitizeMetricID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"合法名称保持不变", "my_func", "my_func"},
		{"特殊字符替换为下划线", "my-lambda-func.prod", "my_lambda_func_prod"},
		{"连续特殊字符压缩", "a--b..c", "a_b_c"},
		{"数字开头加前缀", "123-func", "m_123_func"},
		{"纯数字", "42", "m_42"},
		{"空字符串回退", "", "metric"},
		{"仅特殊字符回退", "---", "metric"},
		{"下划线开头被去除", "_internal", "internal"},
		{"非 ASCII 字符", "函数名", "metric"},
		{"混合非 ASCII", "fn-测试-v2", "fn_v2"},
		{"ARN 风格", "arn:aws:lambda:us-east-1:123456789012:function:my-func", "arn_aws_lambda_us_east_1_123456789012_function_my_func"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeMetricID(tt.input); got != tt.want {
				t.Errorf("SanitizeMetricID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeMetricID_Truncation(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SanitizeMetricID(long)
	if len(got) != 200 {
		t.Errorf("长名称应截断到 200 字符，got len=%d", len(got))
	}
}

func TestSanitizeMetricID_Grammar(t *testing.T) {
	// 任意输入的结果都必须匹配 GetMetricData 的 ID 语法
	valid := regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,199}$`)
	inputs := []string{
		"", "---", "___", "123", "_1_", "my-func", "函数", "a b c",
		strings.Repeat("x-", 200), "9" + strings.Repeat("z", 250),
	}
	for _, in := range inputs {
		got := SanitizeMetricID(in)
		if !valid.MatchString(got) {
			t.Errorf("SanitizeMetricID(%q) = %q 不符合 ID 语法", in, got)
		}
	}
}

func TestSanitizeMetricID_Idempotent(t *testing.T) {
	inputs := []string{"my-func.prod", "123-func", "", "---", "_x_", "normal_name"}
	for _, in := range inputs {
		once := SanitizeMetricID(in)
		twice := SanitizeMetricID(once)
		if once != twice {
			t.Errorf("SanitizeMetricID 应幂等: %q -> %q -> %q", in, once, twice)
		}
	}
}
