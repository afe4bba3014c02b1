package executor

import (
	"fmt"
	"strings"
	"time"

	"aws-audit-collector/internal/awserrors"
)

// TaskResult 表示单个目标的成功结果，携带来源目标信息
type TaskResult[T any] struct {
	Target   Target
	Data     T
	Duration time.Duration
}

// Failure 表示单个目标的失败记录
type Failure struct {
	Target   Target
	Category awserrors.Category
	Code     string
	Message  string
}

func (f Failure) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Category, f.Target, f.Code)
}

// CollectionResult 汇总一次并行采集的全部结果
// 由 ExecuteAll 构建，返回后不再修改；成功与失败的顺序反映完成顺序而非提交顺序
type CollectionResult[T any] struct {
	Results  []TaskResult[T]
	Failures []Failure
}

// SuccessCount 返回成功目标数
func (r *CollectionResult[T]) SuccessCount() int {
	return len(r.Results)
}

// ErrorCount 返回失败目标数
func (r *CollectionResult[T]) ErrorCount() int {
	return len(r.Failures)
}

// Values 返回全部成功值（去掉目标标记）
func (r *CollectionResult[T]) Values() []T {
	out := make([]T, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Data)
	}
	return out
}

// ErrorSummary 返回失败记录的汇总文本，用于日志与诊断
func (r *CollectionResult[T]) ErrorSummary() string {
	if len(r.Failures) == 0 {
		return ""
	}
	lines := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, "\n")
}

// Flatten 将返回切片的 worker 的成功结果摊平为单个切片
// 用于 worker 本身返回集合（如一个区域内的多个卷）的场景
func Flatten[E any](r *CollectionResult[[]E]) []E {
	var out []E
	for _, res := range r.Results {
		out = append(out, res.Data...)
	}
	return out
}
