// Package executor 提供按目标并行执行采集任务的调度能力
//
// Map-Reduce 模式：同一个 worker 回调在多个 (账号, 区域) 目标上并行执行，
// 单个目标的失败被分类后记录为数据，不影响其他目标，也不会从 ExecuteAll 抛出。
package executor

import (
	"context"
	"sync"
	"time"

	"aws-audit-collector/internal/awserrors"
	"aws-audit-collector/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Worker 是在单个目标上执行的采集回调
// 返回错误时该目标被记录为 Failure；重试是 worker 自己的事情，调度器不做重试
type Worker[T any] func(ctx context.Context, target Target) (T, error)

// ExecuteAll 在所有目标上并行执行 worker，并发数不超过 maxConcurrency
//
// 语义约定：
//   - 每个目标恰好调用一次 worker
//   - worker 报错时按 awserrors 分类追加到失败列表，绝不向外抛出
//   - 全部目标到达终态后才返回，没有遗留的后台 goroutine
//   - maxConcurrency < 1 时按 1 处理
func ExecuteAll[T any](ctx context.Context, targets []Target, worker Worker[T], maxConcurrency int) *CollectionResult[T] {
	result := &CollectionResult[T]{}
	if len(targets) == 0 {
		return result
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	logger.Log.Debugf("并行执行开始 目标数=%d 并发上限=%d", len(targets), maxConcurrency)
	start := time.Now()

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrency)

	for _, target := range targets {
		target := target
		g.Go(func() error {
			taskStart := time.Now()
			data, err := worker(ctx, target)
			if err != nil {
				category := awserrors.Classify(err)
				code := awserrors.ErrorCode(err)
				if category == awserrors.CategoryNotFound {
					logger.Log.Debugf("目标跳过 target=%s category=%s code=%s", target, category, code)
				} else {
					logger.Log.Warnf("目标失败 target=%s category=%s error=%v", target, category, err)
				}
				mu.Lock()
				result.Failures = append(result.Failures, Failure{
					Target:   target,
					Category: category,
					Code:     code,
					Message:  err.Error(),
				})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			result.Results = append(result.Results, TaskResult[T]{
				Target:   target,
				Data:     data,
				Duration: time.Since(taskStart),
			})
			mu.Unlock()
			return nil
		})
	}
	// worker 错误已转为 Failure 数据，这里的等待不会返回错误
	_ = g.Wait()

	logger.Log.Infof("并行执行完成 成功=%d 失败=%d 耗时=%s", result.SuccessCount(), result.ErrorCount(), time.Since(start))
	return result
}
