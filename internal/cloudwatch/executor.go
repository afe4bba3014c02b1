package cloudwatch

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"aws-audit-collector/internal/awserrors"
	"aws-audit-collector/internal/logger"
	"aws-audit-collector/internal/metrics"
)

// API 定义执行器依赖的 CloudWatch 接口，便于测试时注入 mock
type API interface {
	GetMetricData(ctx context.Context, params *cw.GetMetricDataInput, optFns ...func(*cw.Options)) (*cw.GetMetricDataOutput, error)
}

// RetryConfig 定义限流重试配置
type RetryConfig struct {
	// MaxRetries 最大重试次数（不包括首次尝试），默认 3
	MaxRetries int
	// InitialDelay 初始延迟时间，默认 200ms
	InitialDelay time.Duration
	// MaxDelay 最大延迟时间，默认 5s
	MaxDelay time.Duration
	// BackoffFactor 退避因子，默认 2.0（指数退避）
	BackoffFactor float64
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// BatchExecutor 以批次方式执行 GetMetricData 查询
//
// 每批最多 MaxBatchSize 条查询，批内自动翻页。遇到限流错误时
// 整批从头重试（丢弃本次尝试已取到的所有分页数据），其他错误
// 直接返回。重试采用指数退避。
type BatchExecutor struct {
	client API
	retry  RetryConfig
}

// NewBatchExecutor 创建批量查询执行器
func NewBatchExecutor(client API, retry RetryConfig) *BatchExecutor {
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	if retry.InitialDelay <= 0 {
		retry.InitialDelay = 200 * time.Millisecond
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = 5 * time.Second
	}
	if retry.BackoffFactor <= 0 {
		retry.BackoffFactor = 2.0
	}
	return &BatchExecutor{client: client, retry: retry}
}

// Execute 执行全部查询并返回 id 到数值的映射
//
// 每个查询 ID 的所有数据点求和（跨分页累加）。CloudWatch 未返回
// 数据的 ID 以 0 填充，保证结果中每个查询 ID 都有值。
// 任一批次失败时返回 nil 和错误。
func (e *BatchExecutor) Execute(ctx context.Context, queries []MetricQuery, start, end time.Time, period int32) (map[string]float64, error) {
	result := make(map[string]float64, len(queries))
	for _, batch := range PlanBatches(queries, MaxBatchSize) {
		series, err := e.fetchBatch(ctx, batch, start, end, period)
		if err != nil {
			return nil, err
		}
		for id, values := range series {
			var sum float64
			for _, v := range values {
				sum += v
			}
			result[id] += sum
		}
	}
	// 没有数据点的查询回填 0
	for _, q := range queries {
		if _, ok := result[q.ID]; !ok {
			result[q.ID] = 0
		}
	}
	return result, nil
}

// ExecuteSeries 执行全部查询并返回 id 到数据点序列的映射
//
// 与 Execute 的区别是保留每个周期的原始数据点（按返回顺序追加），
// 供需要逐日/逐周期判断的审计使用。未返回数据的 ID 对应空序列。
func (e *BatchExecutor) ExecuteSeries(ctx context.Context, queries []MetricQuery, start, end time.Time, period int32) (map[string][]float64, error) {
	result := make(map[string][]float64, len(queries))
	for _, batch := range PlanBatches(queries, MaxBatchSize) {
		series, err := e.fetchBatch(ctx, batch, start, end, period)
		if err != nil {
			return nil, err
		}
		for id, values := range series {
			result[id] = append(result[id], values...)
		}
	}
	for _, q := range queries {
		if _, ok := result[q.ID]; !ok {
			result[q.ID] = nil
		}
	}
	return result, nil
}

// fetchBatch 取回单个批次的全部分页数据
//
// 限流时丢弃本次尝试的中间结果，整批从第一页重新开始，
// 避免翻页令牌失效导致的数据缺失。
func (e *BatchExecutor) fetchBatch(ctx context.Context, batch []MetricQuery, start, end time.Time, period int32) (map[string][]float64, error) {
	dataQueries := toDataQueries(batch, period)
	ctxLog := logger.NewContextLogger("CloudWatch", "batch_size", len(batch))

	attempt := 0
	for {
		scratch := make(map[string][]float64, len(batch))
		token := ""
		var throttleErr error

		for {
			input := &cw.GetMetricDataInput{
				MetricDataQueries: dataQueries,
				StartTime:         aws.Time(start),
				EndTime:           aws.Time(end),
			}
			if token != "" {
				input.NextToken = aws.String(token)
			}

			reqStart := time.Now()
			out, err := e.client.GetMetricData(ctx, input)
			if err != nil {
				category := awserrors.Classify(err)
				metrics.RecordAPICall("cloudwatch", "GetMetricData", string(category), time.Since(reqStart).Seconds())
				if category != awserrors.CategoryThrottling {
					ctxLog.Warnf("GetMetricData API调用失败: %v", err)
					return nil, err
				}
				throttleErr = err
				break
			}
			metrics.RecordAPICall("cloudwatch", "GetMetricData", "success", time.Since(reqStart).Seconds())

			for _, r := range out.MetricDataResults {
				if r.Id == nil {
					continue
				}
				scratch[*r.Id] = append(scratch[*r.Id], r.Values...)
			}

			if out.NextToken == nil || *out.NextToken == "" {
				return scratch, nil
			}
			token = *out.NextToken
		}

		// 限流：达到重试上限则放弃，否则退避后整批重来
		if attempt >= e.retry.MaxRetries {
			ctxLog.Warnf("GetMetricData 限流重试 %d 次后仍失败: %v", e.retry.MaxRetries, throttleErr)
			return nil, throttleErr
		}

		delay := backoffDelay(e.retry, attempt)
		ctxLog.Warnf("GetMetricData 被限流（第 %d 次重试，%v 后重试）: %v", attempt+1, delay, throttleErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		attempt++
	}
}

// toDataQueries 将查询转换为 SDK 的 MetricDataQuery
func toDataQueries(batch []MetricQuery, period int32) []cwtypes.MetricDataQuery {
	dataQueries := make([]cwtypes.MetricDataQuery, 0, len(batch))
	for _, q := range batch {
		dims := make([]cwtypes.Dimension, 0, len(q.Dimensions))
		for _, d := range q.Dimensions {
			dims = append(dims, cwtypes.Dimension{
				Name:  aws.String(d.Name),
				Value: aws.String(d.Value),
			})
		}
		dataQueries = append(dataQueries, cwtypes.MetricDataQuery{
			Id: aws.String(q.ID),
			MetricStat: &cwtypes.MetricStat{
				Metric: &cwtypes.Metric{
					Namespace:  aws.String(q.Namespace),
					MetricName: aws.String(q.MetricName),
					Dimensions: dims,
				},
				Period: aws.Int32(period),
				Stat:   aws.String(q.Stat),
			},
		})
	}
	return dataQueries
}

// backoffDelay 计算第 attempt 次重试前的等待时间（指数退避，封顶 MaxDelay）
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay) * pow(cfg.BackoffFactor, float64(attempt)))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// pow 计算 x 的 y 次方（简单实现，避免引入 math 包）
func pow(x, y float64) float64 {
	result := 1.0
	for i := 0; i < int(y); i++ {
		result *= x
	}
	return result
}
