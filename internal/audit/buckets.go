package audit

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"aws-audit-collector/internal/cloudwatch"
	"aws-audit-collector/internal/executor"
)

// InactiveBucket 描述一个窗口期内没有任何请求的 S3 存储桶
type InactiveBucket struct {
	Target          executor.Target
	Name            string
	DaysWithTraffic int
	WindowDays      int
}

// CollectInactiveBuckets 收集全部账号的不活跃 S3 存储桶
//
// 存储桶是账号级资源，每个账号只在首个配置区域收集一次。
// 按天取 AllRequests 数据点，窗口期内有流量的天数为 0 即判定为
// 不活跃。依赖桶开启了请求指标（FilterId=EntireBucket），未开启的
// 桶取不到数据点，同样会被报出，需人工甄别。
func (r *Runner) CollectInactiveBuckets(ctx context.Context) *executor.CollectionResult[[]InactiveBucket] {
	targets := r.filterEnabled(r.accountTargets(), AuditS3)
	return executor.ExecuteAll(ctx, targets, r.collectBucketsForTarget, r.cfg.Concurrency())
}

func (r *Runner) collectBucketsForTarget(ctx context.Context, target executor.Target) ([]InactiveBucket, error) {
	account := r.accounts[target.AccountID]
	s3Client, err := r.clients.S3(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	out, err := s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("ListBuckets 失败: %w", err)
	}
	if len(out.Buckets) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}

	cwClient, err := r.clients.CloudWatch(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	start, end := r.window()
	windowDays := int(end.Sub(start).Hours() / 24)

	series, err := r.batchExecutor(cwClient).ExecuteSeries(ctx, buildBucketRequestQueries(names), start, end, 86400)
	if err != nil {
		return nil, fmt.Errorf("查询存储桶请求数失败: %w", err)
	}

	var inactive []InactiveBucket
	for _, name := range names {
		safeID := cloudwatch.SanitizeMetricID(name)
		daysWithTraffic := 0
		for _, v := range series[safeID+"_allrequests_sum"] {
			if v > 0 {
				daysWithTraffic++
			}
		}
		if daysWithTraffic > 0 {
			continue
		}
		inactive = append(inactive, InactiveBucket{
			Target:          target,
			Name:            name,
			DaysWithTraffic: daysWithTraffic,
			WindowDays:      windowDays,
		})
	}
	return inactive, nil
}

// buildBucketRequestQueries 为存储桶生成按天聚合的 AllRequests 查询
func buildBucketRequestQueries(names []string) []cloudwatch.MetricQuery {
	var queries []cloudwatch.MetricQuery
	for _, name := range names {
		queries = append(queries, cloudwatch.MetricQuery{
			ID:         cloudwatch.SanitizeMetricID(name) + "_allrequests_sum",
			Namespace:  "AWS/S3",
			MetricName: "AllRequests",
			Dimensions: []cloudwatch.Dimension{
				{Name: "BucketName", Value: name},
				{Name: "FilterId", Value: "EntireBucket"},
			},
			Stat: "Sum",
		})
	}
	return queries
}
