package cloudwatch

// MaxBatchSize 是 GetMetricData 单次请求允许的最大查询数
const MaxBatchSize = 500

// PlanBatches 将查询列表按顺序切分为批次，每批不超过 maxBatchSize 条。
// maxBatchSize 小于 1 时按 MaxBatchSize 处理。切分保持原有顺序，
// 空列表返回空切片。
func PlanBatches(queries []MetricQuery, maxBatchSize int) [][]MetricQuery {
	if maxBatchSize < 1 {
		maxBatchSize = MaxBatchSize
	}

	batches := make([][]MetricQuery, 0, (len(queries)+maxBatchSize-1)/maxBatchSize)
	for start := 0; start < len(queries); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(queries) {
			end = len(queries)
		}
		batches = append(batches, queries[start:end])
	}
	return batches
}
