package cloudwatch

import "strings"

// 各服务的默认指标列表。调用方传入 nil 时使用这些默认值。
var (
	defaultLambdaMetrics = []string{"Invocations", "Errors", "Throttles", "Duration", "ConcurrentExecutions"}
	defaultRDSMetrics    = []string{"DatabaseConnections", "CPUUtilization", "ReadIOPS", "WriteIOPS"}
	defaultCacheMetrics  = []string{"CurrConnections", "CPUUtilization"}
	defaultEC2Metrics    = []string{"CPUUtilization", "NetworkIn", "NetworkOut"}
	defaultNATMetrics    = []string{
		"BytesOutToDestination",
		"BytesInFromSource",
		"PacketsOutToDestination",
		"PacketsInFromSource",
		"ActiveConnectionCount",
		"ConnectionAttemptCount",
	}
	defaultSageMakerMetrics = []string{"Invocations", "InvocationsPerInstance"}
)

// BuildLambdaQueries 为 Lambda 函数生成指标查询
//
// Duration 同时取 Average/Maximum/Minimum 三个统计量，
// ConcurrentExecutions 取 Maximum，其余指标取 Sum。
// 查询 ID 为清洗后的函数名加统计量后缀（如 my_func_invocations_sum）。
func BuildLambdaQueries(functionNames []string, metricNames []string) []MetricQuery {
	if metricNames == nil {
		metricNames = defaultLambdaMetrics
	}

	var queries []MetricQuery
	for _, funcName := range functionNames {
		safeID := SanitizeMetricID(funcName)
		dims := []Dimension{{Name: "FunctionName", Value: funcName}}

		for _, metric := range metricNames {
			metricLower := strings.ToLower(metric)
			switch metric {
			case "Duration":
				for _, s := range []struct {
					stat   string
					suffix string
				}{{"Average", "_avg"}, {"Maximum", "_max"}, {"Minimum", "_min"}} {
					queries = append(queries, MetricQuery{
						ID:         safeID + "_" + metricLower + s.suffix,
						Namespace:  "AWS/Lambda",
						MetricName: metric,
						Dimensions: dims,
						Stat:       s.stat,
					})
				}
			case "ConcurrentExecutions":
				queries = append(queries, MetricQuery{
					ID:         safeID + "_" + metricLower + "_max",
					Namespace:  "AWS/Lambda",
					MetricName: metric,
					Dimensions: dims,
					Stat:       "Maximum",
				})
			default:
				queries = append(queries, MetricQuery{
					ID:         safeID + "_" + metricLower + "_sum",
					Namespace:  "AWS/Lambda",
					MetricName: metric,
					Dimensions: dims,
					Stat:       "Sum",
				})
			}
		}
	}
	return queries
}

// BuildRDSQueries 为 RDS 实例生成指标查询，全部取 Average
func BuildRDSQueries(instanceIDs []string, metricNames []string) []MetricQuery {
	if metricNames == nil {
		metricNames = defaultRDSMetrics
	}

	var queries []MetricQuery
	for _, dbID := range instanceIDs {
		safeID := SanitizeMetricID(dbID)
		dims := []Dimension{{Name: "DBInstanceIdentifier", Value: dbID}}

		for _, metric := range metricNames {
			queries = append(queries, MetricQuery{
				ID:         safeID + "_" + strings.ToLower(metric) + "_avg",
				Namespace:  "AWS/RDS",
				MetricName: metric,
				Dimensions: dims,
				Stat:       "Average",
			})
		}
	}
	return queries
}

// BuildElastiCacheQueries 为 ElastiCache 集群生成指标查询
//
// dimensionName 为 ReplicationGroupId 或 CacheClusterId，全部取 Average。
func BuildElastiCacheQueries(clusterIDs []string, dimensionName string, metricNames []string) []MetricQuery {
	if dimensionName == "" {
		dimensionName = "ReplicationGroupId"
	}
	if metricNames == nil {
		metricNames = defaultCacheMetrics
	}

	var queries []MetricQuery
	for _, clusterID := range clusterIDs {
		safeID := SanitizeMetricID(clusterID)
		dims := []Dimension{{Name: dimensionName, Value: clusterID}}

		for _, metric := range metricNames {
			queries = append(queries, MetricQuery{
				ID:         safeID + "_" + strings.ToLower(metric) + "_avg",
				Namespace:  "AWS/ElastiCache",
				MetricName: metric,
				Dimensions: dims,
				Stat:       "Average",
			})
		}
	}
	return queries
}

// BuildNATGatewayQueries 为 NAT 网关生成指标查询，全部取 Sum
func BuildNATGatewayQueries(natGatewayIDs []string, metricNames []string) []MetricQuery {
	if metricNames == nil {
		metricNames = defaultNATMetrics
	}

	var queries []MetricQuery
	for _, natID := range natGatewayIDs {
		safeID := SanitizeMetricID(natID)
		dims := []Dimension{{Name: "NatGatewayId", Value: natID}}

		for _, metric := range metricNames {
			queries = append(queries, MetricQuery{
				ID:         safeID + "_" + strings.ToLower(metric) + "_sum",
				Namespace:  "AWS/NATGateway",
				MetricName: metric,
				Dimensions: dims,
				Stat:       "Sum",
			})
		}
	}
	return queries
}

// BuildEC2Queries 为 EC2 实例生成指标查询
//
// CPUUtilization 同时取 Average 和 Maximum，网络指标取 Sum。
func BuildEC2Queries(instanceIDs []string, metricNames []string) []MetricQuery {
	if metricNames == nil {
		metricNames = defaultEC2Metrics
	}

	var queries []MetricQuery
	for _, instanceID := range instanceIDs {
		safeID := SanitizeMetricID(instanceID)
		dims := []Dimension{{Name: "InstanceId", Value: instanceID}}

		for _, metric := range metricNames {
			metricLower := strings.ToLower(metric)
			if metric == "CPUUtilization" {
				for _, s := range []struct {
					stat   string
					suffix string
				}{{"Average", "_avg"}, {"Maximum", "_max"}} {
					queries = append(queries, MetricQuery{
						ID:         safeID + "_" + metricLower + s.suffix,
						Namespace:  "AWS/EC2",
						MetricName: metric,
						Dimensions: dims,
						Stat:       s.stat,
					})
				}
			} else {
				queries = append(queries, MetricQuery{
					ID:         safeID + "_" + metricLower + "_sum",
					Namespace:  "AWS/EC2",
					MetricName: metric,
					Dimensions: dims,
					Stat:       "Sum",
				})
			}
		}
	}
	return queries
}

// BuildSageMakerEndpointQueries 为 SageMaker Endpoint 生成指标查询，全部取 Sum
func BuildSageMakerEndpointQueries(endpointNames []string, metricNames []string) []MetricQuery {
	if metricNames == nil {
		metricNames = defaultSageMakerMetrics
	}

	var queries []MetricQuery
	for _, endpointName := range endpointNames {
		safeID := SanitizeMetricID(endpointName)
		dims := []Dimension{{Name: "EndpointName", Value: endpointName}}

		for _, metric := range metricNames {
			queries = append(queries, MetricQuery{
				ID:         safeID + "_" + strings.ToLower(metric) + "_sum",
				Namespace:  "AWS/SageMaker",
				MetricName: metric,
				Dimensions: dims,
				Stat:       "Sum",
			})
		}
	}
	return queries
}
