package cloudwatch

import "testing"

func queryByID(t *testing.T, queries []MetricQuery, id string) MetricQuery {
	t.Helper()
	for _, q := range queries {
		if q.ID == id {
			return q
		}
	}
	t.Fatalf("未找到查询 ID %s", id)
	return MetricQuery{}
}

func TestBuildLambdaQueries_Defaults(t *testing.T) {
	queries := BuildLambdaQueries([]string{"my-func"}, nil)

	// Invocations/Errors/Throttles 各 1 条 Sum，Duration 3 条，ConcurrentExecutions 1 条
	if len(queries) != 7 {
		t.Fatalf("查询数 = %d, want 7", len(queries))
	}

	inv := queryByID(t, queries, "my_func_invocations_sum")
	if inv.Namespace != "AWS/Lambda" || inv.MetricName != "Invocations" || inv.Stat != "Sum" {
		t.Errorf("Invocations 查询字段错误: %+v", inv)
	}
	if len(inv.Dimensions) != 1 || inv.Dimensions[0].Name != "FunctionName" || inv.Dimensions[0].Value != "my-func" {
		t.Errorf("维度应使用原始函数名: %+v", inv.Dimensions)
	}

	for _, want := range []struct {
		id   string
		stat string
	}{
		{"my_func_duration_avg", "Average"},
		{"my_func_duration_max", "Maximum"},
		{"my_func_duration_min", "Minimum"},
		{"my_func_concurrentexecutions_max", "Maximum"},
	} {
		q := queryByID(t, queries, want.id)
		if q.Stat != want.stat {
			t.Errorf("%s 统计量 = %s, want %s", want.id, q.Stat, want.stat)
		}
	}
}

func TestBuildLambdaQueries_CustomMetrics(t *testing.T) {
	queries := BuildLambdaQueries([]string{"fn-a", "fn-b"}, []string{"Invocations"})
	if len(queries) != 2 {
		t.Fatalf("查询数 = %d, want 2", len(queries))
	}
	queryByID(t, queries, "fn_a_invocations_sum")
	queryByID(t, queries, "fn_b_invocations_sum")
}

func TestBuildRDSQueries(t *testing.T) {
	queries := BuildRDSQueries([]string{"prod-db"}, nil)
	if len(queries) != 4 {
		t.Fatalf("查询数 = %d, want 4", len(queries))
	}
	for _, q := range queries {
		if q.Namespace != "AWS/RDS" || q.Stat != "Average" {
			t.Errorf("RDS 查询应为 AWS/RDS + Average: %+v", q)
		}
		if q.Dimensions[0].Name != "DBInstanceIdentifier" || q.Dimensions[0].Value != "prod-db" {
			t.Errorf("维度错误: %+v", q.Dimensions)
		}
	}
	queryByID(t, queries, "prod_db_databaseconnections_avg")
	queryByID(t, queries, "prod_db_cpuutilization_avg")
}

func TestBuildElastiCacheQueries(t *testing.T) {
	queries := BuildElastiCacheQueries([]string{"redis-main"}, "", nil)
	if len(queries) != 2 {
		t.Fatalf("查询数 = %d, want 2", len(queries))
	}
	q := queryByID(t, queries, "redis_main_currconnections_avg")
	if q.Dimensions[0].Name != "ReplicationGroupId" {
		t.Errorf("默认维度应为 ReplicationGroupId, got %s", q.Dimensions[0].Name)
	}

	queries = BuildElastiCacheQueries([]string{"memcached-1"}, "CacheClusterId", []string{"CPUUtilization"})
	q = queryByID(t, queries, "memcached_1_cpuutilization_avg")
	if q.Dimensions[0].Name != "CacheClusterId" {
		t.Errorf("维度名应可覆盖, got %s", q.Dimensions[0].Name)
	}
}

func TestBuildNATGatewayQueries(t *testing.T) {
	queries := BuildNATGatewayQueries([]string{"nat-0abc123"}, nil)
	if len(queries) != 6 {
		t.Fatalf("查询数 = %d, want 6", len(queries))
	}
	q := queryByID(t, queries, "nat_0abc123_bytesouttodestination_sum")
	if q.Namespace != "AWS/NATGateway" || q.Stat != "Sum" {
		t.Errorf("NAT 查询字段错误: %+v", q)
	}
	if q.Dimensions[0].Name != "NatGatewayId" || q.Dimensions[0].Value != "nat-0abc123" {
		t.Errorf("维度错误: %+v", q.Dimensions)
	}
}

func TestBuildEC2Queries(t *testing.T) {
	queries := BuildEC2Queries([]string{"i-0123456789abcdef0"}, nil)
	// CPU 2 条 + NetworkIn/NetworkOut 各 1 条
	if len(queries) != 4 {
		t.Fatalf("查询数 = %d, want 4", len(queries))
	}
	avg := queryByID(t, queries, "i_0123456789abcdef0_cpuutilization_avg")
	if avg.Stat != "Average" {
		t.Errorf("CPU avg 统计量 = %s", avg.Stat)
	}
	max := queryByID(t, queries, "i_0123456789abcdef0_cpuutilization_max")
	if max.Stat != "Maximum" {
		t.Errorf("CPU max 统计量 = %s", max.Stat)
	}
	netIn := queryByID(t, queries, "i_0123456789abcdef0_networkin_sum")
	if netIn.Stat != "Sum" {
		t.Errorf("NetworkIn 统计量 = %s", netIn.Stat)
	}
}

func TestBuildSageMakerEndpointQueries(t *testing.T) {
	queries := BuildSageMakerEndpointQueries([]string{"my-endpoint"}, nil)
	if len(queries) != 2 {
		t.Fatalf("查询数 = %d, want 2", len(queries))
	}
	q := queryByID(t, queries, "my_endpoint_invocations_sum")
	if q.Namespace != "AWS/SageMaker" || q.Stat != "Sum" {
		t.Errorf("SageMaker 查询字段错误: %+v", q)
	}
	if q.Dimensions[0].Name != "EndpointName" {
		t.Errorf("维度错误: %+v", q.Dimensions)
	}
}

func TestBuilders_EmptyInput(t *testing.T) {
	if got := BuildLambdaQueries(nil, nil); len(got) != 0 {
		t.Errorf("空输入应返回空查询: %v", got)
	}
	if got := BuildNATGatewayQueries([]string{}, nil); len(got) != 0 {
		t.Errorf("空输入应返回空查询: %v", got)
	}
}
