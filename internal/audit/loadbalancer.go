package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"aws-audit-collector/internal/cloudwatch"
	"aws-audit-collector/internal/config"
	"aws-audit-collector/internal/executor"
)

// 负载均衡器类型
const (
	LBTypeClassic     = "classic"
	LBTypeApplication = "application"
)

// 闲置原因
const (
	// ReasonNoInstances Classic ELB 后端没有注册任何实例
	ReasonNoInstances = "no_instances"
	// ReasonNoRequests ALB 窗口期内请求数为 0
	ReasonNoRequests = "no_requests"
)

// IdleLoadBalancer 描述一个被判定为闲置的负载均衡器
type IdleLoadBalancer struct {
	Target       executor.Target
	Name         string
	Type         string
	ARN          string
	RequestCount float64
	Reason       string
}

// CollectIdleLoadBalancers 收集全部目标的闲置负载均衡器
//
// Classic ELB 后端实例列表为空即判定闲置；ALB 批量查询窗口期内
// RequestCount 总和，为 0 则判定闲置。NLB 没有 RequestCount 指标，
// 不在本审计范围内。
func (r *Runner) CollectIdleLoadBalancers(ctx context.Context) *executor.CollectionResult[[]IdleLoadBalancer] {
	targets := r.filterEnabled(r.BuildTargets(), AuditELB)
	return executor.ExecuteAll(ctx, targets, r.collectLoadBalancersForTarget, r.cfg.Concurrency())
}

func (r *Runner) collectLoadBalancersForTarget(ctx context.Context, target executor.Target) ([]IdleLoadBalancer, error) {
	account := r.accounts[target.AccountID]

	idle, err := r.collectClassicLBs(ctx, account, target)
	if err != nil {
		return nil, err
	}

	albIdle, err := r.collectALBs(ctx, account, target)
	if err != nil {
		return nil, err
	}
	return append(idle, albIdle...), nil
}

func (r *Runner) collectClassicLBs(ctx context.Context, account config.CloudAccount, target executor.Target) ([]IdleLoadBalancer, error) {
	elbClient, err := r.clients.ELB(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	var descriptions []elbtypes.LoadBalancerDescription
	var marker *string
	for {
		out, err := elbClient.DescribeLoadBalancers(ctx, &elasticloadbalancing.DescribeLoadBalancersInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("DescribeLoadBalancers(classic) 失败: %w", err)
		}
		descriptions = append(descriptions, out.LoadBalancerDescriptions...)
		if out.NextMarker == nil || *out.NextMarker == "" {
			break
		}
		marker = out.NextMarker
	}

	var idle []IdleLoadBalancer
	for _, lb := range descriptions {
		if len(lb.Instances) > 0 {
			continue
		}
		idle = append(idle, IdleLoadBalancer{
			Target: target,
			Name:   aws.ToString(lb.LoadBalancerName),
			Type:   LBTypeClassic,
			Reason: ReasonNoInstances,
		})
	}
	return idle, nil
}

func (r *Runner) collectALBs(ctx context.Context, account config.CloudAccount, target executor.Target) ([]IdleLoadBalancer, error) {
	elbv2Client, err := r.clients.ELBv2(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	var albs []elbv2types.LoadBalancer
	var marker *string
	for {
		out, err := elbv2Client.DescribeLoadBalancers(ctx, &elasticloadbalancingv2.DescribeLoadBalancersInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("DescribeLoadBalancers(v2) 失败: %w", err)
		}
		for _, lb := range out.LoadBalancers {
			if lb.Type == elbv2types.LoadBalancerTypeEnumApplication {
				albs = append(albs, lb)
			}
		}
		if out.NextMarker == nil || *out.NextMarker == "" {
			break
		}
		marker = out.NextMarker
	}

	if len(albs) == 0 {
		return nil, nil
	}

	cwClient, err := r.clients.CloudWatch(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	queries := buildALBRequestQueries(albs)
	start, end := r.window()
	values, err := r.batchExecutor(cwClient).Execute(ctx, queries, start, end, r.periodSeconds())
	if err != nil {
		return nil, fmt.Errorf("查询 ALB 请求数失败: %w", err)
	}

	var idle []IdleLoadBalancer
	for _, lb := range albs {
		name := aws.ToString(lb.LoadBalancerName)
		safeID := cloudwatch.SanitizeMetricID(name)
		requests := values[safeID+"_requestcount_sum"]
		if requests > 0 {
			continue
		}
		idle = append(idle, IdleLoadBalancer{
			Target:       target,
			Name:         name,
			Type:         LBTypeApplication,
			ARN:          aws.ToString(lb.LoadBalancerArn),
			RequestCount: requests,
			Reason:       ReasonNoRequests,
		})
	}
	return idle, nil
}

// buildALBRequestQueries 为 ALB 生成 RequestCount 查询
//
// AWS/ApplicationELB 的 LoadBalancer 维度取 ARN 中
// ":loadbalancer/" 之后的资源路径（如 app/my-alb/50dc6c495c0c9188）。
func buildALBRequestQueries(albs []elbv2types.LoadBalancer) []cloudwatch.MetricQuery {
	var queries []cloudwatch.MetricQuery
	for _, lb := range albs {
		name := aws.ToString(lb.LoadBalancerName)
		dimValue := name
		parts := strings.Split(aws.ToString(lb.LoadBalancerArn), ":loadbalancer/")
		if len(parts) == 2 {
			dimValue = parts[1]
		}
		queries = append(queries, cloudwatch.MetricQuery{
			ID:         cloudwatch.SanitizeMetricID(name) + "_requestcount_sum",
			Namespace:  "AWS/ApplicationELB",
			MetricName: "RequestCount",
			Dimensions: []cloudwatch.Dimension{{Name: "LoadBalancer", Value: dimValue}},
			Stat:       "Sum",
		})
	}
	return queries
}
