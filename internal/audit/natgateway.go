package audit

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"aws-audit-collector/internal/cloudwatch"
	"aws-audit-collector/internal/executor"
)

// natMetrics 是判定 NAT 网关是否闲置所需的指标子集
var natMetrics = []string{"BytesOutToDestination", "BytesInFromSource", "ActiveConnectionCount"}

// IdleNatGateway 描述一个窗口期内无任何流量的 NAT 网关
type IdleNatGateway struct {
	Target            executor.Target
	NatGatewayID      string
	VpcID             string
	SubnetID          string
	BytesOut          float64
	BytesIn           float64
	ActiveConnections float64
}

// CollectIdleNatGateways 收集全部目标的闲置 NAT 网关
//
// 只考察 available 状态的网关；出入流量与活跃连接数在窗口期内
// 全为 0 才判定为闲置。NAT 网关按小时计费，闲置即纯浪费。
func (r *Runner) CollectIdleNatGateways(ctx context.Context) *executor.CollectionResult[[]IdleNatGateway] {
	targets := r.filterEnabled(r.BuildTargets(), AuditNATGW)
	return executor.ExecuteAll(ctx, targets, r.collectNatGatewaysForTarget, r.cfg.Concurrency())
}

func (r *Runner) collectNatGatewaysForTarget(ctx context.Context, target executor.Target) ([]IdleNatGateway, error) {
	account := r.accounts[target.AccountID]
	ec2Client, err := r.clients.EC2(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	var gateways []ec2types.NatGateway
	var token *string
	for {
		out, err := ec2Client.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("DescribeNatGateways 失败: %w", err)
		}
		for _, gw := range out.NatGateways {
			if gw.State == ec2types.NatGatewayStateAvailable {
				gateways = append(gateways, gw)
			}
		}
		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		token = out.NextToken
	}

	if len(gateways) == 0 {
		return nil, nil
	}

	cwClient, err := r.clients.CloudWatch(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(gateways))
	for _, gw := range gateways {
		ids = append(ids, aws.ToString(gw.NatGatewayId))
	}
	queries := cloudwatch.BuildNATGatewayQueries(ids, natMetrics)

	start, end := r.window()
	values, err := r.batchExecutor(cwClient).Execute(ctx, queries, start, end, r.periodSeconds())
	if err != nil {
		return nil, fmt.Errorf("查询 NAT 网关指标失败: %w", err)
	}

	var idle []IdleNatGateway
	for _, gw := range gateways {
		gatewayID := aws.ToString(gw.NatGatewayId)
		safeID := cloudwatch.SanitizeMetricID(gatewayID)
		bytesOut := values[safeID+"_bytesouttodestination_sum"]
		bytesIn := values[safeID+"_bytesinfromsource_sum"]
		activeConns := values[safeID+"_activeconnectioncount_sum"]
		if bytesOut > 0 || bytesIn > 0 || activeConns > 0 {
			continue
		}
		idle = append(idle, IdleNatGateway{
			Target:            target,
			NatGatewayID:      gatewayID,
			VpcID:             aws.ToString(gw.VpcId),
			SubnetID:          aws.ToString(gw.SubnetId),
			BytesOut:          bytesOut,
			BytesIn:           bytesIn,
			ActiveConnections: activeConns,
		})
	}
	return idle, nil
}
