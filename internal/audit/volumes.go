package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"aws-audit-collector/internal/cloudwatch"
	"aws-audit-collector/internal/executor"
)

// 闲置原因
const (
	// ReasonUnattached 卷处于 available 状态，未挂载到任何实例
	ReasonUnattached = "unattached"
	// ReasonNoIO 卷已挂载但窗口期内没有任何读写
	ReasonNoIO = "no_io"
)

// IdleVolume 描述一个被判定为闲置的 EBS 卷
type IdleVolume struct {
	Target     executor.Target
	VolumeID   string
	State      string
	SizeGB     int32
	InstanceID string
	Reason     string
}

// CollectIdleVolumes 收集全部目标的闲置 EBS 卷
//
// available 状态的卷直接判定为闲置；in-use 的卷批量查询窗口期内
// VolumeReadOps + VolumeWriteOps 总和，为 0 则判定为闲置。
func (r *Runner) CollectIdleVolumes(ctx context.Context) *executor.CollectionResult[[]IdleVolume] {
	targets := r.filterEnabled(r.BuildTargets(), AuditEBS)
	return executor.ExecuteAll(ctx, targets, r.collectVolumesForTarget, r.cfg.Concurrency())
}

func (r *Runner) collectVolumesForTarget(ctx context.Context, target executor.Target) ([]IdleVolume, error) {
	account := r.accounts[target.AccountID]
	ec2Client, err := r.clients.EC2(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	var volumes []ec2types.Volume
	var token *string
	for {
		out, err := ec2Client.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("DescribeVolumes 失败: %w", err)
		}
		volumes = append(volumes, out.Volumes...)
		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		token = out.NextToken
	}

	var idle []IdleVolume
	var attached []ec2types.Volume
	for _, v := range volumes {
		switch v.State {
		case ec2types.VolumeStateAvailable:
			idle = append(idle, IdleVolume{
				Target:   target,
				VolumeID: aws.ToString(v.VolumeId),
				State:    string(v.State),
				SizeGB:   aws.ToInt32(v.Size),
				Reason:   ReasonUnattached,
			})
		case ec2types.VolumeStateInUse:
			attached = append(attached, v)
		}
	}

	if len(attached) == 0 {
		return idle, nil
	}

	cwClient, err := r.clients.CloudWatch(ctx, account, target.Region)
	if err != nil {
		return nil, err
	}

	queries := buildVolumeIOQueries(attached)
	start, end := r.window()
	values, err := r.batchExecutor(cwClient).Execute(ctx, queries, start, end, r.periodSeconds())
	if err != nil {
		return nil, fmt.Errorf("查询卷 I/O 指标失败: %w", err)
	}

	for _, v := range attached {
		volumeID := aws.ToString(v.VolumeId)
		safeID := cloudwatch.SanitizeMetricID(volumeID)
		totalOps := values[safeID+"_volumereadops_sum"] + values[safeID+"_volumewriteops_sum"]
		if totalOps > 0 {
			continue
		}
		instanceID := ""
		if len(v.Attachments) > 0 {
			instanceID = aws.ToString(v.Attachments[0].InstanceId)
		}
		idle = append(idle, IdleVolume{
			Target:     target,
			VolumeID:   volumeID,
			State:      string(v.State),
			SizeGB:     aws.ToInt32(v.Size),
			InstanceID: instanceID,
			Reason:     ReasonNoIO,
		})
	}
	return idle, nil
}

// buildVolumeIOQueries 为挂载中的卷生成读写 IOPS 查询
func buildVolumeIOQueries(volumes []ec2types.Volume) []cloudwatch.MetricQuery {
	var queries []cloudwatch.MetricQuery
	for _, v := range volumes {
		volumeID := aws.ToString(v.VolumeId)
		safeID := cloudwatch.SanitizeMetricID(volumeID)
		dims := []cloudwatch.Dimension{{Name: "VolumeId", Value: volumeID}}

		for _, metric := range []string{"VolumeReadOps", "VolumeWriteOps"} {
			queries = append(queries, cloudwatch.MetricQuery{
				ID:         fmt.Sprintf("%s_%s_sum", safeID, strings.ToLower(metric)),
				Namespace:  "AWS/EBS",
				MetricName: metric,
				Dimensions: dims,
				Stat:       "Sum",
			})
		}
	}
	return queries
}
