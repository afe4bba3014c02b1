// Package awsclient 提供按账号/区域缓存的 AWS 服务客户端
//
// 同一账号同一区域的客户端在一次审计运行内复用，避免重复加载配置
// 和重复握手。所有方法并发安全。
package awsclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"aws-audit-collector/internal/config"
)

// Cache 按账号和区域缓存 aws.Config 与各服务客户端
type Cache struct {
	mu      sync.Mutex
	configs map[string]aws.Config
	clients map[string]interface{}
}

// New 创建空的客户端缓存
func New() *Cache {
	return &Cache{
		configs: make(map[string]aws.Config),
		clients: make(map[string]interface{}),
	}
}

// loadCfg 加载并缓存账号在指定区域的 aws.Config
//
// AccessKeyID 为空时走默认凭证链（环境变量、实例角色等）。
func (c *Cache) loadCfg(ctx context.Context, account config.CloudAccount, region string) (aws.Config, error) {
	key := account.AccountID + "|" + region
	if cfg, ok := c.configs[key]; ok {
		return cfg, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if account.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(account.AccessKeyID, account.AccessKeySecret, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("加载账号 %s 区域 %s 的 AWS 配置失败: %w", account.AccountID, region, err)
	}
	c.configs[key] = cfg
	return cfg, nil
}

// CloudWatch 返回账号在指定区域的 CloudWatch 客户端
func (c *Cache) CloudWatch(ctx context.Context, account config.CloudAccount, region string) (*cloudwatch.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := account.AccountID + "|" + region + "|cloudwatch"
	if client, ok := c.clients[key]; ok {
		return client.(*cloudwatch.Client), nil
	}
	cfg, err := c.loadCfg(ctx, account, region)
	if err != nil {
		return nil, err
	}
	client := cloudwatch.NewFromConfig(cfg)
	c.clients[key] = client
	return client, nil
}

// EC2 返回账号在指定区域的 EC2 客户端
func (c *Cache) EC2(ctx context.Context, account config.CloudAccount, region string) (*ec2.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := account.AccountID + "|" + region + "|ec2"
	if client, ok := c.clients[key]; ok {
		return client.(*ec2.Client), nil
	}
	cfg, err := c.loadCfg(ctx, account, region)
	if err != nil {
		return nil, err
	}
	client := ec2.NewFromConfig(cfg)
	c.clients[key] = client
	return client, nil
}

// S3 返回账号在指定区域的 S3 客户端
func (c *Cache) S3(ctx context.Context, account config.CloudAccount, region string) (*s3.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := account.AccountID + "|" + region + "|s3"
	if client, ok := c.clients[key]; ok {
		return client.(*s3.Client), nil
	}
	cfg, err := c.loadCfg(ctx, account, region)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	c.clients[key] = client
	return client, nil
}

// ELB 返回账号在指定区域的 Classic ELB 客户端
func (c *Cache) ELB(ctx context.Context, account config.CloudAccount, region string) (*elasticloadbalancing.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := account.AccountID + "|" + region + "|elb"
	if client, ok := c.clients[key]; ok {
		return client.(*elasticloadbalancing.Client), nil
	}
	cfg, err := c.loadCfg(ctx, account, region)
	if err != nil {
		return nil, err
	}
	client := elasticloadbalancing.NewFromConfig(cfg)
	c.clients[key] = client
	return client, nil
}

// ELBv2 返回账号在指定区域的 ALB/NLB 客户端
func (c *Cache) ELBv2(ctx context.Context, account config.CloudAccount, region string) (*elasticloadbalancingv2.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := account.AccountID + "|" + region + "|elbv2"
	if client, ok := c.clients[key]; ok {
		return client.(*elasticloadbalancingv2.Client), nil
	}
	cfg, err := c.loadCfg(ctx, account, region)
	if err != nil {
		return nil, err
	}
	client := elasticloadbalancingv2.NewFromConfig(cfg)
	c.clients[key] = client
	return client, nil
}
