package awsclient

import (
	"context"
	"sync"
	"testing"

	"aws-audit-collector/internal/config"
)

func testAccount() config.CloudAccount {
	return config.CloudAccount{
		AccountID:       "123456789012",
		AccountName:     "test",
		AccessKeyID:     "AKIATEST",
		AccessKeySecret: "secret",
	}
}

func TestCache_ReusesClients(t *testing.T) {
	cache := New()
	ctx := context.Background()
	account := testAccount()

	first, err := cache.CloudWatch(ctx, account, "us-east-1")
	if err != nil {
		t.Fatalf("CloudWatch 客户端创建失败: %v", err)
	}
	second, err := cache.CloudWatch(ctx, account, "us-east-1")
	if err != nil {
		t.Fatalf("CloudWatch 客户端创建失败: %v", err)
	}
	if first != second {
		t.Error("同账号同区域应复用同一客户端实例")
	}
}

func TestCache_DistinctPerRegion(t *testing.T) {
	cache := New()
	ctx := context.Background()
	account := testAccount()

	east, err := cache.CloudWatch(ctx, account, "us-east-1")
	if err != nil {
		t.Fatalf("客户端创建失败: %v", err)
	}
	west, err := cache.CloudWatch(ctx, account, "us-west-2")
	if err != nil {
		t.Fatalf("客户端创建失败: %v", err)
	}
	if east == west {
		t.Error("不同区域应创建不同客户端")
	}
}

func TestCache_DistinctPerService(t *testing.T) {
	cache := New()
	ctx := context.Background()
	account := testAccount()

	if _, err := cache.EC2(ctx, account, "us-east-1"); err != nil {
		t.Fatalf("EC2 客户端创建失败: %v", err)
	}
	if _, err := cache.S3(ctx, account, "us-east-1"); err != nil {
		t.Fatalf("S3 客户端创建失败: %v", err)
	}
	if _, err := cache.ELB(ctx, account, "us-east-1"); err != nil {
		t.Fatalf("ELB 客户端创建失败: %v", err)
	}
	if _, err := cache.ELBv2(ctx, account, "us-east-1"); err != nil {
		t.Fatalf("ELBv2 客户端创建失败: %v", err)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := New()
	ctx := context.Background()
	account := testAccount()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.CloudWatch(ctx, account, "ap-northeast-2"); err != nil {
				t.Errorf("并发创建客户端失败: %v", err)
			}
		}()
	}
	wg.Wait()
}
