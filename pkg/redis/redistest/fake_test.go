package redistest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	skredis "github.com/angelmondragon/stashkeeper-backend/pkg/redis"
)

func TestFakeFailure(t *testing.T) {
	client, fake := NewFake("")
	fake.SetFailure(errors.New("down"))
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected failure")
	}
	fake.SetFailure(nil)
	if err := client.Set(context.Background(), "k", 1, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl, ok := fake.TTL("k"); !ok || ttl != time.Minute {
		t.Fatalf("expected recorded ttl, got %s %v", ttl, ok)
	}
}

func TestFakeLapseDropsKey(t *testing.T) {
	ctx := context.Background()
	client, fake := NewFake("")
	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	fake.Lapse("k")
	if _, err := client.Get(ctx, "k"); !skredis.IsNil(err) {
		t.Fatalf("expected lapsed key to be missing, got %v", err)
	}
	if _, ok := fake.TTL("k"); ok {
		t.Fatalf("expected ttl to be dropped with the key")
	}
}

func TestFakePingIsSafeAlongsideSetFailure(t *testing.T) {
	client, fake := NewFake("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = client.Ping(context.Background())
		}()
		go func() {
			defer wg.Done()
			fake.SetFailure(nil)
		}()
	}
	wg.Wait()
}
