package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSessionKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCommands()
	client := &Client{cmds: mock}

	key := client.AccessSessionKey("jti-1")
	if key != "mcv:session:access:jti-1" {
		t.Fatalf("unexpected session key %q", key)
	}

	if err := client.Set(ctx, key, "refresh-token", 10*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	stored, err := client.Get(ctx, key)
	if err != nil || stored != "refresh-token" {
		t.Fatalf("get = %q, %v", stored, err)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, key); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestIncrWithTTLSetsWindowOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCommands()
	client := &Client{cmds: mock}

	for want := int64(1); want <= 3; want++ {
		count, err := client.IncrWithTTL(ctx, "rl:ip:login:1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("incr %d: %v", want, err)
		}
		if count != want {
			t.Fatalf("count = %d, want %d", count, want)
		}
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire called %d times, want once", len(mock.expireCalls))
	}
	if mock.expireCalls[0].ttl != time.Minute {
		t.Fatalf("expire ttl = %v, want 1m", mock.expireCalls[0].ttl)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err != errNotInitialized {
		t.Fatalf("ping error = %v", err)
	}
	if _, err := client.IncrWithTTL(context.Background(), "k", 0); err != errNotInitialized {
		t.Fatalf("incr error = %v", err)
	}
	if client.Close() != nil {
		t.Fatalf("close on empty client should be nil")
	}
}

type mockCommands struct {
	data        map[string]string
	counters    map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCommands() *mockCommands {
	return &mockCommands{data: map[string]string{}, counters: map[string]int64{}}
}

func (m *mockCommands) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCommands) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCommands) Get(_ context.Context, key string) *redis.StringCmd {
	value, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (m *mockCommands) Incr(_ context.Context, key string) *redis.IntCmd {
	m.counters[key]++
	return redis.NewIntResult(m.counters[key], nil)
}

func (m *mockCommands) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: ttl})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCommands) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
