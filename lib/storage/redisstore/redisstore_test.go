package redisstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/ukvlib/ukv/lib/storage"
	storagetesting "github.com/ukvlib/ukv/lib/storage/testing"
)

// newTestStore connects to the Redis server named by UKV_TEST_REDIS_ADDR.
// The suite is skipped when the variable is unset, so regular test runs do
// not need a server.
func newTestStore(t *testing.T) (*Store, func()) {
	addr := os.Getenv("UKV_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("UKV_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("Redis server at %s not reachable: %v", addr, err)
	}

	// each store gets its own namespace so subtests never see stale keys
	namespace := fmt.Sprintf("ukv-test:%s:", t.Name())

	teardown := func() {
		ctx := context.Background()
		iter := client.Scan(ctx, 0, namespace+"*", 0).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
		client.Close()
	}

	return New(client, &Options{Namespace: namespace}), teardown
}

func Test(t *testing.T) {
	if os.Getenv("UKV_TEST_REDIS_ADDR") == "" {
		t.Skip("UKV_TEST_REDIS_ADDR not set")
	}
	storagetesting.RunStorageTests(t, "RedisStore", func() (storage.Storage, func()) {
		return newTestStore(t)
	})
}

func TestAsync(t *testing.T) {
	if os.Getenv("UKV_TEST_REDIS_ADDR") == "" {
		t.Skip("UKV_TEST_REDIS_ADDR not set")
	}
	storagetesting.RunAsyncStorageTests(t, "RedisStore", func() (storage.AsyncStorage, func()) {
		s, teardown := newTestStore(t)
		return s.Async(), teardown
	})
}

// --------------------------------------------------------------------------
// Unit tests (no server required)
// --------------------------------------------------------------------------

func TestMapError(t *testing.T) {
	if err := mapError(nil, "k"); err != nil {
		t.Errorf("Expected nil for nil error, got %v", err)
	}

	if err := mapError(redis.Nil, "k"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound for redis.Nil, got %v", err)
	}

	incrErr := errors.New("ERR value is not an integer or out of range")
	if err := mapError(incrErr, "k"); !storage.IsTypeMismatch(err) {
		t.Errorf("Expected TypeMismatch for integer reply error, got %v", err)
	}

	// context errors pass through so callers can match them directly
	if err := mapError(context.Canceled, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled to pass through, got %v", err)
	}
	if err := mapError(context.DeadlineExceeded, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded to pass through, got %v", err)
	}

	// everything else means the backend could not be reached
	if err := mapError(errors.New("dial tcp: connection refused"), "k"); !storage.IsBackendUnavailable(err) {
		t.Errorf("Expected BackendUnavailable for transport error, got %v", err)
	}
}

func TestKeyNamespaces(t *testing.T) {
	a := &asyncStore{namespace: "ns:"}

	if k := a.textKey("user"); k != "ns:t:user" {
		t.Errorf("Unexpected text key %q", k)
	}
	if k := a.rawKey("user"); k != "ns:r:user" {
		t.Errorf("Unexpected raw key %q", k)
	}
	if k := a.counterKey("user"); k != "ns:c:user" {
		t.Errorf("Unexpected counter key %q", k)
	}

	others := a.otherKinds("user", prefixText)
	if len(others) != 2 || others[0] != "ns:r:user" || others[1] != "ns:c:user" {
		t.Errorf("Unexpected other-kind keys %v", others)
	}
}
