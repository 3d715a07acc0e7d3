package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

func receiveEvent(t *testing.T, events <-chan types.StorageEvent, timeout time.Duration) (types.StorageEvent, bool) {
	t.Helper()

	select {
	case event, ok := <-events:
		return event, ok
	case <-time.After(timeout):
		return types.StorageEvent{}, false
	}
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("memory_test", 0)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.Save(ctx, []byte(`{"a":1}`)))
	data, err = s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	require.NoError(t, s.Remove(ctx))
	data, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "memory_test", s.Key())
}

func TestMemoryStorageQuota(t *testing.T) {
	s := NewMemoryStorage("memory_test", 8)

	err := s.Save(context.Background(), []byte("0123456789"))

	assert.True(t, errors.Is(err, types.ErrQuotaExceeded))
}

func TestMemoryStorageNotifiesOtherHandles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewMemoryStorage("shared_test", 0)
	second := first.Attach()

	firstEvents, err := first.Watch(ctx)
	require.NoError(t, err)
	secondEvents, err := second.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, second.Save(ctx, []byte(`{}`)))

	event, ok := receiveEvent(t, firstEvents, time.Second)
	require.True(t, ok)
	assert.Equal(t, "shared_test", event.Key)

	// 자신의 쓰기는 통지하지 않습니다
	_, ok = receiveEvent(t, secondEvents, 50*time.Millisecond)
	assert.False(t, ok)

	data, err := first.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestMemoryStorageCloseEndsWatch(t *testing.T) {
	s := NewMemoryStorage("close_test", 0)
	events, err := s.Watch(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, ok := <-events
	assert.False(t, ok)
	_, err = s.Watch(context.Background())
	assert.Error(t, err)
}

func TestBoltStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "resolver.db")

	s, err := NewBoltStorage(path, "bolt_test", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = os.Stat(path)
	require.NoError(t, err)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.Save(ctx, []byte(`{"theme":"dark"}`)))
	data, err = s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))

	require.NoError(t, s.Remove(ctx))
	data, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestBoltStorageQuota(t *testing.T) {
	s, err := NewBoltStorage(filepath.Join(t.TempDir(), "resolver.db"), "bolt_test", 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	err = s.Save(context.Background(), []byte("too large"))
	assert.True(t, errors.Is(err, types.ErrQuotaExceeded))
}

func TestBoltStorageWatchSeesOtherProcessWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := filepath.Join(t.TempDir(), "resolver.db")

	watcher, err := NewBoltStorage(path, "bolt_test", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Close() })
	writer, err := NewBoltStorage(path, "bolt_test", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	events, err := watcher.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Save(ctx, []byte(`{"theme":"light"}`)))

	event, ok := receiveEvent(t, events, 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, "bolt_test", event.Key)

	data, err := watcher.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(data))
}

func TestRegistryOverBoltStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolver.db")

	storage, err := NewBoltStorage(path, "registry_test", 0)
	require.NoError(t, err)
	first := NewConfigRegistry(storage, WithSweepInterval(time.Hour))
	first.SetTokens("access-1", "")
	require.NoError(t, first.Close())
	require.NoError(t, storage.Close())

	reopened, err := NewBoltStorage(path, "registry_test", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	second := newTestRegistry(t, reopened, nil)

	assert.Equal(t, "access-1", second.AccessToken())
}

func TestNewStorageSelectsDriver(t *testing.T) {
	config := &configs.EnvConfig{}
	config.Storage.Driver = configs.StorageMemory
	config.Storage.Key = "factory_test"

	s, err := NewStorage(context.Background(), config)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)
	assert.Equal(t, "factory_test", s.Key())

	config.Storage.Driver = configs.StorageBolt
	config.Storage.BoltPath = filepath.Join(t.TempDir(), "resolver.db")
	s, err = NewStorage(context.Background(), config)
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	config.Storage.Driver = "etcd"
	_, err = NewStorage(context.Background(), config)
	assert.Error(t, err)
}

func TestRedisStorage(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	key := "resolver_test_" + time.Now().Format("150405.000000")

	first, err := NewRedisStorage(ctx, redisURL, key, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })
	second, err := NewRedisStorage(ctx, redisURL, key, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	events, err := first.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, second.Save(ctx, []byte(`{"theme":"dark"}`)))
	event, ok := receiveEvent(t, events, 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, key, event.Key)

	data, err := first.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))

	require.NoError(t, first.Remove(ctx))
	data, err = second.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}
