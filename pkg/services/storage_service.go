package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// NewStorage 설정에 맞는 저장소 드라이버 생성
func NewStorage(ctx context.Context, config *configs.EnvConfig) (types.Storage, error) {
	key := config.Storage.Key
	quota := config.Storage.QuotaBytes

	switch config.Storage.Driver {
	case configs.StorageMemory, "":
		utils.Info("메모리 설정 저장소 사용")
		return NewMemoryStorage(key, quota), nil
	case configs.StorageBolt:
		utils.Infof("bbolt 설정 저장소 사용: %s", config.Storage.BoltPath)
		return NewBoltStorage(config.Storage.BoltPath, key, quota)
	case configs.StorageRedis:
		return NewRedisStorage(ctx, config.Storage.RedisURL, key, quota)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
}

// redisStorage Redis 저장소 구현체
// 쓰기 후 <key>:events 채널에 인스턴스 ID를 발행합니다
type redisStorage struct {
	client     *redis.Client
	key        string
	quota      int
	instanceID string
}

// NewRedisStorage 새 Redis 저장소 생성
func NewRedisStorage(ctx context.Context, redisURL string, key string, quota int) (types.Storage, error) {
	utils.Infof("Redis 연결 중: %s", redisURL)

	// Redis URL에서 클라이언트 생성
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("Redis URL 파싱 실패: %w", err)
	}

	// 추가 설정
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// 연결 테스트
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	utils.Info("Redis 연결 성공")
	return &redisStorage{
		client:     client,
		key:        key,
		quota:      quota,
		instanceID: uuid.NewString(),
	}, nil
}

func (r *redisStorage) Key() string {
	return r.key
}

func (r *redisStorage) eventsChannel() string {
	return r.key + ":events"
}

func (r *redisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("설정 조회 실패: %w", err)
	}
	return data, nil
}

func (r *redisStorage) Save(ctx context.Context, data []byte) error {
	if r.quota > 0 && len(data) > r.quota {
		return fmt.Errorf("redis storage %d bytes > %d: %w", len(data), r.quota, types.ErrQuotaExceeded)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		if isRedisOOM(err) {
			return fmt.Errorf("%v: %w", err, types.ErrQuotaExceeded)
		}
		return fmt.Errorf("설정 저장 실패: %w", err)
	}
	r.publish(ctx)
	return nil
}

func (r *redisStorage) Remove(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("설정 삭제 실패: %w", err)
	}
	r.publish(ctx)
	return nil
}

func (r *redisStorage) publish(ctx context.Context) {
	if err := r.client.Publish(ctx, r.eventsChannel(), r.instanceID).Err(); err != nil {
		utils.Warnf("설정 변경 알림 발행 실패 (%s): %v", r.eventsChannel(), err)
	}
}

// Watch 다른 인스턴스가 발행한 변경 알림만 전달합니다
func (r *redisStorage) Watch(ctx context.Context) (<-chan types.StorageEvent, error) {
	pubsub := r.client.Subscribe(ctx, r.eventsChannel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("설정 변경 구독 실패: %w", err)
	}

	events := make(chan types.StorageEvent, 16)
	go func() {
		defer close(events)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if msg.Payload == r.instanceID {
					continue
				}
				select {
				case events <- types.StorageEvent{Key: r.key}:
				default:
				}
			}
		}
	}()
	return events, nil
}

func (r *redisStorage) Close() error {
	return r.client.Close()
}

func isRedisOOM(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM")
}
