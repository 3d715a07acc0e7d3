package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	bolt "go.etcd.io/bbolt"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

const (
	// bbolt 버킷 이름
	boltBucket = "config"
	// 파일 잠금 대기 시간
	boltLockTimeout = time.Second
)

// boltStorage bbolt 파일 저장소
// 여러 프로세스가 같은 파일을 공유할 수 있도록 작업마다 파일을 열고 닫습니다
type boltStorage struct {
	path  string
	key   string
	quota int

	mutex  sync.Mutex
	closed bool
	stopCh chan struct{}
}

// NewBoltStorage 새 bbolt 저장소 생성
func NewBoltStorage(path string, key string, quota int) (types.Storage, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("저장소 디렉토리 생성 실패: %w", err)
	}

	s := &boltStorage{
		path:   path,
		key:    key,
		quota:  quota,
		stopCh: make(chan struct{}),
	}

	// 파일과 버킷 생성 확인
	if err := s.update(func(b *bolt.Bucket) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *boltStorage) Key() string {
	return s.key
}

func (s *boltStorage) open() (*bolt.DB, error) {
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: boltLockTimeout})
	if err != nil {
		return nil, fmt.Errorf("bbolt 파일 열기 실패 (%s): %w", s.path, err)
	}
	return db, nil
}

func (s *boltStorage) update(fn func(b *bolt.Bucket) error) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		if err != nil {
			return err
		}
		return fn(bucket)
	})
}

func (s *boltStorage) Load(ctx context.Context) ([]byte, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var data []byte
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucket))
		if bucket == nil {
			return nil
		}
		if value := bucket.Get([]byte(s.key)); value != nil {
			// 트랜잭션 밖에서 쓰기 위해 복사
			data = append([]byte(nil), value...)
		}
		return nil
	})
	return data, err
}

func (s *boltStorage) Save(ctx context.Context, data []byte) error {
	if s.quota > 0 && len(data) > s.quota {
		return fmt.Errorf("bolt storage %d bytes > %d: %w", len(data), s.quota, types.ErrQuotaExceeded)
	}
	return s.update(func(b *bolt.Bucket) error {
		return b.Put([]byte(s.key), data)
	})
}

func (s *boltStorage) Remove(ctx context.Context) error {
	return s.update(func(b *bolt.Bucket) error {
		return b.Delete([]byte(s.key))
	})
}

// Watch 파일 변경을 감시해 알림을 보냅니다
// 자기 자신의 쓰기도 알림이 가므로 수신 측에서 동일한 내용은 무시해야 합니다
func (s *boltStorage) Watch(ctx context.Context) (<-chan types.StorageEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("파일 감시자 생성 실패: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("파일 감시 등록 실패 (%s): %w", s.path, err)
	}

	events := make(chan types.StorageEvent, 16)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				select {
				case events <- types.StorageEvent{Key: s.key}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				utils.Warnf("파일 감시 오류 (%s): %v", s.path, err)
			}
		}
	}()
	return events, nil
}

func (s *boltStorage) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.closed {
		s.closed = true
		close(s.stopCh)
	}
	return nil
}
