package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

// memorySpace 같은 공간을 공유하는 핸들들의 데이터
type memorySpace struct {
	mutex   sync.Mutex
	data    map[string][]byte
	handles map[*MemoryStorage]struct{}
}

// MemoryStorage 프로세스 내부 저장소
// Attach로 만든 핸들끼리는 데이터를 공유하고 서로의 쓰기를 통지받습니다
type MemoryStorage struct {
	space    *memorySpace
	key      string
	quota    int
	watchers map[chan types.StorageEvent]struct{}
	closed   bool
}

// NewMemoryStorage 새 메모리 저장소 생성 (quota 0은 무제한)
func NewMemoryStorage(key string, quota int) *MemoryStorage {
	space := &memorySpace{
		data:    make(map[string][]byte),
		handles: make(map[*MemoryStorage]struct{}),
	}
	return space.attach(key, quota)
}

func (s *memorySpace) attach(key string, quota int) *MemoryStorage {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	handle := &MemoryStorage{
		space:    s,
		key:      key,
		quota:    quota,
		watchers: make(map[chan types.StorageEvent]struct{}),
	}
	s.handles[handle] = struct{}{}
	return handle
}

// Attach 같은 데이터를 공유하는 새 핸들을 반환합니다
func (m *MemoryStorage) Attach() *MemoryStorage {
	return m.space.attach(m.key, m.quota)
}

func (m *MemoryStorage) Key() string {
	return m.key
}

func (m *MemoryStorage) Load(ctx context.Context) ([]byte, error) {
	m.space.mutex.Lock()
	defer m.space.mutex.Unlock()

	data, ok := m.space.data[m.key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStorage) Save(ctx context.Context, data []byte) error {
	if m.quota > 0 && len(data) > m.quota {
		return fmt.Errorf("memory storage %d bytes > %d: %w", len(data), m.quota, types.ErrQuotaExceeded)
	}

	m.space.mutex.Lock()
	defer m.space.mutex.Unlock()

	m.space.data[m.key] = append([]byte(nil), data...)
	m.notifyOthersLocked()
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context) error {
	m.space.mutex.Lock()
	defer m.space.mutex.Unlock()

	delete(m.space.data, m.key)
	m.notifyOthersLocked()
	return nil
}

// notifyOthersLocked 다른 핸들의 감시자에게 변경 알림 (막힌 채널은 건너뜀)
func (m *MemoryStorage) notifyOthersLocked() {
	for handle := range m.space.handles {
		if handle == m || handle.key != m.key {
			continue
		}
		for ch := range handle.watchers {
			select {
			case ch <- types.StorageEvent{Key: m.key}:
			default:
			}
		}
	}
}

func (m *MemoryStorage) Watch(ctx context.Context) (<-chan types.StorageEvent, error) {
	m.space.mutex.Lock()
	defer m.space.mutex.Unlock()

	if m.closed {
		return nil, fmt.Errorf("memory storage closed")
	}

	ch := make(chan types.StorageEvent, 16)
	m.watchers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		m.space.mutex.Lock()
		defer m.space.mutex.Unlock()
		if _, ok := m.watchers[ch]; ok {
			delete(m.watchers, ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (m *MemoryStorage) Close() error {
	m.space.mutex.Lock()
	defer m.space.mutex.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for ch := range m.watchers {
		close(ch)
	}
	m.watchers = make(map[chan types.StorageEvent]struct{})
	delete(m.space.handles, m)
	return nil
}
