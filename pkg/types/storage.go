package types

import (
	"context"
	"errors"
)

// ErrQuotaExceeded는 저장소 용량 초과 시 반환됩니다
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// StorageEvent는 다른 인스턴스가 저장소 값을 변경했음을 알립니다
type StorageEvent struct {
	Key string
}

// Storage 설정 영속 저장소 인터페이스
// 하나의 고정된 네임스페이스 키 아래에 JSON 문서 하나를 저장합니다
type Storage interface {
	// 저장된 값 조회 (없으면 nil)
	Load(ctx context.Context) ([]byte, error)
	// 값 저장
	Save(ctx context.Context, data []byte) error
	// 값 삭제
	Remove(ctx context.Context) error
	// 다른 인스턴스의 변경 알림
	Watch(ctx context.Context) (<-chan StorageEvent, error)
	// 네임스페이스 키
	Key() string
	// 자원 정리
	Close() error
}
