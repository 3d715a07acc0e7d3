package utils

import "github.com/google/uuid"

// Generate는 식별자 생성을 담당합니다
type Generate struct{}

// NewGenerate는 새로운 Generate 인스턴스를 생성합니다
func NewGenerate() *Generate {
	return &Generate{}
}

// GenerateRequestId는 요청 추적용 상관관계 ID를 생성합니다
func (g *Generate) GenerateRequestId() string {
	return GenerateRequestId()
}

// GenerateRequestId는 요청 추적용 상관관계 ID를 생성합니다
func GenerateRequestId() string {
	return uuid.NewString()
}
