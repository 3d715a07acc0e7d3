package dtos

import "github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"

// ConfigChange는 설정 레지스트리 변경 이벤트입니다
type ConfigChange struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value,omitempty"`
	Deleted   bool        `json:"deleted,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// EndpointSnapshot은 연결 시 전송하는 현재 상태입니다
type EndpointSnapshot struct {
	CurrentEndpoint string                `json:"currentEndpoint"`
	Environment     types.EnvironmentType `json:"environment,omitempty"`
	Summary         types.ConfigSummary   `json:"summary"`
}

type SsePayload struct {
	Type SseMessageType `json:"type"`
	Data interface{}    `json:"data,omitempty"`
}

type SseMessageType string

const (
	SseConnect   SseMessageType = "connect"
	SseChange    SseMessageType = "change"
	SseHeartbeat SseMessageType = "heartbeat"
)
