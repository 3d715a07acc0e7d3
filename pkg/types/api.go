package types

import (
	"time"
)

// RequestOptions는 외부 API 요청 옵션입니다
type RequestOptions struct {
	Method  string
	Body    []byte
	Headers map[string]string
}

// CredentialSource는 현재 bearer 토큰을 반환합니다 (없으면 빈 문자열)
type CredentialSource func() string

// ClientState는 API 클라이언트 수명 주기 상태입니다
type ClientState string

const (
	StateUninitialized ClientState = "UNINITIALIZED"
	StateInitializing  ClientState = "INITIALIZING"
	StateReady         ClientState = "READY"
)

// ServiceStatus는 API 클라이언트 전체 상태 요약입니다
type ServiceStatus struct {
	Initialized        bool                    `json:"initialized"`
	State              ClientState             `json:"state"`
	CurrentEndpoint    string                  `json:"currentEndpoint"`
	AvailableEndpoints []string                `json:"availableEndpoints"`
	Environment        EnvironmentType         `json:"environment,omitempty"`
	RequestCount       int64                   `json:"requestCount"`
	ErrorCount         int64                   `json:"errorCount"`
	LastRequestTime    *time.Time              `json:"lastRequestTime,omitempty"`
	HealthStats        map[string]*HealthStats `json:"healthStats"`
}
