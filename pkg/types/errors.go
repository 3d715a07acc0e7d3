package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ClientError는 4xx 등 엔드포인트 장애가 아닌 비정상 응답입니다. 다른 엔드포인트로 재시도하지 않습니다.
type ClientError struct {
	Status   int
	Message  string
	Response json.RawMessage
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.Status, e.Message)
}

// ServerError는 5xx 응답입니다
type ServerError struct {
	Status   int
	Message  string
	Response json.RawMessage
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// TransportError는 네트워크 수준 실패입니다 (DNS, 연결 거부 등)
type TransportError struct {
	Endpoint string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("endpoint unreachable: %s", e.Endpoint)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// TimeoutError는 요청 시간 초과입니다
type TimeoutError struct {
	Endpoint string
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out", e.Endpoint)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// CircuitOpenError는 서킷이 열려 요청을 보내지 않았음을 나타냅니다
type CircuitOpenError struct {
	Endpoint string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for %s", e.Endpoint)
}

// ExhaustedError는 모든 시도가 실패했을 때 반환됩니다
type ExhaustedError struct {
	Attempts  int
	LastCause error
}

func (e *ExhaustedError) Error() string {
	if e.LastCause == nil {
		return fmt.Sprintf("all %d attempts failed", e.Attempts)
	}
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.LastCause)
}

func (e *ExhaustedError) Unwrap() error { return e.LastCause }

// InitializationError는 후보 백엔드가 하나도 없을 때 반환됩니다.
// 클라이언트는 마지막 대체 엔드포인트로 계속 동작합니다.
type InitializationError struct {
	Environment EnvironmentType
	Fallback    string
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("no candidate backends for environment %q, using %s", e.Environment, e.Fallback)
}

// IsRetryable은 다른 엔드포인트로 재시도할 수 있는 오류인지 확인합니다
func IsRetryable(err error) bool {
	var se *ServerError
	var te *TransportError
	var to *TimeoutError
	var co *CircuitOpenError
	return errors.As(err, &se) || errors.As(err, &te) || errors.As(err, &to) || errors.As(err, &co)
}

// StatusOf는 오류에 담긴 HTTP 상태 코드를 반환합니다 (네트워크 오류는 0)
func StatusOf(err error) int {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Status
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// ResponseOf는 오류에 담긴 응답 본문을 반환합니다
func ResponseOf(err error) json.RawMessage {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Response
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.Response
	}
	return nil
}
