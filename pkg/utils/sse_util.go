package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
)

type SseManager struct {
	clients map[string]chan string
	mutex   sync.RWMutex
}

// NewSseManager는 새로운 SSE 클라이언트 관리자를 생성합니다
func NewSseManager() *SseManager {
	return &SseManager{clients: make(map[string]chan string)}
}

func (s *SseManager) Register(reqId string, ch chan string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, ok := s.clients[reqId]; ok {
		Debugf("[SSE] 기존 채널 발견, 종료 중 - reqId: %s", reqId)
		close(old)
	}

	s.clients[reqId] = ch
	Debugf("[SSE] 새 채널 등록 완료 - reqId: %s", reqId)
}

func (s *SseManager) Deregister(reqId string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if ch, ok := s.clients[reqId]; ok {
		Debugf("[SSE] 채널 종료 및 삭제 - reqId: %s", reqId)
		close(ch)
		delete(s.clients, reqId)
	}
}

// Broadcast는 등록된 모든 클라이언트에 메시지를 전송합니다
// 채널이 막힌 클라이언트는 등록 해제됩니다
func (s *SseManager) Broadcast(msg string) {
	var blocked []string

	s.mutex.RLock()
	for reqId, ch := range s.clients {
		select {
		case ch <- msg:
		default:
			Warnf("[SSE] 메시지 전송 실패 (채널 막힘) - reqId: %s", reqId)
			blocked = append(blocked, reqId)
		}
	}
	s.mutex.RUnlock()

	for _, reqId := range blocked {
		s.Deregister(reqId)
	}
}

// Count는 연결된 클라이언트 수를 반환합니다
func (s *SseManager) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.clients)
}

// SendSseEvent는 payload를 JSON으로 직렬화해 SSE data 프레임으로 기록합니다
func SendSseEvent(w *bufio.Writer, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
