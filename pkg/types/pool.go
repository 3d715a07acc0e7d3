package types

import (
	"sync"
)

// EndpointPool은 후보 엔드포인트 목록과 현재 엔드포인트를 관리하는 구조체입니다
// 후보 목록은 생성 이후 변경되지 않습니다
type EndpointPool struct {
	endpoints []string
	current   string
	mutex     sync.RWMutex
}

// NewEndpointPool은 새로운 엔드포인트 풀을 생성합니다
func NewEndpointPool(endpoints []string) *EndpointPool {
	list := make([]string, 0, len(endpoints))
	seen := make(map[string]bool, len(endpoints))
	for _, url := range endpoints {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		list = append(list, url)
	}
	return &EndpointPool{endpoints: list}
}

// Len은 후보 엔드포인트 수를 반환합니다
func (p *EndpointPool) Len() int {
	return len(p.endpoints)
}

// All은 후보 엔드포인트 목록 복사본을 반환합니다
func (p *EndpointPool) All() []string {
	endpoints := make([]string, len(p.endpoints))
	copy(endpoints, p.endpoints)
	return endpoints
}

// First는 환경에서 정의한 첫 번째 후보를 반환합니다
func (p *EndpointPool) First() string {
	if len(p.endpoints) == 0 {
		return ""
	}
	return p.endpoints[0]
}

// Contains는 후보 목록에 URL이 있는지 확인합니다
func (p *EndpointPool) Contains(url string) bool {
	return p.indexOf(url) >= 0
}

// Current는 현재 엔드포인트를 반환합니다
func (p *EndpointPool) Current() string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.current
}

// SetCurrent는 현재 엔드포인트를 설정하고 이전 값을 반환합니다
func (p *EndpointPool) SetCurrent(url string) string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	previous := p.current
	p.current = url
	return previous
}

// Next는 라운드로빈 방식으로 다음 후보로 이동합니다
// 현재 값이 목록에 없으면 첫 번째 후보로 이동합니다
func (p *EndpointPool) Next() (next string, previous string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.endpoints) == 0 {
		return "", p.current
	}

	previous = p.current
	idx := p.indexOf(p.current)
	// 인덱스 순환
	p.current = p.endpoints[(idx+1)%len(p.endpoints)]
	return p.current, previous
}

func (p *EndpointPool) indexOf(url string) int {
	for i, endpoint := range p.endpoints {
		if endpoint == url {
			return i
		}
	}
	return -1
}
