package utils

import "strings"

// Path는 경로 관련 처리를 담당합니다
type Path struct {
	internalPaths map[string]bool
}

// NewPath는 새로운 Path 인스턴스를 생성합니다
func NewPath(internalPaths map[string]bool) *Path {
	return &Path{
		internalPaths: internalPaths,
	}
}

// IsInternalPath는 관리용 내부 경로인지 확인합니다
func (p *Path) IsInternalPath(path string) bool {
	for prefix := range p.internalPaths {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// JoinURL은 엔드포인트 기본 URL과 요청 경로를 합칩니다
func JoinURL(base string, path string) string {
	if path == "" {
		return strings.TrimRight(base, "/")
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
