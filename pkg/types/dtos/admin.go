package dtos

// EndpointRequest는 엔드포인트 지정 요청입니다
type EndpointRequest struct {
	URL string `json:"url"`
}

// ProbeRequest는 단일 엔드포인트 헬스 체크 요청입니다
type ProbeRequest struct {
	URL   string `json:"url"`
	Fresh bool   `json:"fresh"`
}

// TokensRequest는 인증 토큰 저장 요청입니다
type TokensRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// MonitoringState는 모니터링 상태 응답입니다
type MonitoringState struct {
	Monitoring bool `json:"monitoring"`
	Paused     bool `json:"paused"`
}
