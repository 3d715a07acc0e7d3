package controllers

import (
	"bufio"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types/dtos"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

const redactedValue = "***"

type EventsController struct {
	client      interfaces.ApiClient
	registry    interfaces.ConfigRegistry
	sse         *utils.SseManager
	unsubscribe func()
}

// NewEventsController는 설정 변경을 SSE 클라이언트에 전달하는 컨트롤러를 생성합니다
func NewEventsController(client interfaces.ApiClient, registry interfaces.ConfigRegistry) *EventsController {
	c := &EventsController{
		client:   client,
		registry: registry,
		sse:      utils.NewSseManager(),
	}
	c.unsubscribe = registry.Subscribe(c.onConfigChange, nil)
	return c
}

func (c *EventsController) onConfigChange(key string, value interface{}) {
	if c.sse.Count() == 0 {
		return
	}

	change := dtos.ConfigChange{
		Key:       key,
		Value:     value,
		Deleted:   value == nil,
		Timestamp: time.Now().UnixMilli(),
	}
	if isSecretKey(key) && value != nil {
		change.Value = redactedValue
	}

	data, err := json.Marshal(dtos.SsePayload{Type: dtos.SseChange, Data: change})
	if err != nil {
		utils.Warnf("[SSE] 변경 이벤트 직렬화 실패 (%s): %v", key, err)
		return
	}
	c.sse.Broadcast(string(data))
}

func isSecretKey(key string) bool {
	return key == "accessToken" || key == "refreshToken"
}

// Close는 레지스트리 구독을 해제합니다
func (c *EventsController) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Connections는 연결된 SSE 클라이언트 수를 반환합니다
func (c *EventsController) Connections() int {
	return c.sse.Count()
}

// HandleEvents는 설정 변경 이벤트를 스트리밍합니다
func (c *EventsController) HandleEvents(ctx *fiber.Ctx) error {
	reqId := utils.GenerateRequestId()
	messageChan := make(chan string, 16)

	// SSE 헤더 설정
	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	utils.Infof("[SSE] 새로운 연결 시작: %s", reqId)
	c.sse.Register(reqId, messageChan)

	snapshot := dtos.EndpointSnapshot{
		CurrentEndpoint: c.client.CurrentEndpoint(),
		Summary:         c.registry.Summary(),
	}
	if env, ok := c.client.Environment(); ok {
		snapshot.Environment = env.Type
	}

	ctx.Context().Response.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			c.sse.Deregister(reqId)
			utils.Infof("[SSE] 스트림 종료 - reqId: %s", reqId)
		}()

		// 초기 연결 메시지 전송
		if err := utils.SendSseEvent(w, dtos.SsePayload{Type: dtos.SseConnect, Data: snapshot}); err != nil {
			utils.Infof("[SSE] 초기 메시지 전송 실패 - reqId: %s, error: %v", reqId, err)
			return
		}

		ticker := time.NewTicker(configs.SseHeartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-messageChan:
				if !ok {
					return
				}
				if _, err := w.WriteString("data: " + msg + "\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					utils.Infof("[SSE] 클라이언트 연결 종료 (reqId: %s): %v", reqId, err)
					return
				}
			case <-ticker.C:
				payload := dtos.SsePayload{
					Type: dtos.SseHeartbeat,
					Data: map[string]interface{}{
						"heartbeat": time.Now().Format(time.RFC3339),
					},
				}
				if err := utils.SendSseEvent(w, payload); err != nil {
					utils.Infof("[SSE] 하트비트 전송 실패 (reqId: %s): %v", reqId, err)
					return
				}
			}
		}
	}))

	return nil
}
