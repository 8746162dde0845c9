package http

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/immxrtalbeast/lingualink/internal/repository"
	"github.com/immxrtalbeast/lingualink/internal/service"
)

// SignalController owns the websocket endpoint. Each connection gets a
// read loop (this goroutine) and a writer; everything a client does
// flows through the read loop in order, which is what keeps signaling
// FIFO per sender.
type SignalController struct {
	signaling *service.SignalingService
	pipeline  *service.PipelineService
	chatSink  repository.RoomRepository
	log       *slog.Logger
	upgrader  websocket.Upgrader
}

func NewSignalController(signaling *service.SignalingService, pipeline *service.PipelineService, chatSink repository.RoomRepository, log *slog.Logger) *SignalController {
	return &SignalController{
		signaling: signaling,
		pipeline:  pipeline,
		chatSink:  chatSink,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *SignalController) Serve(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to upgrade connection")
		return
	}

	client := domain.NewClient(conn)
	c.log.Info("connection opened", slog.String("conn_id", client.ID))

	go forwardClientEvents(client)

	for {
		var ev domain.Event
		if err := conn.ReadJSON(&ev); err != nil {
			c.signaling.Disconnect(client.ID)
			client.Close()
			conn.Close()
			c.log.Info("connection closed", slog.String("conn_id", client.ID))
			return
		}
		client.Touch()

		c.dispatch(client, ev)
	}
}

func (c *SignalController) dispatch(client *domain.Client, ev domain.Event) {
	switch ev.Type {
	case domain.EventJoinRoom:
		req := normalizeJoin(client, ev)
		if req.RoomID == "" {
			client.EnqueueEvent(domain.Event{
				Type:    domain.EventError,
				Payload: map[string]any{"error": "room id is required"},
			})
			return
		}
		c.signaling.Join(client, req)

	case domain.EventLeaveRoom:
		c.signaling.Leave(client)

	case domain.EventOffer, domain.EventAnswer, domain.EventICECandidate:
		c.signaling.Relay(client, ev)

	case domain.EventChat:
		text, _ := ev.Payload["message"].(string)
		c.signaling.HandleChat(context.Background(), c.chatSink, client, text)

	case domain.EventAudioChunk:
		audio := decodeAudioPayload(ev.Payload)
		if len(audio) == 0 {
			return
		}
		// Speech processing is slow; keep it off the signaling path.
		go c.pipeline.HandleAudioChunk(context.Background(), client, audio)

	default:
		c.log.Debug("unsupported signal", slog.String("type", string(ev.Type)))
		client.EnqueueEvent(domain.Event{
			Type:    domain.EventError,
			Payload: map[string]any{"error": service.ErrUnsupportedSignal.Error() + ": " + string(ev.Type)},
		})
	}
}

func forwardClientEvents(client *domain.Client) {
	for event := range client.Events {
		if err := client.Socket.WriteJSON(event); err != nil {
			// The read loop sees the broken socket and runs the
			// disconnect sweep; just stop writing.
			client.Socket.Close()
			return
		}
	}
}

// normalizeJoin turns every accepted join shape into the canonical
// request: the structured envelope, the legacy payload object, or a
// bare room id. A missing identity is synthesized from the connection
// id rather than rejected.
func normalizeJoin(client *domain.Client, ev domain.Event) domain.JoinRequest {
	roomID := ev.Room
	var p domain.Participant
	if ev.User != nil {
		p = *ev.User
	}

	if ev.Payload != nil {
		if roomID == "" {
			if v, ok := ev.Payload["roomId"].(string); ok {
				roomID = v
			} else if v, ok := ev.Payload["room"].(string); ok {
				roomID = v
			}
		}
		if p.ID == "" {
			switch raw := ev.Payload["participant"].(type) {
			case map[string]any:
				p.ID, _ = raw["id"].(string)
				if p.Name == "" {
					p.Name, _ = raw["name"].(string)
				}
			case string:
				p.ID = raw
			}
		}
		if p.ID == "" {
			if v, ok := ev.Payload["userId"].(string); ok {
				p.ID = v
			}
		}
		if p.Name == "" {
			if v, ok := ev.Payload["userName"].(string); ok {
				p.Name = v
			}
		}
	}

	if p.ID == "" {
		p.ID = "guest-" + shortConnID(client.ID)
	}
	if p.Name == "" {
		p.Name = "Guest-" + shortConnID(client.ID)
	}

	return domain.JoinRequest{RoomID: roomID, Participant: p}
}

func shortConnID(connID string) string {
	if len(connID) > 8 {
		return connID[:8]
	}
	return connID
}

func decodeAudioPayload(payload map[string]any) []byte {
	if payload == nil {
		return nil
	}
	raw, ok := payload["audioData"].(string)
	if !ok || raw == "" {
		return nil
	}
	audio, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return []byte(raw)
	}
	return audio
}
