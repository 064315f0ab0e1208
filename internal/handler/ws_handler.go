package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/farizks7575/chat-app/internal/config"
	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/hub"
	"github.com/farizks7575/chat-app/internal/service"
	"github.com/farizks7575/chat-app/pkg/log"
)

// WSHandler upgrades connections and dispatches client events. Each event is
// handled to completion before the next is read, so one connection's events
// are processed in arrival order.
type WSHandler struct {
	hub      *hub.Hub
	relay    service.RelayService
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates the websocket handler.
func NewWSHandler(h *hub.Hub, relay service.RelayService, cfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:   h,
		relay: relay,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and runs the connection's pumps. The connection
// starts unbound and stays useless for delivery until a register_user event
// binds it to a user.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.NewString(), h.hub, conn, h.cfg)
	log.L().Debug().Str(log.FieldConnID, client.ID).Msg("websocket connected")

	go client.WritePump()
	client.ReadPump(h.dispatch)
}

// dispatch routes one inbound event by its type tag.
func (h *WSHandler) dispatch(c *hub.Client, raw []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(raw, &base); err != nil {
		log.L().Warn().Err(err).Str(log.FieldConnID, c.ID).Msg("malformed websocket event")
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "malformed event"))
		return
	}

	switch base.Type {
	case domain.EventRegisterUser:
		h.handleRegister(c, raw)
	case domain.EventSendMessage:
		h.handleSendMessage(c, raw)
	case domain.EventMessageDeleted:
		h.handleMessageDeleted(c, raw)
	case domain.EventRequestAccepted:
		h.handleRequestAccepted(c, raw)
	default:
		log.L().Debug().
			Str(log.FieldConnID, c.ID).
			Str(log.FieldEventType, base.Type).
			Msg("unknown websocket event type")
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "unknown event type"))
	}
}

// handleRegister binds the connection to a user identity. An empty userId is
// ignored: it must never claim an entry in the registry.
func (h *WSHandler) handleRegister(c *hub.Client, raw []byte) {
	var ev domain.RegisterUserEvent
	if err := json.Unmarshal(raw, &ev); err != nil || ev.UserID == "" {
		log.L().Warn().Str(log.FieldConnID, c.ID).Msg("register_user with empty user id ignored")
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "userId is required"))
		return
	}

	h.hub.Bind(ev.UserID, c)
}

// handleSendMessage mirrors an already-persisted message to both parties'
// live connections. Nothing is written to storage here.
func (h *WSHandler) handleSendMessage(c *hub.Client, raw []byte) {
	var ev domain.MessageEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "malformed message event"))
		return
	}
	if ev.Receiver == "" {
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "receiver is required"))
		return
	}

	h.relay.MirrorMessage(context.Background(), ev.Message)
}

// handleMessageDeleted mirrors a deletion announcement. The actor is the
// connection's bound identity, never a client-supplied field.
func (h *WSHandler) handleMessageDeleted(c *hub.Client, raw []byte) {
	var ev domain.MessageDeletedEvent
	if err := json.Unmarshal(raw, &ev); err != nil || ev.MessageID == "" {
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "messageId is required"))
		return
	}

	actor, _ := h.hub.Owner(c)
	h.relay.MirrorDelete(context.Background(), ev.MessageID, ev.Receiver, actor)
}

// handleRequestAccepted notifies exactly the two parties of the named
// request. An event with no requestId is rejected: there is no broadcast.
func (h *WSHandler) handleRequestAccepted(c *hub.Client, raw []byte) {
	var ev domain.RequestAcceptedEvent
	if err := json.Unmarshal(raw, &ev); err != nil || ev.RequestID == "" {
		c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "requestId is required"))
		return
	}

	if err := h.relay.NotifyRequestAcceptedByID(context.Background(), ev.RequestID); err != nil {
		log.L().Warn().Err(err).
			Str(log.FieldConnID, c.ID).
			Str(log.FieldFriendReq, ev.RequestID).
			Msg("request_accepted mirror failed")
	}
}
