package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farizks7575/chat-app/internal/config"
	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/hub"
	"github.com/farizks7575/chat-app/internal/service"
)

// recordingRelay records mirror and notification calls.
type recordingRelay struct {
	service.RelayService
	mirrored      []domain.Message
	mirrorDeletes []string
	acceptedIDs   []string
	acceptErr     error
}

func (r *recordingRelay) MirrorMessage(ctx context.Context, msg domain.Message) {
	r.mirrored = append(r.mirrored, msg)
}

func (r *recordingRelay) MirrorDelete(ctx context.Context, messageID, receiver, actorID string) {
	r.mirrorDeletes = append(r.mirrorDeletes, messageID)
}

func (r *recordingRelay) NotifyRequestAcceptedByID(ctx context.Context, requestID string) error {
	if r.acceptErr != nil {
		return r.acceptErr
	}
	r.acceptedIDs = append(r.acceptedIDs, requestID)
	return nil
}

func newTestWSHandler(relay *recordingRelay) (*WSHandler, *hub.Hub) {
	h := hub.NewHub()
	return NewWSHandler(h, relay, config.WebSocketConfig{}), h
}

func newBoundClient(t *testing.T, h *hub.Hub, userID string) *hub.Client {
	t.Helper()
	c := hub.NewClient("conn-"+userID, h, nil, config.WebSocketConfig{})
	if userID != "" {
		h.Bind(userID, c)
	}
	return c
}

func TestDispatchRegisterBindsUser(t *testing.T) {
	r := require.New(t)
	ws, h := newTestWSHandler(&recordingRelay{})
	c := hub.NewClient("conn-1", h, nil, config.WebSocketConfig{})

	ws.dispatch(c, []byte(`{"type":"register_user","userId":"alice"}`))

	sink, ok := h.Lookup("alice")
	r.True(ok)
	r.Same(c, sink)
}

func TestDispatchRegisterEmptyUserIDIsIgnored(t *testing.T) {
	r := require.New(t)
	ws, h := newTestWSHandler(&recordingRelay{})
	c := hub.NewClient("conn-1", h, nil, config.WebSocketConfig{})

	ws.dispatch(c, []byte(`{"type":"register_user","userId":""}`))

	// The empty id must never claim a registry entry.
	r.Equal(0, h.ConnectedUsers())
	_, ok := h.Owner(c)
	r.False(ok)
}

func TestDispatchSendMessageMirrors(t *testing.T) {
	r := require.New(t)
	relay := &recordingRelay{}
	ws, h := newTestWSHandler(relay)
	c := newBoundClient(t, h, "alice")

	ws.dispatch(c, []byte(`{"type":"send_message","_id":"msg-1","sender":"alice","receiver":"bob","content":"hi"}`))

	r.Len(relay.mirrored, 1)
	r.Equal("msg-1", relay.mirrored[0].ID)
	r.Equal("bob", relay.mirrored[0].Receiver)
}

func TestDispatchSendMessageWithoutReceiverIsRejected(t *testing.T) {
	r := require.New(t)
	relay := &recordingRelay{}
	ws, h := newTestWSHandler(relay)
	c := newBoundClient(t, h, "alice")

	ws.dispatch(c, []byte(`{"type":"send_message","content":"hi"}`))

	r.Empty(relay.mirrored)
}

func TestDispatchMessageDeletedMirrors(t *testing.T) {
	r := require.New(t)
	relay := &recordingRelay{}
	ws, h := newTestWSHandler(relay)
	c := newBoundClient(t, h, "alice")

	ws.dispatch(c, []byte(`{"type":"message_deleted","messageId":"msg-1","receiver":"bob"}`))

	r.Equal([]string{"msg-1"}, relay.mirrorDeletes)
}

func TestDispatchRequestAcceptedRequiresRequestID(t *testing.T) {
	r := require.New(t)
	relay := &recordingRelay{}
	ws, h := newTestWSHandler(relay)
	c := newBoundClient(t, h, "alice")

	// No request id, no fan-out of any kind.
	ws.dispatch(c, []byte(`{"type":"request_accepted"}`))
	r.Empty(relay.acceptedIDs)

	ws.dispatch(c, []byte(`{"type":"request_accepted","requestId":"req-1"}`))
	r.Equal([]string{"req-1"}, relay.acceptedIDs)
}

func TestDispatchUnknownEventType(t *testing.T) {
	r := require.New(t)
	relay := &recordingRelay{}
	ws, h := newTestWSHandler(relay)
	c := newBoundClient(t, h, "alice")

	ws.dispatch(c, []byte(`{"type":"no_such_event"}`))

	r.Empty(relay.mirrored)
	r.Empty(relay.mirrorDeletes)
	r.Empty(relay.acceptedIDs)
}
