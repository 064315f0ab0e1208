package domain

// WebSocket event types from the client.
const (
	EventRegisterUser    = "register_user"
	EventSendMessage     = "send_message"
	EventMessageDeleted  = "message_deleted"
	EventRequestAccepted = "request_accepted"
)

// WebSocket event types to the client. EventMessageDeleted and
// EventRequestAccepted travel in both directions.
const (
	EventReceiveMessage = "receive_message"
	EventNewRequest     = "new_request"
	EventError          = "error"
)

// Error codes carried by EventError.
const (
	ErrCodeBadRequest = "BAD_REQUEST"
)

// BaseEvent carries the type discriminator of every websocket event.
type BaseEvent struct {
	Type string `json:"type"`
}

// RegisterUserEvent binds a connection to a user identity.
type RegisterUserEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// MessageEvent carries a full message payload, flattened to the wire shape
// the web client uses. Inbound (send_message) it is a best-effort mirror of
// an already-persisted message; outbound (receive_message) it is the
// authoritative delivery.
type MessageEvent struct {
	Type string `json:"type"`
	Message
}

// MessageDeletedEvent propagates a deletion. Inbound it names the receiver
// to notify; outbound only the message id is carried.
type MessageDeletedEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Receiver  string `json:"receiver,omitempty"`
}

// NewRequestEvent tells a receiver a pending friend request was created.
type NewRequestEvent struct {
	Type       string `json:"type"`
	RequestID  string `json:"requestId"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

// RequestAcceptedEvent tells both parties a request reached accepted state.
type RequestAcceptedEvent struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}

// ErrorEvent reports a malformed or rejected client event.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorEvent builds an ErrorEvent.
func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{Type: EventError, Code: code, Message: message}
}
