package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor
	FieldUserID = "user_id"

	// Chat
	FieldMessageID  = "message_id"
	FieldSenderID   = "sender_id"
	FieldReceiverID = "receiver_id"
	FieldFriendReq  = "friend_request_id"
	FieldConnID     = "conn_id"
	FieldEventType  = "event_type"

	// Log type (for audit entries)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
