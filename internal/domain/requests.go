package domain

// RegisterRequest carries the multipart registration form.
type RegisterRequest struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Gender   string `form:"gender"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest carries profile edits. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Gender   string `form:"gender"`
	Password string `form:"password"`
}

// SendMessageRequest is the body of the message-create endpoint.
type SendMessageRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

// SendRequestRequest is the body of the friend-request-create endpoint.
type SendRequestRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

// UpdateRequestStatusRequest is the body of the request-resolve endpoint.
type UpdateRequestStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AuthResponse is returned on successful register or login.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
