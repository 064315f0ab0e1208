package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/middleware"
	"github.com/farizks7575/chat-app/internal/repository"
	"github.com/farizks7575/chat-app/internal/service"
	"github.com/farizks7575/chat-app/pkg/log"
	"github.com/farizks7575/chat-app/pkg/response"
)

// HTTPHandler exposes the REST API. Message and request writes go through
// the relay so persisted events reach live connections.
type HTTPHandler struct {
	users    service.UserService
	relay    service.RelayService
	requests service.RequestService
	auth     *middleware.AuthMiddleware
}

// NewHTTPHandler creates the REST handler.
func NewHTTPHandler(users service.UserService, relay service.RelayService, requests service.RequestService, auth *middleware.AuthMiddleware) *HTTPHandler {
	return &HTTPHandler{users: users, relay: relay, requests: requests, auth: auth}
}

// RegisterRoutes mounts the API on the engine.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine, ws *WSHandler) {
	r.GET("/health", h.Health)
	r.GET("/ws", ws.Serve)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	authed := v1.Group("")
	authed.Use(h.auth.RequireAuth())
	{
		authed.GET("/users", h.ListUsers)
		authed.PUT("/users/me", h.UpdateProfile)

		authed.POST("/messages", h.SendMessage)
		authed.GET("/messages/:user_a/:user_b", h.ListMessages)
		authed.DELETE("/messages/:message_id", h.DeleteMessage)

		authed.POST("/requests", h.SendRequest)
		authed.GET("/requests", h.ListPendingRequests)
		authed.GET("/requests/accepted", h.ListAcceptedRequests)
		authed.PUT("/requests/:request_id", h.UpdateRequestStatus)
	}
}

// Health reports liveness.
func (h *HTTPHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// Register handles the multipart registration form. The profile image is
// required.
func (h *HTTPHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid registration form")
		return
	}

	avatar, file, err := avatarFromForm(c)
	if err != nil {
		response.BadRequest(c, "profile image is required")
		return
	}
	defer file.Close()

	auth, err := h.users.Register(c.Request.Context(), &req, avatar)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrMissingAvatar):
			response.BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrEmailExists):
			response.Conflict(c, err.Error())
		default:
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("registration failed")
			response.InternalError(c, "registration failed")
		}
		return
	}

	response.Created(c, auth)
}

// Login handles credential login.
func (h *HTTPHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	auth, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("login failed")
		response.InternalError(c, "login failed")
		return
	}

	response.Success(c, auth)
}

// ListUsers returns every account's public profile.
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("user listing failed")
		response.InternalError(c, "could not list users")
		return
	}
	response.Success(c, users)
}

// UpdateProfile edits the caller's own profile.
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid profile form")
		return
	}

	avatar, file, err := avatarFromForm(c)
	if err == nil {
		defer file.Close()
	} else {
		avatar = nil
	}

	userID := middleware.GetUserID(c)
	updated, err := h.users.Update(c.Request.Context(), userID, &req, avatar)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, repository.ErrEmailExists):
			response.Conflict(c, err.Error())
		default:
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("profile update failed")
			response.InternalError(c, "profile update failed")
		}
		return
	}

	response.Success(c, updated)
}

// SendMessage persists a message and fans it out. This is the canonical
// ingress: success means the message is durable, whatever the parties'
// connection state.
func (h *HTTPHandler) SendMessage(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid message body")
		return
	}

	// The sender is the authenticated caller regardless of the body field.
	sender := middleware.GetUserID(c)

	msg, err := h.relay.SendMessage(c.Request.Context(), sender, req.Receiver, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("message send failed")
		response.InternalError(c, "message send failed")
		return
	}

	response.Created(c, msg)
}

// ListMessages returns the conversation between two users, oldest first.
func (h *HTTPHandler) ListMessages(c *gin.Context) {
	userA := c.Param("user_a")
	userB := c.Param("user_b")

	msgs, err := h.relay.ListMessages(c.Request.Context(), userA, userB)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("message listing failed")
		response.InternalError(c, "could not list messages")
		return
	}
	response.Success(c, msgs)
}

// DeleteMessage hard-deletes a message and announces the deletion. The
// optional receiver query parameter names who to notify; absent, the
// counterparty of the deleted record is notified.
func (h *HTTPHandler) DeleteMessage(c *gin.Context) {
	messageID := c.Param("message_id")
	receiver := c.Query("receiver")
	actor := middleware.GetUserID(c)

	if err := h.relay.DeleteMessage(c.Request.Context(), messageID, receiver, actor); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("message delete failed")
		response.InternalError(c, "message delete failed")
		return
	}

	response.Success(c, gin.H{"messageId": messageID})
}

// SendRequest creates a pending friend request from the caller.
func (h *HTTPHandler) SendRequest(c *gin.Context) {
	var req domain.SendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "receiverId is required")
		return
	}

	sender := middleware.GetUserID(c)
	created, err := h.requests.SendRequest(c.Request.Context(), sender, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation),
			errors.Is(err, service.ErrSelfRequest),
			errors.Is(err, repository.ErrDuplicatePending),
			errors.Is(err, repository.ErrAlreadyConnected):
			response.BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, err.Error())
		default:
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("friend request failed")
			response.InternalError(c, "friend request failed")
		}
		return
	}

	response.Created(c, created)
}

// ListPendingRequests returns the caller's pending inbox.
func (h *HTTPHandler) ListPendingRequests(c *gin.Context) {
	userID := middleware.GetUserID(c)

	reqs, err := h.requests.ListPending(c.Request.Context(), userID)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("pending request listing failed")
		response.InternalError(c, "could not list requests")
		return
	}
	response.Success(c, reqs)
}

// ListAcceptedRequests returns the caller's contacts.
func (h *HTTPHandler) ListAcceptedRequests(c *gin.Context) {
	userID := middleware.GetUserID(c)

	contacts, err := h.requests.ListAccepted(c.Request.Context(), userID)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("contact listing failed")
		response.InternalError(c, "could not list contacts")
		return
	}
	response.Success(c, contacts)
}

// UpdateRequestStatus resolves a pending request to accepted or declined.
func (h *HTTPHandler) UpdateRequestStatus(c *gin.Context) {
	var req domain.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	updated, err := h.requests.UpdateStatus(c.Request.Context(), c.Param("request_id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidStatus),
			errors.Is(err, repository.ErrRequestResolved):
			response.BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrRequestNotFound):
			response.NotFound(c, err.Error())
		default:
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("request resolution failed")
			response.InternalError(c, "request resolution failed")
		}
		return
	}

	response.Success(c, updated)
}

// avatarFromForm pulls the uploaded profile image out of the multipart form.
func avatarFromForm(c *gin.Context) (*service.AvatarUpload, multipart.File, error) {
	fileHeader, err := c.FormFile("profile")
	if err != nil {
		return nil, nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}

	return &service.AvatarUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Filename:    fileHeader.Filename,
	}, file, nil
}
