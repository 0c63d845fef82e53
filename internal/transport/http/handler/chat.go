package handler

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	maxImageLen int // decoded image bytes
}

type ChatRequest struct {
	Message       string         `json:"message"`
	ImageBase64   string         `json:"image_base64"`
	ImageMIMEType string         `json:"image_mime_type"`
	Metadata      map[string]any `json:"metadata"`
}

func NewChatHandler(chatService *app.ChatService, maxImageBytes int) *ChatHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = 5 << 20
	}
	return &ChatHandler{chatService: chatService, maxImageLen: maxImageBytes}
}

// Chat runs one conversation turn. After validation the endpoint always
// answers 200 with a reply shape; generation failures become an apologetic
// assistant turn rather than an error status.
func (h *ChatHandler) Chat(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "invalid request payload")
		return
	}
	if req.Message == "" && req.ImageBase64 == "" {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "message or image is required")
		return
	}

	var imageBytes []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidationError, "image_base64 is not valid base64")
			return
		}
		if len(decoded) > h.maxImageLen {
			response.Error(c, http.StatusBadRequest, response.CodeValidationError, "image exceeds the size limit")
			return
		}
		imageBytes = decoded
	}

	reply, err := h.chatService.Send(c.Request.Context(), app.SendInput{
		OwnerID:     principal.Subject,
		Message:     req.Message,
		ImageBase64: req.ImageBase64,
		ImageMIME:   req.ImageMIMEType,
		ImageBytes:  imageBytes,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeValidationError, "message or image is required")
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "conversation could not be saved")
		return
	}

	response.OK(c, gin.H{"reply": reply})
}

func (h *ChatHandler) History(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}

	turns, err := h.chatService.History(c.Request.Context(), principal.Subject)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "history unavailable")
		return
	}
	response.OK(c, turns)
}

func (h *ChatHandler) ClearChat(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}

	if err := h.chatService.Clear(c.Request.Context(), principal.Subject); err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "clear failed")
		return
	}
	response.OK(c, gin.H{"status": "success"})
}
