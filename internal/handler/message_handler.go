package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/middleware"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/response"
	"github.com/stemsi/schoolhub-backend/internal/service"
	"github.com/stemsi/schoolhub-backend/internal/validator"
)

// MessageHandler handles private message endpoints.
type MessageHandler struct {
	messageService *service.MessageService
	log            zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *service.MessageService, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		log:            log.With().Str("component", "message_handler").Logger(),
	}
}

// Inbox godoc
// GET /api/v1/messages/headers/received/:userId/:offset
func (h *MessageHandler) Inbox(c *gin.Context) {
	userID, offset, ok := pageParams(c)
	if !ok {
		return
	}

	headers, err := h.messageService.Inbox(c.Request.Context(), middleware.CurrentUser(c), userID, offset)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": headers})
}

// Outbox godoc
// GET /api/v1/messages/headers/sent/:userId/:offset
func (h *MessageHandler) Outbox(c *gin.Context) {
	userID, offset, ok := pageParams(c)
	if !ok {
		return
	}

	headers, err := h.messageService.Outbox(c.Request.Context(), middleware.CurrentUser(c), userID, offset)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": headers})
}

// ReadReceived godoc
// GET /api/v1/messages/content/received/:messageId
func (h *MessageHandler) ReadReceived(c *gin.Context) {
	id, ok := paramID(c, "messageId")
	if !ok {
		return
	}

	msg, err := h.messageService.ReadReceived(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// ReadSent godoc
// GET /api/v1/messages/content/sent/:messageId
func (h *MessageHandler) ReadSent(c *gin.Context) {
	id, ok := paramID(c, "messageId")
	if !ok {
		return
	}

	msg, err := h.messageService.ReadSent(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// Send godoc
// POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

// Delete godoc
// DELETE /api/v1/messages/:messageId
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "messageId")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "message deleted"})
}

// Search godoc
// GET /api/v1/messages/search?query=
func (h *MessageHandler) Search(c *gin.Context) {
	users, err := h.messageService.SearchReceivers(c.Request.Context(), c.Query("query"))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// pageParams reads the mailbox owner and the optional page offset.
func pageParams(c *gin.Context) (userID, offset int, ok bool) {
	userID, ok = paramID(c, "userId")
	if !ok {
		return 0, 0, false
	}
	raw := c.Param("offset")
	if raw == "" {
		return userID, 0, true
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"offset": service.ErrInvalidOffset.Error()})
		return 0, 0, false
	}
	return userID, offset, true
}
