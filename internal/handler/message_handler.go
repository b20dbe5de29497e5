package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timesaver/backend/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

type sendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Inbox(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	inbox, apiErr := h.messageService.Inbox(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, inbox)
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	msg, apiErr := h.messageService.Send(c.Request.Context(), userID, req.RecipientID, req.Text)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *MessageHandler) Thread(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	thread, apiErr := h.messageService.Thread(c.Request.Context(), userID, c.Param("userId"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": thread})
}

func (h *MessageHandler) Users(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	users, apiErr := h.messageService.Contacts(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
