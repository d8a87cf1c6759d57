package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vorhaben-backend/internal/http/response"
	"github.com/yungbote/vorhaben-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message            string   `json:"message" binding:"required"`
	LastEditedSections []string `json:"last_edited_sections"`
}

type confirmRequest struct {
	SectionID        string  `json:"section_id" binding:"required"`
	ConfirmedContent *string `json:"confirmed_content" binding:"required"`
}

// POST /api/documents/:id/chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.chat.Send(c.Request.Context(), id, req.Message, req.LastEditedSections)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if res.UpdatedSections == nil {
		res.UpdatedSections = []string{}
	}
	response.RespondOK(c, res)
}

// POST /api/documents/:id/chat/confirm
func (h *ChatHandler) Confirm(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.chat.Confirm(c.Request.Context(), id, req.SectionID, *req.ConfirmedContent)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message":          res.Message,
		"updated_sections": res.UpdatedSections,
		"document":         res.Document,
	})
}

// GET /api/documents/:id/chat
func (h *ChatHandler) History(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	hist, err := h.chat.History(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, hist)
}
