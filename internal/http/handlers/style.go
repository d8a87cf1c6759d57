package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vorhaben-backend/internal/http/response"
	"github.com/yungbote/vorhaben-backend/internal/services"
)

type StyleHandler struct {
	style services.StyleService
}

func NewStyleHandler(style services.StyleService) *StyleHandler {
	return &StyleHandler{style: style}
}

type regenerateStyleRequest struct {
	Texts []string `json:"texts" binding:"required,min=1"`
}

// GET /api/style-profile
func (h *StyleHandler) Get(c *gin.Context) {
	view, err := h.style.Current(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/style-profile/regenerate
func (h *StyleHandler) Regenerate(c *gin.Context) {
	var req regenerateStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.style.Regenerate(c.Request.Context(), req.Texts)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}
