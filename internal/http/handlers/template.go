package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/http/response"
	"github.com/yungbote/vorhaben-backend/internal/platform/ctxutil"
	"github.com/yungbote/vorhaben-backend/internal/services"
)

type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type createUserTemplateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Structure   json.RawMessage `json:"structure" binding:"required"`
}

// GET /api/templates/list
func (h *TemplateHandler) List(c *gin.Context) {
	out := gin.H{"system": h.templates.ListSystem(), "user": []*documents.UserTemplate{}}
	if ctxutil.OwnerEmail(c.Request.Context()) != "" {
		rows, err := h.templates.ListUserTemplates(c.Request.Context())
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		out["user"] = rows
	}
	response.RespondOK(c, out)
}

// GET /api/templates/system/:name
func (h *TemplateHandler) GetSystem(c *gin.Context) {
	spec, err := h.templates.GetSystem(c.Param("name"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"template": spec})
}

// POST /api/user-templates
func (h *TemplateHandler) CreateUserTemplate(c *gin.Context) {
	var req createUserTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.templates.CreateUserTemplate(c.Request.Context(), req.Name, req.Description, req.Structure)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": row})
}

// GET /api/user-templates
func (h *TemplateHandler) ListUserTemplates(c *gin.Context) {
	rows, err := h.templates.ListUserTemplates(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": rows})
}

// GET /api/user-templates/:id
func (h *TemplateHandler) GetUserTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template_id", err)
		return
	}
	row, err := h.templates.GetUserTemplate(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"template": row})
}
