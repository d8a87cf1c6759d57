package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/http/response"
	"github.com/yungbote/vorhaben-backend/internal/services"
)

type DocumentHandler struct {
	docs services.DocumentService
}

func NewDocumentHandler(docs services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

type updateDocumentRequest struct {
	ContentJSON *documents.Content `json:"content_json" binding:"required"`
}

type generateRequest struct {
	Force bool `json:"force"`
}

// GET /api/companies/:company_id/documents/vorhabensbeschreibung
func (h *DocumentHandler) GetOrCreate(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("company_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_company_id", err)
		return
	}
	in := services.GetOrCreateInput{
		CompanyID:      companyID,
		TemplateSource: c.Query("template_source"),
		TemplateRef:    c.Query("template_ref"),
	}
	if raw := strings.TrimSpace(c.Query("funding_program_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_funding_program_id", err)
			return
		}
		in.FundingProgramID = &id
	}
	doc, err := h.docs.GetOrCreate(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// GET /api/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	doc, err := h.docs.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// PUT /api/documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	doc, err := h.docs.UpdateContent(c.Request.Context(), id, *req.ContentJSON)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// POST /api/documents/:id/confirm-headings
func (h *DocumentHandler) ConfirmHeadings(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	doc, err := h.docs.ConfirmHeadings(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

// POST /api/documents/:id/generate
func (h *DocumentHandler) Generate(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	res, err := h.docs.Generate(c.Request.Context(), id, req.Force)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"document":              res.Document,
		"generated_section_ids": res.GeneratedIDs,
		"failed_batches":        res.FailedBatches,
	})
}

func documentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		if err == nil {
			err = errors.New("document id is required")
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return uuid.Nil, false
	}
	return id, true
}
