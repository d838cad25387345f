package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type ResourceHandler struct {
	log         *logger.Logger
	annotations services.AnnotationService
}

func NewResourceHandler(log *logger.Logger, annotations services.AnnotationService) *ResourceHandler {
	return &ResourceHandler{log: log.With("handler", "ResourceHandler"), annotations: annotations}
}

type explainRequest struct {
	Force bool `json:"force"`
}

type resourceView struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	FileName      string     `json:"fileName"`
	MimeType      string     `json:"mimeType"`
	AIProcessed   bool       `json:"aiProcessed"`
	AIExplanation *string    `json:"aiExplanation"`
	AIProcessedAt *time.Time `json:"aiProcessedAt,omitempty"`
}

func newResourceView(r *types.Resource) resourceView {
	return resourceView{
		ID:            r.ID,
		Title:         r.Title,
		FileName:      r.FileName,
		MimeType:      r.MimeType,
		AIProcessed:   r.AIProcessed,
		AIExplanation: r.AIExplanation,
		AIProcessedAt: r.AIProcessedAt,
	}
}

// POST /api/resources/:id/explain
func (h *ResourceHandler) Explain(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	resourceID, ok := pathID(c, "resource")
	if !ok {
		return
	}
	var req explainRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	res, err := h.annotations.AnnotateForUser(c.Request.Context(), userID, resourceID, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, newResourceView(res))
}

// POST /api/resources/:id/explain/async
func (h *ResourceHandler) ExplainAsync(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	resourceID, ok := pathID(c, "resource")
	if !ok {
		return
	}
	var req explainRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	jobID, err := h.annotations.Enqueue(c.Request.Context(), userID, resourceID, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "jobId": jobID})
}
