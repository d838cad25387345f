package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type ConceptHandler struct {
	log      *logger.Logger
	concepts services.ConceptService
}

func NewConceptHandler(log *logger.Logger, concepts services.ConceptService) *ConceptHandler {
	return &ConceptHandler{log: log.With("handler", "ConceptHandler"), concepts: concepts}
}

type conceptRequest struct {
	Concept string `json:"concept"`
	Context string `json:"context"`
	Service string `json:"service"`
	Force   bool   `json:"force"`
}

// POST /api/concepts/:id/explain
func (h *ConceptHandler) Explain(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req conceptRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	row, cached, err := h.concepts.Explain(c.Request.Context(), userID, services.ConceptRequest{
		ConceptID: c.Param("id"),
		Concept:   req.Concept,
		Context:   req.Context,
		Service:   req.Service,
		Force:     req.Force,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"conceptId":   row.ConceptID,
		"concept":     row.Concept,
		"explanation": row.Explanation,
		"cached":      cached,
	})
}
