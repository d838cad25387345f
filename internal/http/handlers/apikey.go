package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type APIKeyHandler struct {
	log  *logger.Logger
	keys services.APIKeyService
}

func NewAPIKeyHandler(log *logger.Logger, keys services.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{log: log.With("handler", "APIKeyHandler"), keys: keys}
}

type saveKeyRequest struct {
	Service string `json:"service"`
	APIKey  string `json:"apiKey"`
}

// POST /api/api-keys
//
// Always answers 200 with {valid, error?} so clients can render the message.
func (h *APIKeyHandler) Save(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req saveKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondOK(c, services.KeyValidation{Valid: false, Error: "Both service and apiKey are required."})
		return
	}
	v, err := h.keys.Save(c.Request.Context(), userID, req.Service, req.APIKey)
	if err != nil {
		_ = c.Error(err)
		h.log.Error("api key save failed", "user_id", userID, "error", err)
		v = services.KeyValidation{Valid: false, Error: "The key could not be saved. Please try again."}
	}
	response.RespondOK(c, v)
}

// GET /api/api-keys
func (h *APIKeyHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	statuses, err := h.keys.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"keys": statuses})
}

// DELETE /api/api-keys/:service
func (h *APIKeyHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	deleted, err := h.keys.Delete(c.Request.Context(), userID, c.Param("service"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, "no key configured for this service")
		return
	}
	c.Status(http.StatusNoContent)
}
