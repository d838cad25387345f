package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type AssistHandler struct {
	log    *logger.Logger
	assist services.AssistService
}

func NewAssistHandler(log *logger.Logger, assist services.AssistService) *AssistHandler {
	return &AssistHandler{log: log.With("handler", "AssistHandler"), assist: assist}
}

type codeRequest struct {
	Service  string `json:"service"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Goal     string `json:"goal"`
}

type bookRequest struct {
	Service string `json:"service"`
	Topic   string `json:"topic"`
	Chapter string `json:"chapter"`
}

func (h *AssistHandler) bindCode(c *gin.Context) (codeRequest, bool) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		response.RespondError(c, http.StatusBadRequest, "code is required")
		return req, false
	}
	return req, true
}

func (h *AssistHandler) respondText(c *gin.Context, text string, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"text": text})
}

// POST /api/assist/explain-code
func (h *AssistHandler) ExplainCode(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	req, ok := h.bindCode(c)
	if !ok {
		return
	}
	text, err := h.assist.ExplainCode(c.Request.Context(), userID, req.Service, req.Code, req.Language)
	h.respondText(c, text, err)
}

// POST /api/assist/suggest-alternative
func (h *AssistHandler) SuggestAlternative(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	req, ok := h.bindCode(c)
	if !ok {
		return
	}
	text, err := h.assist.SuggestAlternative(c.Request.Context(), userID, req.Service, req.Code, req.Language, req.Goal)
	h.respondText(c, text, err)
}

// POST /api/assist/book-content
func (h *AssistHandler) BookContent(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Topic) == "" {
		response.RespondError(c, http.StatusBadRequest, "topic is required")
		return
	}
	text, err := h.assist.BookContent(c.Request.Context(), userID, req.Service, req.Topic, req.Chapter)
	h.respondText(c, text, err)
}
