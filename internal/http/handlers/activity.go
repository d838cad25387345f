package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type ActivityHandler struct {
	log         *logger.Logger
	submissions services.SubmissionService
	ledger      services.ProgressLedger
}

func NewActivityHandler(log *logger.Logger, submissions services.SubmissionService, ledger services.ProgressLedger) *ActivityHandler {
	return &ActivityHandler{log: log.With("handler", "ActivityHandler"), submissions: submissions, ledger: ledger}
}

type submitRequest struct {
	Submission json.RawMessage `json:"submission"`
}

type resultView struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

type submitResponse struct {
	Success  bool       `json:"success"`
	Result   resultView `json:"result"`
	XPGained int        `json:"xpGained"`
	NewLevel int        `json:"newLevel"`
	NewXP    int        `json:"newXp"`
	Attempts int        `json:"attempts"`
}

// POST /api/activities/:id/submit
func (h *ActivityHandler) Submit(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	activityID, ok := pathID(c, "activity")
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Submission) == 0 {
		response.RespondError(c, http.StatusBadRequest, "submission is required")
		return
	}
	out, err := h.submissions.Submit(c.Request.Context(), userID, activityID, req.Submission)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, submitResponse{
		Success:  true,
		Result:   resultView{Score: out.Result.Score, Passed: out.Result.Passed},
		XPGained: out.XPGained,
		NewLevel: out.NewLevel,
		NewXP:    out.NewXP,
		Attempts: out.Attempts,
	})
}

// GET /api/activities/:id/progress
func (h *ActivityHandler) GetProgress(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	activityID, ok := pathID(c, "activity")
	if !ok {
		return
	}
	row, err := h.ledger.GetAttempt(c.Request.Context(), userID, activityID)
	if err != nil {
		respondError(c, err)
		return
	}
	if row == nil {
		response.RespondError(c, http.StatusNotFound, "no attempts recorded")
		return
	}
	response.RespondOK(c, gin.H{
		"activityId":  row.ActivityID,
		"score":       row.Score,
		"completed":   row.Completed,
		"attempts":    row.Attempts,
		"lastAttempt": row.LastAttempt,
	})
}
