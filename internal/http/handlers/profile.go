package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/services"
)

type ProfileHandler struct {
	log      *logger.Logger
	profiles services.ProfileService
}

func NewProfileHandler(log *logger.Logger, profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), profiles: profiles}
}

// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	p, err := h.profiles.Ensure(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := gin.H{
		"userId":          p.UserID,
		"level":           p.Level,
		"xp":              p.XP,
		"currentModuleId": p.CurrentModuleID,
	}
	m, err := h.profiles.CurrentModule(c.Request.Context(), p)
	if err != nil {
		h.log.Warn("current module lookup failed", "error", err)
	} else if m != nil {
		out["currentModule"] = m.Title
	}
	response.RespondOK(c, out)
}

type skillView struct {
	SkillID     string `json:"skillId"`
	Name        string `json:"name,omitempty"`
	Proficiency int    `json:"proficiency"`
	Attempts    int    `json:"attempts"`
	LastScore   int    `json:"lastScore"`
}

// GET /api/profile/skills
func (h *ProfileHandler) ListSkills(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	rows, err := h.profiles.ListSkills(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": lo.Map(rows, func(r *types.SkillProficiency, _ int) skillView {
		v := skillView{SkillID: r.SkillID.String(), Proficiency: r.Proficiency, Attempts: r.Attempts, LastScore: r.LastScore}
		if r.Skill != nil {
			v.Name = r.Skill.Name
		}
		return v
	})})
}

type progressView struct {
	ActivityID  string    `json:"activityId"`
	Score       int       `json:"score"`
	Completed   bool      `json:"completed"`
	Attempts    int       `json:"attempts"`
	LastAttempt time.Time `json:"lastAttempt"`
}

// GET /api/profile/progress
func (h *ProfileHandler) ListProgress(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	rows, err := h.profiles.ListProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": lo.Map(rows, func(r *types.UserActivityProgress, _ int) progressView {
		return progressView{
			ActivityID:  r.ActivityID.String(),
			Score:       r.Score,
			Completed:   r.Completed,
			Attempts:    r.Attempts,
			LastAttempt: r.LastAttempt,
		}
	})})
}
