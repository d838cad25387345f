package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillpath-backend/internal/platform/apierr"
)

type ErrorBody struct {
	Error string `json:"error"`
}

func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

// RespondAPIError writes e and attaches the cause to the gin context so the
// request logger can report it.
func RespondAPIError(c *gin.Context, e *apierr.Error) {
	if e.Err != nil {
		_ = c.Error(e.Err)
	}
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, e.Public())
}

// RespondErr writes err, which should already be an *apierr.Error; anything
// else is reported as a 500.
func RespondErr(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondAPIError(c, ae)
		return
	}
	RespondAPIError(c, apierr.New(http.StatusInternalServerError, "internal", err))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
