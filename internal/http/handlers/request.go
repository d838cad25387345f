package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/ctxutil"
)

// callerID returns the authenticated user or writes a 401.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// pathID parses the :id route parameter. Malformed ids are reported as
// missing resources.
func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, what+" not found")
		return uuid.Nil, false
	}
	return id, true
}

// bindOptionalJSON decodes the body into dst; an empty body leaves dst as is.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
