package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillpath-backend/internal/grading"
	"github.com/yungbote/skillpath-backend/internal/http/response"
	"github.com/yungbote/skillpath-backend/internal/platform/apierr"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/services"
)

// classify maps domain errors onto HTTP statuses. Generation failures carry a
// user-facing message; unknown errors become an opaque 500.
func classify(err error) *apierr.Error {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrResourceNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, grading.ErrUnsupportedActivityType),
		errors.Is(err, grading.ErrInvalidSubmission),
		errors.Is(err, services.ErrInvalidInput):
		return apierr.New(http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, services.ErrMissingCredential),
		errors.Is(err, llm.ErrInvalidCredential),
		errors.Is(err, services.ErrUnsupportedService),
		errors.Is(err, llm.ErrUnknownService):
		return apierr.WithMessage(http.StatusBadRequest, "credential", services.GenerationMessage(err), err)
	case errors.Is(err, llm.ErrRateLimited):
		return apierr.WithMessage(http.StatusTooManyRequests, "rate_limited", services.GenerationMessage(err), err)
	case errors.Is(err, llm.ErrUpstream):
		return apierr.WithMessage(http.StatusBadGateway, "upstream", services.GenerationMessage(err), err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "timeout", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal", err)
	}
}

func respondError(c *gin.Context, err error) {
	response.RespondAPIError(c, classify(err))
}
