package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theshibabasement/neuroflow/internal/platform/apierr"

	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
)

// RespondAppError maps sentinel errors onto HTTP statuses. Store outages are
// 503, provider outages that escaped their fallbacks are 502.
func RespondAppError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, apperr.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperr.ErrStoreUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
	case errors.Is(err, apperr.ErrProviderUnavailable):
		RespondError(c, http.StatusBadGateway, "provider_unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
