package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/services"
	"github.com/ravigill3969/textgen-quota/utils"
)

const (
	maxBodyBytes = 1 << 20
	queryError   = "An error occurred while processing your request."
)

var errEmptyBody = errors.New("empty request body")

// decodeJSON reads a single JSON object from the body into dst. An empty
// body is only accepted when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	return id, err == nil
}

// respondServiceError maps service sentinels to status codes. Anything it
// does not recognise is logged and reported as a generic 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		utils.RespondFieldErrors(w, verr.Fields)
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(w, http.StatusBadRequest, "Invalid request.")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondError(w, http.StatusUnauthorized, "Invalid credentials.")
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(w, http.StatusForbidden, "Forbidden.")
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(w, http.StatusConflict, "User already exists.")
	case errors.Is(err, services.ErrQuotaExhausted):
		utils.RespondError(w, http.StatusTooManyRequests, "API call quota exhausted.")
	case errors.Is(err, services.ErrUpstreamTimeout):
		utils.RespondError(w, http.StatusGatewayTimeout, "Text generation timed out.")
	case errors.Is(err, services.ErrUpstream):
		utils.RespondError(w, http.StatusBadGateway, "Text generation failed.")
	case errors.Is(err, services.ErrBillingDisabled):
		utils.RespondError(w, http.StatusServiceUnavailable, "Billing is not available.")
	case errors.Is(err, context.Canceled):
		slog.InfoContext(r.Context(), "client went away", "path", r.URL.Path)
	default:
		utils.RespondInternal(w, r, err, queryError)
	}
}
