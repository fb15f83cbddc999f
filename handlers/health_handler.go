package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ravigill3969/textgen-quota/utils"
)

type HealthHandler struct {
	// Ping checks the backing store. Nil means there is nothing to check.
	Ping func(ctx context.Context) error
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
