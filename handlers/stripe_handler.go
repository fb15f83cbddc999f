package handlers

import (
	"io"
	"net/http"

	middleware "github.com/ravigill3969/textgen-quota/middlewares"
	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/services"
	"github.com/ravigill3969/textgen-quota/utils"
)

const maxWebhookBytes = int64(65536)

type StripeHandler struct {
	Billing *services.BillingService
}

func (h *StripeHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	url, err := h.Billing.CreateCheckout(r.Context(), claims.UserUUID())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.CheckoutRes{CheckoutURL: url})
}

func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Unreadable request body")
		return
	}

	if err := h.Billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
