package handlers

import (
	"net/http"

	middleware "github.com/ravigill3969/textgen-quota/middlewares"
	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/services"
	"github.com/ravigill3969/textgen-quota/utils"
)

type GenerateHandler struct {
	Generation *services.GenerationService
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var form models.GenerateForm
	if err := decodeJSON(w, r, &form, true); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if form.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "Prompt is required.")
		return
	}

	res, err := h.Generation.Generate(r.Context(), claims.UserUUID(), form.Prompt)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, res)
}

func (h *GenerateHandler) GenerateHaiku(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := h.Generation.GenerateHaiku(r.Context(), claims.UserUUID())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, res)
}

func (h *GenerateHandler) GenerateJoke(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var form models.JokeForm
	if err := decodeJSON(w, r, &form, true); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.Generation.GenerateJoke(r.Context(), claims.UserUUID(), form.Username)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, res)
}
