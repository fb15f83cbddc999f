package handlers

import (
	"net/http"

	middleware "github.com/ravigill3969/textgen-quota/middlewares"
	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/services"
	"github.com/ravigill3969/textgen-quota/utils"
)

type UserHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form models.RegisterForm
	if err := decodeJSON(w, r, &form, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.Auth.Register(r.Context(), form); err != nil {
		respondServiceError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, models.MessageRes{Message: "User registered successfully."})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if err := decodeJSON(w, r, &form, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if form.Email == "" || form.Password == "" {
		utils.RespondValidationError(w, "Missing required fields", []string{"email", "password"})
		return
	}

	sess, err := h.Auth.Login(r.Context(), form)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	utils.SetAuthCookie(w, sess.Token, h.Auth.TokenTTL(), h.CookieSecure)
	utils.RespondJSON(w, http.StatusOK, sess.Response)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.ClearAuthCookie(w, h.CookieSecure)
	utils.RespondJSON(w, http.StatusOK, models.MessageRes{Message: "Logged out successfully."})
}

func (h *UserHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := h.Auth.CheckUser(r.Context(), claims)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, res)
}

func (h *UserHandler) GetAPICalls(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	remaining, err := h.Auth.APICalls(r.Context(), claims)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, models.APICallsRes{APICalls: remaining})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	target, ok := pathUUID(r, "id")
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var form models.UpdateUser
	if err := decodeJSON(w, r, &form, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.Auth.UpdateUsername(r.Context(), claims, target, form.Username)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if sess != nil {
		utils.SetAuthCookie(w, sess.Token, h.Auth.TokenTTL(), h.CookieSecure)
	}
	utils.RespondJSON(w, http.StatusOK, models.MessageRes{Message: "Username updated successfully."})
}
