package handlers

import (
	"net/http"

	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/services"
	"github.com/ravigill3969/textgen-quota/utils"
)

type AdminHandler struct {
	Admin *services.AdminService
}

func (h *AdminHandler) GetData(w http.ResponseWriter, r *http.Request) {
	users, err := h.Admin.ListUsers(r.Context())
	if err != nil {
		utils.RespondInternal(w, r, err, "Failed to fetch users")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.UsersRes{Users: users, IsAdmin: true})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.Admin.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.MessageRes{Message: "User deleted successfully."})
}

func (h *AdminHandler) GetResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Admin.ListResources(r.Context())
	if err != nil {
		utils.RespondInternal(w, r, err, "Failed to fetch resource usage")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.ResourcesRes{Resources: resources})
}
