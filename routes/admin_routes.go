package routes

import (
	"net/http"

	"github.com/ravigill3969/textgen-quota/handlers"
	middleware "github.com/ravigill3969/textgen-quota/middlewares"
)

func RegisterAdminRoutes(mux *http.ServeMux, ah *handlers.AdminHandler, gate *middleware.AuthGate) {
	mux.Handle("GET "+BasePath+"/admin/data", gate.Admin(http.HandlerFunc(ah.GetData)))
	mux.Handle("DELETE "+BasePath+"/admin/delete/{id}", gate.Admin(http.HandlerFunc(ah.DeleteUser)))
	mux.Handle("GET "+BasePath+"/admin/resource", gate.Admin(http.HandlerFunc(ah.GetResources)))
}
