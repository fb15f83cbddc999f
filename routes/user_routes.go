package routes

import (
	"net/http"

	"github.com/ravigill3969/textgen-quota/handlers"
	middleware "github.com/ravigill3969/textgen-quota/middlewares"
)

func RegisterUserRoutes(mux *http.ServeMux, uh *handlers.UserHandler, gate *middleware.AuthGate) {
	mux.HandleFunc("POST "+BasePath+"/register", uh.Register)
	mux.HandleFunc("POST "+BasePath+"/login", uh.Login)
	mux.HandleFunc("POST "+BasePath+"/logout", uh.Logout)

	mux.Handle("GET "+BasePath+"/checkUser", gate.AuthMiddleware(http.HandlerFunc(uh.CheckUser)))
	mux.Handle("GET "+BasePath+"/getApiCalls", gate.AuthMiddleware(http.HandlerFunc(uh.GetAPICalls)))
	mux.Handle("PUT "+BasePath+"/update/{id}", gate.AuthMiddleware(http.HandlerFunc(uh.UpdateUser)))
}
