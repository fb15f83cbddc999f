package routes

import (
	"net/http"

	"github.com/ravigill3969/textgen-quota/handlers"
	middleware "github.com/ravigill3969/textgen-quota/middlewares"
)

func RegisterGenerateRoutes(mux *http.ServeMux, gh *handlers.GenerateHandler, gate *middleware.AuthGate) {
	mux.Handle("POST "+BasePath+"/generate", gate.AuthMiddleware(http.HandlerFunc(gh.Generate)))
	mux.Handle("POST "+BasePath+"/generate-haiku", gate.AuthMiddleware(http.HandlerFunc(gh.GenerateHaiku)))
	mux.Handle("POST "+BasePath+"/generate-joke", gate.AuthMiddleware(http.HandlerFunc(gh.GenerateJoke)))
}
