package routes

import (
	"net/http"

	"github.com/ravigill3969/textgen-quota/handlers"
	middleware "github.com/ravigill3969/textgen-quota/middlewares"
)

func StripeRoutes(mux *http.ServeMux, sh *handlers.StripeHandler, gate *middleware.AuthGate) {
	mux.Handle("POST "+BasePath+"/billing/checkout", gate.AuthMiddleware(http.HandlerFunc(sh.CreateCheckoutSession)))
	mux.HandleFunc("POST "+BasePath+"/billing/webhook", sh.HandleWebhook)
}
