package routes

import (
	"net/http"

	"github.com/ravigill3969/textgen-quota/handlers"
	middleware "github.com/ravigill3969/textgen-quota/middlewares"
	"github.com/ravigill3969/textgen-quota/utils"
)

const BasePath = "/api/v1"

type Dependencies struct {
	Gate     *middleware.AuthGate
	Users    *handlers.UserHandler
	Generate *handlers.GenerateHandler
	Admin    *handlers.AdminHandler
	Stripe   *handlers.StripeHandler
	Health   *handlers.HealthHandler

	Usage          middleware.UsageRecorder
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
}

// NewRouter wires every route and wraps the mux in the shared middleware
// chain: logging, CORS, security headers, rate limiting, usage counting.
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	RegisterUserRoutes(mux, deps.Users, deps.Gate)
	RegisterGenerateRoutes(mux, deps.Generate, deps.Gate)
	RegisterAdminRoutes(mux, deps.Admin, deps.Gate)
	StripeRoutes(mux, deps.Stripe, deps.Gate)

	mux.HandleFunc("GET /health", deps.Health.Health)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "Invalid endpoint.")
	})

	var h http.Handler = mux
	if deps.Usage != nil {
		h = middleware.UsageCounter(deps.Usage, mux, BasePath+"/")(h)
	}
	if deps.RateLimiter != nil {
		h = deps.RateLimiter.GlobalRateLimiter(h)
	}
	h = middleware.SetCommonHeaders(h)
	h = middleware.CORS(deps.AllowedOrigins)(h)
	return middleware.RequestLogger(h)
}
