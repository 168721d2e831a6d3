package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/parkmead/sprintdeck/internal/auth/service"
	"github.com/parkmead/sprintdeck/internal/auth/store"
	"github.com/parkmead/sprintdeck/pkg/httpx"
	"github.com/parkmead/sprintdeck/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	UserService      *service.UserService
	SessionService   *service.SessionService
	TwoFactorService *service.TwoFactorService
	Guard            *service.Guard
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Global chain: request logging first, then the cheap path/cookie gate.
	// The store-backed guard is attached per protected page, not globally.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		AccessGate(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerPages()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{UserService: r.UserService}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP (password guessing surface)
	loginHandler := &LoginHandler{
		UserService:    r.UserService,
		SessionService: r.SessionService,
	}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - moderate rate limit
	logoutHandler := &LogoutHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /auth/session - lenient rate limit (the page shell polls this)
	sessionHandler := &SessionHandler{SessionService: r.SessionService}
	r.Mux.Handle("GET /auth/session",
		httpx.Chain(sessionHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{
		SessionService:   r.SessionService,
		TwoFactorService: r.TwoFactorService,
		Guard:            r.Guard,
	}

	// GET /check-2fa-session - lenient rate limit (polled per page load)
	r.Mux.Handle("GET /auth/check-2fa-session",
		httpx.Chain(http.HandlerFunc(h.HandleCheck),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /verify-2fa - strict rate limit (prevent brute force of TOTP codes)
	r.Mux.Handle("POST /auth/verify-2fa",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /2fa/enroll - moderate rate limit
	r.Mux.Handle("POST /auth/2fa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /2fa/activate - strict rate limit (code guessing surface)
	r.Mux.Handle("POST /auth/2fa/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /2fa/disable - strict rate limit (also a code guessing surface)
	r.Mux.Handle("POST /auth/2fa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPages() {
	// Public pages; the gate bounces logged-in visitors before these run.
	r.Mux.Handle("GET /login", PageHandler("Log in"))
	r.Mux.Handle("GET /register", PageHandler("Register"))

	// Cookie-gated but guard-free: a pending session must be able to reach
	// the verification page, or nobody could ever verify.
	r.Mux.Handle("GET /verify-2fa", PageHandler("Two-factor verification"))

	// Fully protected pages run behind the store-backed guard.
	r.Mux.Handle("GET /dashboard",
		httpx.Chain(DashboardHandler(),
			GuardMiddleware(r.Guard),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
