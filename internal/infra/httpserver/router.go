package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appauth "github.com/clausewise/clausewise/internal/application/auth"
	appchat "github.com/clausewise/clausewise/internal/application/chat"
	appcontracts "github.com/clausewise/clausewise/internal/application/contracts"
	domai "github.com/clausewise/clausewise/internal/domain/ai"
	domchat "github.com/clausewise/clausewise/internal/domain/chat"
	"github.com/clausewise/clausewise/internal/domain/users"
	"github.com/clausewise/clausewise/internal/infra/ai/perf"
	"github.com/clausewise/clausewise/internal/infra/extract"
	"github.com/clausewise/clausewise/internal/middleware"
)

type Router struct {
	authSvc      *appauth.Service
	contractsSvc *appcontracts.Service
	chatSvc      *appchat.Service
	maxUpload    int64
}

// Options carries the wiring the router cannot build itself.
type Options struct {
	JWTSecret   []byte
	CORSOrigins []string
	MaxUpload   int64
	Perf        *perf.History
	Checkers    map[string]middleware.HealthChecker
}

func NewRouter(authSvc *appauth.Service, contractsSvc *appcontracts.Service, chatSvc *appchat.Service, opts Options) http.Handler {
	r := &Router{
		authSvc:      authSvc,
		contractsSvc: contractsSvc,
		chatSvc:      chatSvc,
		maxUpload:    opts.MaxUpload,
	}
	mux := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler(opts.Perf))

	mux.Route("/api/v1", func(rt chi.Router) {
		rt.Post("/auth/register", r.wrap(r.handleRegister))
		rt.Post("/auth/login", r.wrap(r.handleLogin))

		rt.Group(func(pr chi.Router) {
			pr.Use(middleware.JWTAuth(opts.JWTSecret))
			pr.Use(middleware.RateLimitMiddleware(30, 1))

			pr.Get("/auth/me", r.wrap(r.handleMe))

			pr.Post("/contracts/upload", r.wrap(r.handleUpload))
			pr.Get("/contracts", r.wrap(r.handleListContracts))
			pr.Get("/contracts/{id}", r.wrap(r.handleGetContract))
			pr.Post("/contracts/{id}/analyze", r.wrap(r.handleAnalyze))
			pr.Get("/contracts/{id}/status", r.wrap(r.handleStatus))
			pr.Delete("/contracts/{id}", r.wrap(r.handleDeleteContract))

			pr.Post("/chat/sessions", r.wrap(r.handleCreateSession))
			pr.Get("/chat/sessions", r.wrap(r.handleListSessions))
			pr.Delete("/chat/sessions/{id}", r.wrap(r.handleDeleteSession))
			pr.Post("/chat/sessions/{id}/messages", r.wrap(r.handleSend))
			pr.Get("/chat/sessions/{id}/messages", r.wrap(r.handleMessages))
			pr.Get("/chat/documents/{id}/messages", r.wrap(r.handleDocumentHistory))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks handler validation failures so wrap can answer 400.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var br badRequest
		var decodeErr *domai.DecodeError
		switch {
		case errors.As(err, &br):
			http.Error(w, br.msg, http.StatusBadRequest)
		case errors.Is(err, sql.ErrNoRows),
			errors.Is(err, appcontracts.ErrNotFound),
			errors.Is(err, appchat.ErrDocumentNotFound),
			errors.Is(err, domchat.ErrSessionNotFound),
			errors.Is(err, users.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, appauth.ErrInvalidCredentials):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, users.ErrEmailTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, appauth.ErrWeakPassword),
			errors.Is(err, appauth.ErrInvalidEmail),
			errors.Is(err, domai.ErrContentTooShort),
			errors.Is(err, appcontracts.ErrNotAnalyzable),
			errors.Is(err, appchat.ErrDocumentNotReadable),
			errors.Is(err, extract.ErrUnsupportedType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, domai.ErrUnauthorized):
			http.Error(w, "ai provider rejected credentials", http.StatusBadGateway)
		case errors.Is(err, domai.ErrNoJSONFound), errors.As(err, &decodeErr):
			http.Error(w, "ai returned an unusable reply, please retry", http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
