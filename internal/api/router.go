package api

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/skillstage/server/internal/api/handlers"
	"github.com/skillstage/server/internal/api/middleware"
	"github.com/skillstage/server/internal/audit"
	"github.com/skillstage/server/internal/auth"
	"github.com/skillstage/server/internal/config"
	"github.com/skillstage/server/internal/domain/events"
	"github.com/skillstage/server/internal/domain/users"
	"github.com/skillstage/server/internal/metrics"
	"github.com/skillstage/server/internal/storage/postgres"
)

// BuildInfo carries version identifiers into the health endpoint.
type BuildInfo struct {
	Version   string
	GitCommit string
}

// NewRouter wires services, handlers, and the middleware chain. The returned
// janitor must run for the lifetime of the server; it prunes idle rate
// limiter buckets.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, tokens *auth.JWTManager, build BuildInfo) (http.Handler, func(ctx context.Context), error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, nil, err
	}

	usersService := users.NewService(repo.Users(), tokens, logger)
	eventsService := events.NewService(repo.Events(), logger)

	env := cfg.Environment
	auditLog := audit.NewLogger(logger)
	authHandler := handlers.NewAuthHandler(usersService, env, auditLog)
	adminHandler := handlers.NewAdminUsersHandler(usersService, env, auditLog)
	eventsHandler := handlers.NewEventsHandler(eventsService, env, auditLog)
	healthChecker := handlers.NewHealthChecker(pool, build.Version, build.GitCommit)

	authenticate := middleware.Authenticate(tokens, env)
	expertsOnly := middleware.RequireRole(env, auth.RoleTechExpert, auth.RoleChiefExpert)
	techOnly := middleware.RequireRole(env, auth.RoleTechExpert)
	loginTier := middleware.WithRateLimitTier(middleware.TierLogin)

	rateLimit, janitor := middleware.RateLimit(cfg.RateLimit)

	// Probes and metrics bypass rate limiting. The tier marker has to sit
	// outside the limiter so the limiter sees it on the request context.
	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return rateLimit(authenticate(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return rateLimit(authenticate(techOnly(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", handlers.Readyz(pool))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /api/health", healthChecker.Health())

	mux.Handle("POST /api/auth/register", public(authHandler.Register))
	mux.Handle("POST /api/auth/login", loginTier(rateLimit(http.HandlerFunc(authHandler.Login))))
	mux.Handle("GET /api/auth/profile", authed(authHandler.Profile))
	mux.Handle("GET /api/auth/users", rateLimit(authenticate(expertsOnly(http.HandlerFunc(authHandler.ListUsers)))))
	mux.Handle("POST /api/auth/users/update-role", admin(authHandler.UpdateRole))

	mux.Handle("/api/admin/users", admin(methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    authHandler.ListUsers,
		http.MethodDelete: adminHandler.DeleteUser,
	})))
	mux.Handle("POST /api/admin/chief-experts", admin(adminHandler.CreateChiefExpert))
	mux.Handle("POST /api/admin/participants", admin(adminHandler.CreateParticipant))

	mux.Handle("/api/admin/events", admin(methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    eventsHandler.ListEvents,
		http.MethodPost:   eventsHandler.CreateEvent,
		http.MethodDelete: eventsHandler.DeleteEvent,
	})))
	mux.Handle("GET /api/admin/events/{eventId}", admin(eventsHandler.GetEvent))
	mux.Handle("/api/admin/modules", admin(methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   eventsHandler.CreateModule,
		http.MethodDelete: eventsHandler.DeleteModule,
	})))

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)

	return handler, janitor, nil
}

func methodMux(byMethod map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := byMethod[r.Method]; ok {
			handler(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(byMethod))
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func allowedMethods(byMethod map[string]http.HandlerFunc) string {
	methods := make([]string, 0, len(byMethod))
	for method := range byMethod {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
