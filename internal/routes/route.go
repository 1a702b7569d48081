package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"shutdown-tracker/internal/auth"
	"shutdown-tracker/internal/cache"
	"shutdown-tracker/internal/config"
	"shutdown-tracker/internal/geocoding"
	"shutdown-tracker/internal/handlers"
	"shutdown-tracker/internal/logger"
	"shutdown-tracker/internal/metrics"
	mdlwr "shutdown-tracker/internal/middleware"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/services"
	"shutdown-tracker/internal/store"
	"shutdown-tracker/internal/styling"
)

// Deps are the collaborators the router wires into services. JWT is built
// from the configured key paths when nil.
type Deps struct {
	Shutdowns store.ShutdownStore
	Users     store.UserStore
	Sessions  store.SessionStore
	Geocoder  geocoding.Geocoder
	Cache     *cache.ShutdownCache
	Metrics   *metrics.Collector
	JWT       *auth.JWTManager
}

func NewRouter(deps Deps, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtMgr := deps.JWT
	if jwtMgr == nil {
		var err error
		jwtMgr, err = auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTIssuer)
		if err != nil {
			logr.Fatal("failed to init jwt manager", zap.Error(err))
		}
	}

	scheme, err := styling.ParseScheme(cfg.ClassificationScheme)
	if err != nil {
		logr.Fatal("invalid classification scheme", zap.Error(err))
	}
	reasons := make([]models.Reason, 0, len(cfg.AllowedReasons))
	for _, r := range cfg.AllowedReasons {
		reasons = append(reasons, models.Reason(r))
	}

	authSvc := services.NewAuthService(deps.Users, deps.Sessions, jwtMgr, cfg, logr.Logger)
	shutdownSvc := services.NewShutdownService(deps.Shutdowns, deps.Geocoder, logr.Logger, services.ShutdownOptions{
		Scheme:         scheme,
		AllowedReasons: reasons,
		Cache:          deps.Cache,
		Metrics:        deps.Metrics,
	})
	userSvc := services.NewUserService(deps.Users, logr.Logger)

	authMW := mdlwr.NewAuthMiddleware(authSvc, logr.Logger)

	authHandler := handlers.NewAuthHandler(authSvc, logr, cfg)
	shutdownHandler := handlers.NewShutdownHandler(shutdownSvc, logr.Logger)
	userHandler := handlers.NewUserHandler(userSvc, logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/login", authHandler.LoginLocal)
			r.Post("/ldap", authHandler.LoginLDAP)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMW.JWTAuth)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/shutdowns", func(r chi.Router) {
			r.Use(authMW.JWTAuth)
			r.Get("/", shutdownHandler.List)
			r.Post("/", shutdownHandler.Create)
			r.Get("/map", shutdownHandler.Map)
			r.Get("/regions", shutdownHandler.Regions)
			r.Get("/legend", shutdownHandler.Legend)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", shutdownHandler.Get)
				r.Put("/", shutdownHandler.Update)
				r.Delete("/", shutdownHandler.Delete)
				r.Post("/clear", shutdownHandler.Clear)
				r.Get("/history", shutdownHandler.History)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMW.JWTAuth)
			r.Get("/", userHandler.List)
			r.Put("/{id}/access-level", userHandler.UpdateAccessLevel)
		})
	})

	return r
}
