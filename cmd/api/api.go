package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parcelhub/docs" // registers the swagger spec
	"parcelhub/internal/auth"
	"parcelhub/internal/domain/storage"
	"parcelhub/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr          string
	db            dbConfig
	env           string
	apiURL        string
	storageDriver string
	logLevel      string
	auth          authConfig
	rateLimiter   ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
	aud    string
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleTime  string
	autoMigrate  bool
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.With(app.BasicAuthMiddleware()).Handle("/metrics", promhttp.Handler())

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RateLimiterMiddleware)

			r.Get("/roles/templates", app.listTemplatesHandler)
			r.Get("/me/organizations", app.listMyOrganizationsHandler)

			r.Route("/organizations/{orgID}", func(r chi.Router) {
				r.Post("/bootstrap", app.bootstrapOrganizationHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.RequireOrgMember)

					r.Route("/roles", func(r chi.Router) {
						r.Get("/", app.listRolesHandler)
						r.Get("/{roleID}", app.getRoleHandler)

						r.Group(func(r chi.Router) {
							r.Use(app.RequireOrgAdmin)
							r.Post("/", app.createCustomRoleHandler)
							r.Post("/from-template", app.createRoleFromTemplateHandler)
							r.Delete("/{roleID}", app.deleteRoleHandler)
						})
					})

					r.Get("/members", app.listMembersHandler)
					r.Route("/members/{userID}", func(r chi.Router) {
						r.Get("/warehouses", app.listMemberWarehousesHandler)
						r.Get("/warehouses/{warehouseID}/access", app.checkWarehouseAccessHandler)
						r.Get("/overrides", app.getOverridesHandler)
						r.Get("/permissions", app.getEffectivePermissionsHandler)
						r.Get("/permissions/{permissionKey}", app.checkPermissionHandler)

						r.Group(func(r chi.Router) {
							r.Use(app.RequireOrgAdmin)
							r.Put("/", app.assignMemberHandler)
							r.Delete("/", app.revokeMemberHandler)
							r.Post("/warehouses", app.assignWarehouseHandler)
							r.Delete("/warehouses/{warehouseID}", app.revokeWarehouseHandler)
							r.Put("/overrides", app.setOverridesHandler)
							r.Delete("/overrides", app.clearOverridesHandler)
						})
					})
				})
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env, "storage", app.store.Driver())

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
