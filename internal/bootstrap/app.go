package bootstrap

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/config"
	apphttp "gitlab.com/timkado/api/staff-auth-service/internal/adapters/http"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/metrics"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/middleware"
	appredis "gitlab.com/timkado/api/staff-auth-service/internal/adapters/redis"
	"gitlab.com/timkado/api/staff-auth-service/internal/application"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
	"gitlab.com/timkado/api/staff-auth-service/pkg/safego"
)

const poolStatsInterval = 15 * time.Second

// App holds the wired application.
type App struct {
	configProvider  config.Provider
	logger          domain.Logger
	httpServeMux    *http.ServeMux
	httpServer      *http.Server
	cachePool       *appredis.Pool
	db              *sql.DB
	authService     *application.AuthService
	userService     *application.UserService
	employeeService *application.EmployeeService
	bearerAuth      BearerAuthMiddleware
}

// NewApp is the constructor for App, also for Wire.
func NewApp(
	cfgProvider config.Provider,
	appLogger domain.Logger,
	mux *http.ServeMux,
	server *http.Server,
	cachePool *appredis.Pool,
	db *sql.DB,
	authService *application.AuthService,
	userService *application.UserService,
	employeeService *application.EmployeeService,
	bearerAuth BearerAuthMiddleware,
) *App {
	return &App{
		configProvider:  cfgProvider,
		logger:          appLogger,
		httpServeMux:    mux,
		httpServer:      server,
		cachePool:       cachePool,
		db:              db,
		authService:     authService,
		userService:     userService,
		employeeService: employeeService,
		bearerAuth:      bearerAuth,
	}
}

func (a *App) registerRoutes() {
	healthHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"OK"}`)
	})
	a.httpServeMux.Handle("GET /health", middleware.RequestIDMiddleware(healthHandler))
	a.httpServeMux.Handle("GET /ready", middleware.RequestIDMiddleware(http.HandlerFunc(a.readyHandler)))
	a.httpServeMux.Handle("GET /metrics", middleware.RequestIDMiddleware(promhttp.Handler()))

	a.httpServeMux.Handle("POST /api/login", middleware.RequestIDMiddleware(apphttp.LoginHandler(a.authService, a.logger)))
	a.httpServeMux.Handle("POST /api/users", middleware.RequestIDMiddleware(apphttp.RegisterHandler(a.userService, a.logger)))
	a.httpServeMux.Handle("POST /api/logout", middleware.RequestIDMiddleware(a.bearerAuth(apphttp.LogoutHandler(a.authService, a.logger))))
	a.httpServeMux.Handle("GET /api/employees/{empNo}", middleware.RequestIDMiddleware(a.bearerAuth(apphttp.EmployeeHandler(a.employeeService, a.logger))))
}

func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	ready := true
	dependencies := make(map[string]string)

	if err := a.cachePool.Ping(ctx); err != nil {
		dependencies["cache"] = "disconnected"
		ready = false
		a.logger.Warn(r.Context(), "Readiness check failed: cache ping failed", "error", err.Error())
	} else {
		dependencies["cache"] = "connected"
	}

	if a.db == nil {
		dependencies["database"] = "not_configured"
		ready = false
	} else if err := a.db.PingContext(ctx); err != nil {
		dependencies["database"] = "disconnected"
		ready = false
		a.logger.Warn(r.Context(), "Readiness check failed: database ping failed", "error", err.Error())
	} else {
		dependencies["database"] = "connected"
	}

	response := struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}{Status: "READY", Dependencies: dependencies}

	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		response.Status = "NOT_READY"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.logger.Error(r.Context(), "Failed to encode readiness response", "error", err.Error())
	}
}

func (a *App) runPoolStatsLoop(ctx context.Context) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.ObservePoolStats(a.cachePool.Stats().Client)
		case <-ctx.Done():
			return
		}
	}
}

// Run starts the HTTP server and blocks until it is shut down by a signal or ctx.
func (a *App) Run(ctx context.Context) error {
	appCfg := a.configProvider.Get().App
	a.logger.Info(ctx, "Starting application", "service_name", appCfg.ServiceName, "version", appCfg.Version)

	a.registerRoutes()

	safego.Execute(ctx, a.logger, "CachePoolStatsLoop", func() {
		a.runPoolStatsLoop(ctx)
	})

	safego.Execute(ctx, a.logger, "SignalListenerAndGracefulShutdown", func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			a.logger.Info(context.Background(), "Shutdown signal received, initiating graceful shutdown...", "signal", sig.String())
		case <-ctx.Done():
			a.logger.Info(context.Background(), "Application context cancelled, initiating graceful shutdown...")
		}

		shutdownTimeout := 15 * time.Second
		if secs := a.configProvider.Get().App.ShutdownTimeoutSeconds; secs > 0 {
			shutdownTimeout = time.Duration(secs) * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error(context.Background(), "HTTP server graceful shutdown failed", "error", err.Error())
		}
		a.logger.Info(context.Background(), "HTTP server shut down.")
	})

	a.logger.Info(ctx, fmt.Sprintf("HTTP server listening on port %d", a.configProvider.Get().Server.HTTPPort))
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error(ctx, "HTTP server ListenAndServe error", "error", err.Error())
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	a.logger.Info(ctx, "Application shut down gracefully or server closed.")
	return nil
}
