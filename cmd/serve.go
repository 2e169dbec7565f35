package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harborview/insights-cli/internal/analytics"
	"github.com/harborview/insights-cli/internal/config"
	"github.com/harborview/insights-cli/internal/model"
	"github.com/harborview/insights-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dashboard reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := analytics.ValidateConfig(cfg.Analytics); err != nil {
			return err
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		engine := analytics.New(cfg.Analytics)
		router := newRouter(st, engine, cfg.Server)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the dashboard HTTP API. Factored out of the command so
// handler tests can drive it with httptest.
func newRouter(st store.Store, engine *analytics.Engine, serverCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	origins := serverCfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if serverCfg.RateLimit > 0 {
		r.Use(rateLimiter(rate.Limit(serverCfg.RateLimit), serverCfg.RateBurst))
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/workspaces", func(w http.ResponseWriter, req *http.Request) {
		ids, err := st.ListWorkspaces(req.Context())
		if err != nil {
			zap.L().Error("list workspaces failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"workspaces": ids})
	})

	r.Get("/api/workspaces/{workspaceID}/dashboards/executive", func(w http.ResponseWriter, req *http.Request) {
		serveDashboard(w, req, st, func(snap *model.Snapshot, now time.Time) any {
			return engine.Executive(snap, now)
		})
	})

	r.Get("/api/workspaces/{workspaceID}/dashboards/stakeholder", func(w http.ResponseWriter, req *http.Request) {
		serveDashboard(w, req, st, func(snap *model.Snapshot, now time.Time) any {
			return engine.Stakeholder(snap, now)
		})
	})

	return r
}

func serveDashboard(w http.ResponseWriter, req *http.Request, st store.Store, build func(*model.Snapshot, time.Time) any) {
	workspaceID := chi.URLParam(req, "workspaceID")
	if workspaceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workspace id is required"})
		return
	}

	snap, err := st.LoadSnapshot(req.Context(), workspaceID)
	if err != nil {
		zap.L().Error("load snapshot failed",
			zap.String("workspace", workspaceID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, build(snap, time.Now().UTC()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// rateLimiter applies a per-client token bucket keyed by remote IP.
func rateLimiter(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	if burst <= 0 {
		burst = 1
	}
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(limit, burst)
			limiters[ip] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ip, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				ip = req.RemoteAddr
			}
			if !limiterFor(ip).Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
