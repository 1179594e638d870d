package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"visionlab/internal/config"
	"visionlab/internal/game"
	"visionlab/internal/handlers"
)

const (
	pruneEvery     = 10 * time.Minute
	roundRetention = time.Hour
	sessionIdle    = 24 * time.Hour
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "visionlab"})

	constants, err := config.ConstantsFromEnv()
	if err != nil {
		logger.Fatal("load optical constants", "err", err)
	}
	duration := config.GameDuration()
	store := game.NewStore(constants, duration, time.Now().UnixNano())
	sessions := handlers.NewSessionStore()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(timeoutExceptStreams(15 * time.Second))

	handlers.NewHomeHandler().RegisterRoutes(r)
	handlers.NewSimulatorHandler(sessions, constants, logger).RegisterRoutes(r)
	handlers.NewGameHandler(store, logger).RegisterRoutes(r)

	addr := config.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// No WriteTimeout: the game timer stream stays open for a whole round.
		IdleTimeout: 60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go prune(ctx, store, sessions, duration, logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("listening", "url", "http://localhost"+addr, "round", duration)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

// timeoutExceptStreams applies middleware.Timeout to everything but
// server-sent event streams.
func timeoutExceptStreams(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timed := middleware.Timeout(d)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") == "text/event-stream" {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}

func prune(ctx context.Context, store *game.Store, sessions *handlers.SessionStore, duration time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(pruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rounds := store.Prune(now.Add(-duration - roundRetention))
			idle := sessions.Prune(now.Add(-sessionIdle))
			if rounds > 0 || idle > 0 {
				logger.Info("pruned", "rounds", rounds, "sessions", idle, "live_rounds", store.Len(), "live_sessions", sessions.Len())
			}
		}
	}
}
