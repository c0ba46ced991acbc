package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/inamate/rim/internal/auth"
	"github.com/inamate/rim/internal/config"
	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/library"
	mw "github.com/inamate/rim/internal/middleware"
	"github.com/inamate/rim/internal/preset"
	"github.com/inamate/rim/internal/stream"
	"github.com/inamate/rim/internal/viewport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "rim",
	})
	logger.SetLevel(log.Level(cfg.Level()))
	slog.SetDefault(slog.New(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view, err := viewport.New(cfg.Viewport())
	if err != nil {
		slog.Error("create viewport", "error", err)
		os.Exit(1)
	}
	eng := engine.New(view, cfg.Engine())

	scene := preset.Default()
	if cfg.PresetPath != "" {
		scene, err = preset.Load(cfg.PresetPath)
		if err != nil {
			slog.Error("load preset", "path", cfg.PresetPath, "error", err)
			os.Exit(1)
		}
	}
	scene.Apply(eng)

	hub := stream.NewHub(eng, cfg.FPS)
	go hub.Run(ctx)

	if cfg.PresetPath != "" && cfg.WatchPreset {
		go func() {
			err := preset.Watch(ctx, cfg.PresetPath, func(sc *preset.Scene) {
				if err := hub.LoadScene(ctx, sc); err != nil {
					slog.Warn("reload preset", "error", err)
				}
			})
			if err != nil && ctx.Err() == nil {
				slog.Error("watch preset", "path", cfg.PresetPath, "error", err)
			}
		}()
	}

	// Without a secret the stream and API are open to anyone allowed by CORS.
	var authService *auth.Service
	if cfg.JWTSecret != "" {
		authService, err = auth.NewService(cfg.JWTSecret)
		if err != nil {
			slog.Error("create auth service", "error", err)
			os.Exit(1)
		}
	}
	streamHandler := stream.NewHandler(hub, cfg.Origins())
	libraryHandler := library.NewHandler(cfg.PresetDir, hub)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stored presets are public to read; uploads and applies go through /api
	r.HandleFunc("/presets", libraryHandler.List).Methods("GET")
	r.PathPrefix("/presets/").Handler(libraryHandler.Serve()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if authService != nil {
		api.Use(authService.AuthMiddleware)
	}
	api.HandleFunc("/state", streamHandler.ServeState).Methods("GET")
	api.HandleFunc("/commands", streamHandler.ServeCommands).Methods("POST", "OPTIONS")
	api.HandleFunc("/presets", libraryHandler.Upload).Methods("POST", "OPTIONS")
	api.HandleFunc("/presets/{id}/apply", libraryHandler.Apply).Methods("POST")
	api.HandleFunc("/presets/{id}", libraryHandler.Remove).Methods("DELETE")

	// WebSocket endpoint; browsers pass the token as a query parameter
	var ws http.Handler = http.HandlerFunc(streamHandler.ServeWS)
	if authService != nil {
		ws = authService.AuthMiddleware(ws)
	}
	r.Handle("/ws", ws)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so open streams close
		hub.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "session", hub.SessionID(), "preset", scene.Name)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
