package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pagecraft/backend/internal/api"
	"github.com/pagecraft/backend/internal/canvas"
	"github.com/pagecraft/backend/internal/component"
	"github.com/pagecraft/backend/internal/config"
	"github.com/pagecraft/backend/internal/models"
	"github.com/pagecraft/backend/internal/project"
	"github.com/pagecraft/backend/internal/session"
	"github.com/pagecraft/backend/internal/storage"
	"github.com/pagecraft/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "pagecraft.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Logging)

	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("failed to create directories", "error", err)
		os.Exit(1)
	}

	// Select the durable storage backend.
	var backend storage.Backend
	switch cfg.Storage.Backend {
	case "sqlite":
		backend, err = storage.NewSQLiteBackend(cfg.Storage.SQLitePath)
	default:
		backend, err = storage.NewFileBackend(cfg.Storage.DataDirectory)
	}
	if err != nil {
		slog.Error("failed to initialize storage backend",
			"backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	store := storage.NewManager(backend, cfg.Storage.QuotaBytes)
	if !store.ValidateStorage() {
		slog.Error("storage substrate is not usable")
		os.Exit(1)
	}

	projectMgr := project.NewManager(store)
	recovery := project.NewRecoveryMonitor(projectMgr)

	// Check before the heartbeat loop overwrites the old marker.
	if info := recovery.CheckForCrash(); info.CrashDetected {
		slog.Warn("unsaved work from a crashed session is available",
			"projectId", info.ProjectID, "hasAutosave", info.Autosave != nil)
	}

	canvasOpts := canvas.Options{
		Dimensions: models.CanvasSize{
			Width:  cfg.Editor.CanvasWidth,
			Height: cfg.Editor.CanvasHeight,
		},
		HistorySize: cfg.Editor.MaxHistorySize,
	}
	if cfg.Editor.ValidationRules != "" {
		overrides, rerr := component.ParseRules(cfg.Editor.ValidationRules)
		if rerr != nil {
			slog.Warn("failed to load validation rule overrides",
				"path", cfg.Editor.ValidationRules, "error", rerr)
		} else {
			canvasOpts.Rules = component.DefaultRules().Merge(overrides)
		}
	}
	sessionMgr := session.NewManager(canvasOpts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recovery.Start(ctx)

	// Background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Editor.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessionMgr.CleanupOldSessions(time.Duration(cfg.Editor.SessionTimeoutMinutes) * time.Minute)
			}
		}
	}()

	// Autosave the most recently touched dirty session.
	autosaver := project.NewAutosaver(projectMgr, time.Duration(cfg.Editor.AutosaveSeconds)*time.Second)
	autosaver.Start(ctx, func() (string, *models.Snapshot, bool) {
		var latest *session.Session
		for _, info := range sessionMgr.List() {
			if !info.Persist.IsDirty || info.Persist.CurrentProjectID == "" {
				continue
			}
			s, ok := sessionMgr.Get(info.ID)
			if !ok {
				continue
			}
			if latest == nil || s.LastAccessedAt.After(latest.LastAccessedAt) {
				latest = s
			}
		}
		if latest == nil {
			return "", nil, false
		}
		return latest.Persist.CurrentProjectID, latest.Doc.Snapshot(""), true
	})
	defer autosaver.Stop()

	h, wsHandler := api.NewHandlers(&api.Dependencies{
		Sessions: sessionMgr,
		Projects: projectMgr,
		Store:    store,
		Recovery: recovery,
		Version:  Version,
	})

	embeddedMode := web.HasEmbeddedFiles()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Logging.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/health" || strings.HasSuffix(path, "/keepalive")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "/ws/")
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, h, wsHandler)

	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			slog.Warn("failed to register static routes", "error", err)
		} else {
			slog.Info("serving embedded frontend from binary")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	slog.Info("server starting",
		"version", Version,
		"buildTime", BuildTime,
		"addr", cfg.GetServerAddr(),
		"storage", cfg.Storage.Backend,
		"embedded", embeddedMode,
		"config", configPath)

	go func() {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	recovery.Shutdown()
}

// setupLogging installs the process-wide slog handler.
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
