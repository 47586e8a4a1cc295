package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"plantidentifier/internal/config"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/route"
	"plantidentifier/internal/service"
	"plantidentifier/internal/service/camera"
	"plantidentifier/internal/service/camera/device"
	"plantidentifier/internal/service/identify"
	"plantidentifier/internal/service/websocket"
	"syscall"
	"time"

	"google.golang.org/api/option"
)

type App struct {
	config        *config.Config
	logger        *logger.Logger
	hubService    *websocket.HubService
	cameraService *camera.Service
	gemini        *identify.Gemini
	manager       *service.Manager
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLogger(cfg)

	var opts []option.ClientOption
	if cfg.GeminiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.GeminiEndpoint))
	}
	gemini, err := identify.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, opts...)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	identifier := identify.NewIdentifier(gemini, log)

	hub := websocket.NewHubService(log)
	cam := camera.NewService(device.Opener(cfg.CameraDevice), hub, cfg, log)
	mng := service.NewManager(identifier, cam, hub, log)

	return &App{
		config:        cfg,
		logger:        log,
		hubService:    hub,
		cameraService: cam,
		gemini:        gemini,
		manager:       mng,
	}, nil
}

func (a *App) Run() error {
	defer a.logger.Close()

	// Start background services
	go a.hubService.Run()

	// Setup routes
	router := route.SetupRoutes(a.manager, a.hubService, a.config, a.logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Error shutting down server: %v", err)
		}
	}()

	fmt.Printf("🚀 Plant Identifier\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🤖 Model: %s\n", a.config.GeminiModel)
	fmt.Printf("📷 Camera device: %d\n", a.config.CameraDevice)
	fmt.Printf("📁 Logs: %s\n", a.config.LogDirectory)

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		// ListenAndServe returns as soon as Shutdown starts; wait for in-flight requests.
		<-shutdownDone
	}

	a.release()
	if errors.Is(err, http.ErrServerClosed) {
		a.logger.Info("Server stopped")
		return nil
	}
	return err
}

func (a *App) release() {
	if err := a.cameraService.Stop(); err != nil {
		a.logger.Error("Error releasing camera: %v", err)
	}
	if err := a.gemini.Close(); err != nil {
		a.logger.Error("Error closing Gemini client: %v", err)
	}
}
