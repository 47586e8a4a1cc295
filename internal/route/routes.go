package route

import (
	"net/http"
	"os"
	"path/filepath"
	"plantidentifier/internal/config"
	"plantidentifier/internal/handler"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/middleware"
	"plantidentifier/internal/service"
	"plantidentifier/internal/service/websocket"
)

// dynamicHTMLHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(path)+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers the page, static files, API and log endpoints,
// and wraps the mux with the request logging middleware.
func SetupRoutes(manager *service.Manager, hub *websocket.HubService, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))

	// API endpoints
	mux.HandleFunc("/api/state", handler.StateHandler(manager, logger))
	mux.HandleFunc("/api/preview", handler.PreviewHandler(manager))
	mux.HandleFunc("/api/upload", handler.UploadHandler(manager, cfg, logger))
	mux.HandleFunc("/api/identify", handler.IdentifyHandler(manager, logger))
	mux.HandleFunc("/api/camera/start", handler.StartCameraHandler(manager, logger))
	mux.HandleFunc("/api/camera/capture", handler.CaptureCameraHandler(manager, logger))
	mux.HandleFunc("/api/camera/stop", handler.StopCameraHandler(manager, logger))
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hub, manager, logger))

	// Log endpoints
	mux.HandleFunc("/logs/info", handler.ShowLogsHandler(logger, "info.log"))
	mux.HandleFunc("/logs/warning", handler.ShowLogsHandler(logger, "warning.log"))
	mux.HandleFunc("/logs/error", handler.ShowLogsHandler(logger, "error.log"))

	mux.HandleFunc("/logs/info/clear", handler.ClearLogsHandler(logger, "info.log"))
	mux.HandleFunc("/logs/warning/clear", handler.ClearLogsHandler(logger, "warning.log"))
	mux.HandleFunc("/logs/error/clear", handler.ClearLogsHandler(logger, "error.log"))

	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDirectory))

	return middleware.LoggingMiddleware(logger, mux)
}
