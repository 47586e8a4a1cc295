package handler

import (
	"errors"
	"net/http"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/service"
)

// IdentifyHandler submits the held image and replies with the resulting state.
func IdentifyHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		state, err := manager.Submit(r.Context())
		switch {
		case err == nil:
			writeState(w, logger, http.StatusOK, state)
		case errors.Is(err, service.ErrNoImage):
			http.Error(w, "No image selected", http.StatusBadRequest)
		case errors.Is(err, service.ErrBusy), errors.Is(err, service.ErrSuperseded):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			writeState(w, logger, http.StatusBadGateway, state)
		}
	}
}

func StateHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		writeState(w, logger, http.StatusOK, manager.State())
	}
}

// PreviewHandler serves the held image for ?capture=<id>.
func PreviewHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		captureID := r.URL.Query().Get("capture")
		if captureID == "" {
			http.Error(w, "Capture parameter is required", http.StatusBadRequest)
			return
		}

		image, ok := manager.Preview(captureID)
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", image.MediaType)
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.Write(image.Data)
	}
}
