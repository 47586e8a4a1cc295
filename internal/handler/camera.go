package handler

import (
	"errors"
	"net/http"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/service"
	"plantidentifier/internal/service/camera"
)

func StartCameraHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		state, err := manager.StartCamera()
		if err != nil {
			writeState(w, logger, http.StatusServiceUnavailable, state)
			return
		}
		writeState(w, logger, http.StatusOK, state)
	}
}

// CaptureCameraHandler makes the latest camera frame the held image.
func CaptureCameraHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		state, err := manager.CaptureFromCamera()
		if err != nil {
			if errors.Is(err, camera.ErrNotStarted) || errors.Is(err, camera.ErrNoFrame) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			logger.Error("Error capturing camera frame: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeState(w, logger, http.StatusOK, state)
	}
}

func StopCameraHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		state, err := manager.StopCamera()
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeState(w, logger, http.StatusOK, state)
	}
}
