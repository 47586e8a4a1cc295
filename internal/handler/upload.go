package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"plantidentifier/internal/config"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/model"
	"plantidentifier/internal/service"
	"strings"
	"time"
)

var errNotAnImage = errors.New("only image files are accepted")

// UploadHandler accepts an image from the file picker as multipart field "image"
// and makes it the held image.
func UploadHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes())

		image, err := extractImageFromRequest(r)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				http.Error(w, fmt.Sprintf("Image exceeds %d MB", cfg.MaxUploadSizeMB), http.StatusRequestEntityTooLarge)
				return
			}
			logger.Warning("Rejected upload: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeState(w, logger, http.StatusOK, manager.StartCapture(image))
	}
}

func extractImageFromRequest(r *http.Request) (model.ImagePayload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return model.ImagePayload{}, errors.New("image file not found in the request")
		}
		return model.ImagePayload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return model.ImagePayload{}, err
	}
	if len(data) == 0 {
		return model.ImagePayload{}, errors.New("image file is empty")
	}

	mediaType := detectMediaType(header.Header.Get("Content-Type"), data)
	if !strings.HasPrefix(mediaType, "image/") {
		return model.ImagePayload{}, fmt.Errorf("%w, got %s", errNotAnImage, mediaType)
	}

	return model.ImagePayload{
		Data:       data,
		MediaType:  mediaType,
		Source:     model.SourceUpload,
		CapturedAt: time.Now(),
	}, nil
}

// detectMediaType prefers the declared type and sniffs the bytes when none was sent.
func detectMediaType(declared string, data []byte) string {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}
	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mediaType
}
