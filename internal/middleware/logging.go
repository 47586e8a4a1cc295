package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"plantidentifier/internal/logger"
	"strings"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// LoggingMiddleware logs every API request with its status and duration.
// Static files and the page itself are not logged.
func LoggingMiddleware(logger *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") && !strings.HasPrefix(r.URL.Path, "/logs/") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		switch {
		case recorder.status >= http.StatusInternalServerError:
			logger.Error("%s %s -> %d (%v)", r.Method, r.URL.Path, recorder.status, time.Since(start))
		case recorder.status >= http.StatusBadRequest:
			logger.Warning("%s %s -> %d (%v)", r.Method, r.URL.Path, recorder.status, time.Since(start))
		default:
			logger.Info("%s %s -> %d (%v)", r.Method, r.URL.Path, recorder.status, time.Since(start))
		}
	})
}
