package middleware

import (
	"bytes"
	"net/http"
	"time"

	reqctx "low-altitude/uavops/internal/context"
	"low-altitude/uavops/internal/logging"
)

const maxLoggedBody = 2048

type respLogger struct {
	http.ResponseWriter
	status int
	buf    *bytes.Buffer
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *respLogger) Write(b []byte) (int, error) {
	if room := maxLoggedBody - l.buf.Len(); room > 0 {
		if len(b) > room {
			l.buf.Write(b[:room])
		} else {
			l.buf.Write(b)
		}
	}
	return l.ResponseWriter.Write(b)
}

func (l *respLogger) Unwrap() http.ResponseWriter {
	return l.ResponseWriter
}

// Logging writes request and response bodies at debug level. It is mounted
// in development only and skips WebSocket upgrades.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			next.ServeHTTP(w, r)
			return
		}

		lw := &respLogger{ResponseWriter: w, status: http.StatusOK, buf: &bytes.Buffer{}}
		start := time.Now()
		next.ServeHTTP(lw, r)

		logging.Debug("HTTP exchange",
			"request_id", reqctx.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", lw.status,
			"duration", time.Since(start).String(),
			"response", lw.buf.String(),
		)
	})
}
