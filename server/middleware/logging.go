package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/kbukum/authd/logger"
)

var healthPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status, body size, latency, client ip and request id. 5xx responses log at
// error, 4xx at warn, the rest at debug. Health paths are skipped. Query
// strings are never logged since they may carry grant codes.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if healthPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			tw := track(w)
			next.ServeHTTP(tw, r)
			latency := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, tw.status,
				"bytes", tw.written,
				logger.FieldDuration, latency.Milliseconds(),
				"client_ip", clientIP(r),
			)
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if latency > 500*time.Millisecond {
				fields["slow"] = true
			}
			logByStatus(log, fields, tw.status)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// logByStatus logs request fields at the level matching the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
