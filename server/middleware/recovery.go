package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
)

// Recovery returns middleware that recovers from panics, logs the stack and
// answers with a generic internal error. A reply whose header already went
// out is left as is.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := track(w)
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("Panic recovered", logger.Fields(
						logger.FieldError, fmt.Sprintf("%v", rec),
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
						"method", r.Method,
						logger.FieldRequestID, r.Header.Get(HeaderRequestID),
						"committed", tw.committed,
					))
					if tw.committed {
						return
					}
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(errors.Internal(nil).ToPublicResponse())
				}
			}()
			next.ServeHTTP(tw, r)
		})
	}
}
