package middleware

import "net/http"

// trackedWriter records the status and body size a handler sent.
// committed turns true once the header is on the wire.
type trackedWriter struct {
	http.ResponseWriter
	status    int
	written   int64
	committed bool
}

// track wraps w once. Nested middleware share the outer tracker.
func track(w http.ResponseWriter) *trackedWriter {
	if tw, ok := w.(*trackedWriter); ok {
		return tw
	}
	return &trackedWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader forwards only the first status.
func (tw *trackedWriter) WriteHeader(code int) {
	if tw.committed {
		return
	}
	tw.status = code
	tw.committed = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackedWriter) Write(b []byte) (int, error) {
	tw.committed = true
	n, err := tw.ResponseWriter.Write(b)
	tw.written += int64(n)
	return n, err
}

func (tw *trackedWriter) Flush() {
	f, ok := tw.ResponseWriter.(http.Flusher)
	if !ok {
		return
	}
	tw.committed = true
	f.Flush()
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (tw *trackedWriter) Unwrap() http.ResponseWriter { return tw.ResponseWriter }
