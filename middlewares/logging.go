package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/utils"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// RequestLogger tags each request with an id, logs its outcome and turns
// handler panics into 500 responses.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w}

		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					// net/http aborts the connection quietly for this one
					panic(p)
				}
				slog.ErrorContext(r.Context(), "panic while serving request",
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"panic", p,
				)
				if rec.status == 0 {
					utils.RespondError(rec, http.StatusInternalServerError, "An error occurred while processing your request.")
				}
			}

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			slog.InfoContext(r.Context(), "request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.bytes,
				"duration", time.Since(start),
				"remote", getIP(r),
			)
		}()

		next.ServeHTTP(rec, r)
	})
}
