package middleware

import (
	"eduplatform/internal/logger"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger attaches a logger tagged with the request id to the request
// context and logs one line per request with its outcome.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With(map[string]interface{}{"request_id": middleware.GetReqID(r.Context())})
			r = r.WithContext(logger.NewContext(r.Context(), reqLog))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				reqLog.With(map[string]interface{}{
					"method":   r.Method,
					"path":     r.URL.Path,
					"status":   ww.Status(),
					"bytes":    ww.BytesWritten(),
					"duration": time.Since(start).String(),
				}).Info(fmt.Sprintf("%s %s", r.Method, r.URL.Path))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
