package httpapi

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/item_service/internal/app/metrics"
	"github.com/R3E-Network/item_service/pkg/logger"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID stores id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored by the pipeline, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestPipeline assigns a fresh request id, times the request, counts
// it and emits exactly one log record once next returns or panics. It never
// touches the body or status written by next.
func withRequestPipeline(log *logger.Logger, recorder *metrics.Recorder, router *mux.Router, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		route := routeLabel(router, r)
		done := recorder.Begin()

		w.Header().Set(RequestIDHeader, requestID)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			elapsed := time.Since(start)
			done(r.Method, route, rw.statusCode, elapsed)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rw.statusCode,
				"latency_ms": math.Round(float64(elapsed.Microseconds())/10) / 100,
				"request_id": requestID,
			}).Info("request")
		}()

		next.ServeHTTP(rw, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

// withRecovery turns a panic in a route into the 500 envelope so the
// pipeline still logs and counts the request. Once the response has started
// the panic is only logged.
func (h *handler) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if rw, ok := w.(*responseWriter); ok && rw.written {
				h.log.WithField("request_id", RequestIDFromContext(r.Context())).
					WithField("method", r.Method).
					WithField("path", r.URL.Path).
					WithField("panic", fmt.Sprint(rec)).
					Error("panic after response started")
				return
			}
			h.writeError(w, r, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// routeLabel returns the path template of the matching route, or the
// unmatched label for 404 and 405 responses.
func routeLabel(router *mux.Router, r *http.Request) string {
	var match mux.RouteMatch
	if router.Match(r, &match) && match.MatchErr == nil && match.Route != nil {
		if tmpl, err := match.Route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return metrics.UnmatchedRoute
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
