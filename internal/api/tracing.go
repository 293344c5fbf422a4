package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kendinapp/kendin-backend/internal/clientip"
)

// spanEnricher adds the request id, client address and x-client-info header
// (sent by supabase-js clients) to the span started by otelhttp.
func spanEnricher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if span.IsRecording() {
			attrs := []attribute.KeyValue{
				attribute.String("request.id", middleware.GetReqID(r.Context())),
				attribute.String("client.address", clientip.FromRequest(r).Primary),
			}
			if info := r.Header.Get("X-Client-Info"); info != "" {
				attrs = append(attrs, attribute.String("client.info", info))
			}
			span.SetAttributes(attrs...)
		}
		next.ServeHTTP(w, r)
	})
}
