package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/waitlist/internal/pkg/config"
	"github.com/shandysiswandi/waitlist/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// bodyLogLimit bounds how much of a request or response body ends up in the
// access log. Waitlist payloads are a few hundred bytes.
const bodyLogLimit = 16 << 10

// responseCapture records what the handler wrote so it can be logged and
// attached to the request span once the handler returns.
type responseCapture struct {
	http.ResponseWriter
	status    int
	written   int
	body      bytes.Buffer
	truncated bool
	err       error
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}

	if room := bodyLogLimit - c.body.Len(); room < len(p) {
		c.body.Write(p[:max(room, 0)])
		c.truncated = true
	} else {
		c.body.Write(p)
	}

	n, err := c.ResponseWriter.Write(p)
	c.written += n
	return n, err
}

// SetError lets the router hand the handler error to the span without
// exposing it in the response.
func (c *responseCapture) SetError(err error) {
	c.err = err
}

func (c *responseCapture) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

// peekBody reads up to bodyLogLimit bytes of the request body and puts them
// back so the handler still sees the full stream.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	//nolint:errcheck // logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, bodyLogLimit))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	return head
}

// loggableBody turns a captured body into a log value with sensitive keys
// masked. Anything that is not JSON is logged by size only.
func loggableBody(raw []byte, truncated bool, maskKeys map[string]struct{}) any {
	if len(raw) == 0 {
		return nil
	}

	var decoded any
	if !truncated && json.Unmarshal(raw, &decoded) == nil {
		return instrument.MaskData(decoded, maskKeys)
	}

	return map[string]any{"size": len(raw), "truncated": truncated}
}

func loggableHeaders(h http.Header, maskKeys map[string]struct{}) map[string]string {
	out := make(map[string]string, len(h))
	for key := range h {
		if _, found := maskKeys[strings.ToLower(key)]; found {
			out[key] = "***"
			continue
		}
		out[key] = h.Get(key)
	}
	return out
}

func routeOf(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	var maskKeys map[string]struct{}
	if cfg != nil {
		maskKeys = instrument.MaskKeys(cfg.GetArray("instrument.log_mask_fields"))
	}

	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	latency, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routeOf(r)

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.NetworkProtocolVersionKey.String(r.Proto),
					semconv.ServerAddressKey.String(r.Host),
					attribute.String("user_agent.original", r.UserAgent()),
				),
			)
			defer span.End()

			reqBody := peekBody(r)
			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"headers", loggableHeaders(r.Header, maskKeys),
				"body", loggableBody(reqBody, len(reqBody) >= bodyLogLimit, maskKeys),
			)

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r.WithContext(ctx))

			status := capture.statusCode()
			elapsed := time.Since(start)
			attrs := metric.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			)

			span.SetAttributes(
				semconv.HTTPResponseStatusCodeKey.Int(status),
				attribute.Int("http.response_content_length", capture.written),
			)
			switch {
			case capture.err != nil && status >= http.StatusInternalServerError:
				span.RecordError(capture.err)
				span.SetStatus(codes.Error, capture.err.Error())
			case status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(status))
			default:
				span.SetStatus(codes.Ok, "")
			}

			if requests != nil {
				requests.Add(ctx, 1, attrs)
			}
			if latency != nil {
				latency.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", capture.written,
				"latency_ms", elapsed.Milliseconds(),
				"body", loggableBody(capture.body.Bytes(), capture.truncated, maskKeys),
			)
		})
	}
}
