package log

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type ctxKey struct{}

// CloudLoggingHandler is a slog.Handler that writes records in Google Cloud structured format.
type CloudLoggingHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	attrs []slog.Attr
}

// NewCloudLoggingHandler creates a handler writing one JSON entry per line to w.
// Records below level are dropped; a nil level means slog.LevelInfo.
func NewCloudLoggingHandler(w io.Writer, level slog.Leveler) *CloudLoggingHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &CloudLoggingHandler{w: w, mu: &sync.Mutex{}, level: level}
}

// Handle processes log records.
func (h *CloudLoggingHandler) Handle(_ context.Context, r slog.Record) error {
	entry := Entry(r, h.attrs)

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonData = append(jsonData, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(jsonData)
	return err
}

// Entry builds the structured payload for r, handler attributes first.
func Entry(r slog.Record, attrs []slog.Attr) map[string]any {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	entry := map[string]any{
		"severity": Severity(r.Level),
		"time":     ts.Format(time.RFC3339),
		"message":  r.Message,
	}

	for _, attr := range attrs {
		entry[attr.Key] = attr.Value.Resolve().Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Resolve().Any()
		return true
	})
	return entry
}

// Severity maps a slog level to a Cloud Logging severity name.
func Severity(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func (h *CloudLoggingHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// WithAttrs returns a new handler with additional attributes.
func (h *CloudLoggingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &CloudLoggingHandler{w: h.w, mu: h.mu, level: h.level, attrs: newAttrs}
}

// WithGroup returns the same handler, as grouping is not implemented.
func (h *CloudLoggingHandler) WithGroup(_ string) slog.Handler {
	return h
}

// TraceKey is the field Cloud Logging uses to correlate an entry with a trace.
const TraceKey = "logging.googleapis.com/trace"

// Trace returns the attribute linking entries to trace, a resource name like
// projects/<project>/traces/<trace-id>.
func Trace(trace string) slog.Attr {
	return slog.String(TraceKey, trace)
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(NewCloudLoggingHandler(os.Stderr, nil))
}
