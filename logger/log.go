package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/logging"
	"github.com/klipach/fbtoken/log"
	"google.golang.org/api/option"
)

const LogName = "fbtoken"

var errNoProject = errors.New("no project id: not in the key file and not running on GCP")

// ProjectID returns projectID, or asks the metadata server when it is empty.
func ProjectID(ctx context.Context, projectID string) (string, error) {
	if projectID != "" {
		return projectID, nil
	}
	if !metadata.OnGCE() {
		return "", errNoProject
	}
	return metadata.ProjectIDWithContext(ctx)
}

// NewClient creates a Cloud Logging client for projectID (see ProjectID).
// Callers must Close it to flush buffered entries.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*logging.Client, error) {
	projectID, err := ProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project ID: %w", err)
	}
	client, err := logging.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging client: %w", err)
	}
	return client, nil
}

type entryLogger interface {
	Log(logging.Entry)
}

// CloudHandler is a slog.Handler that sends records to Cloud Logging.
type CloudHandler struct {
	lg    entryLogger
	level slog.Leveler
	attrs []slog.Attr
}

// NewCloudHandler wraps lg, usually client.Logger(LogName).
func NewCloudHandler(lg entryLogger, level slog.Leveler) *CloudHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &CloudHandler{lg: lg, level: level}
}

func (h *CloudHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *CloudHandler) Handle(_ context.Context, r slog.Record) error {
	payload := log.Entry(r, h.attrs)
	entry := logging.Entry{
		Timestamp: r.Time,
		Severity:  logging.ParseSeverity(log.Severity(r.Level)),
		Payload:   payload,
	}
	if trace, ok := payload[log.TraceKey].(string); ok {
		entry.Trace = trace
	}
	h.lg.Log(entry)
	return nil
}

func (h *CloudHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &CloudHandler{lg: h.lg, level: h.level, attrs: newAttrs}
}

func (h *CloudHandler) WithGroup(_ string) slog.Handler {
	return h
}
