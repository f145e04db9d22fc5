package logger

import (
	"context"
	"log/slog"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/klipach/fbtoken/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	entries []logging.Entry
}

func (r *recorder) Log(e logging.Entry) {
	r.entries = append(r.entries, e)
}

func TestCloudHandler(t *testing.T) {
	rec := &recorder{}
	logger := slog.New(NewCloudHandler(rec, slog.LevelInfo)).With(
		slog.String("subject", "device-1"),
		log.Trace("projects/proj/traces/abc"),
	)
	ctx := context.Background()

	logger.DebugContext(ctx, "dropped")
	logger.InfoContext(ctx, "custom token minted")
	logger.ErrorContext(ctx, "sign-in rejected", slog.Int("status", 400))

	require.Len(t, rec.entries, 2)

	assert.Equal(t, logging.Info, rec.entries[0].Severity)
	assert.Equal(t, "projects/proj/traces/abc", rec.entries[0].Trace)

	assert.Equal(t, logging.Error, rec.entries[1].Severity)
	payload, ok := rec.entries[1].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sign-in rejected", payload["message"])
	assert.Equal(t, "device-1", payload["subject"])
	assert.EqualValues(t, 400, payload["status"])
}

func TestProjectID(t *testing.T) {
	id, err := ProjectID(context.Background(), "proj")
	require.NoError(t, err)
	assert.Equal(t, "proj", id)
}
