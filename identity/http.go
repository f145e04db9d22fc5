package identity

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/klipach/fbtoken/log"
)

// loggingRoundTripper logs outgoing requests without their bodies or API key.
type loggingRoundTripper struct {
	rt http.RoundTripper
}

func (lrt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := log.LoggerFromContext(req.Context()).With(
		slog.String("method", req.Method),
		slog.String("url", redactURL(req.URL.String())),
	)
	logger.Debug("identity toolkit request")

	start := time.Now()
	resp, err := lrt.rt.RoundTrip(req)
	if err != nil {
		logger.Error("identity toolkit request failed", slog.String(ErrorMsgLogField, redactURLError(err).Error()))
		return nil, err
	}
	logger.Debug("identity toolkit response",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}
