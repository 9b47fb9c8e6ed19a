package apiclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tracingTransport stamps every outgoing request with an X-Request-ID and
// logs it at debug level.
type tracingTransport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	id := req.Header.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	fields := []zap.Field{
		zap.String("request_id", id),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		t.log.Debug("api request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.log.Debug("api request", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}
