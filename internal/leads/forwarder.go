package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxUpstreamBody = 1 << 20

// Forwarder posts a lead payload verbatim to the upstream intake service
// and hands back whatever JSON and status it answered with. It is a
// transparent pipe: no transformation, no interpretation.
type Forwarder struct {
	endpoint   string
	origin     string
	httpClient *http.Client
}

func NewForwarder(endpoint, origin string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Forwarder{
		endpoint:   endpoint,
		origin:     origin,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward returns the upstream status code and its JSON body. A transport
// failure or a non-JSON upstream body is an error; the caller collapses
// every error into the one uniform relay failure shape.
func (f *Forwarder) Forward(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("upstream create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if f.origin != "" {
		req.Header.Set("Origin", f.origin)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return 0, nil, fmt.Errorf("upstream read response: %w", err)
	}
	if !json.Valid(body) {
		return 0, nil, errors.New("upstream returned non-json body")
	}

	return resp.StatusCode, body, nil
}
