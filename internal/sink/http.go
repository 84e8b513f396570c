package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"sdr-backend/internal/leads"
)

const maxResponseBody = 1 << 20

// validationErrorMarker is the error value the upstream uses to flag a
// field-level rejection in a 400 body.
const validationErrorMarker = "Validation error"

type authFunc func(*http.Request)

// HTTPSink posts a submission as JSON and classifies the response. The
// auth strategy is the only difference between deployments, so it is a
// constructor argument rather than a separate implementation.
type HTTPSink struct {
	endpoint   string
	auth       authFunc
	httpClient *http.Client
}

// NewDirect talks straight to the upstream intake API with a bearer
// credential, the way the public form does.
func NewDirect(endpoint, token string, timeout time.Duration) *HTTPSink {
	return newHTTPSink(endpoint, timeout, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
}

// NewRelay goes through our own relay endpoint, authorizing with the
// shared X-API-Key the access guard checks.
func NewRelay(endpoint, apiKey string, timeout time.Duration) *HTTPSink {
	return newHTTPSink(endpoint, timeout, func(r *http.Request) {
		r.Header.Set("X-API-Key", apiKey)
	})
}

func newHTTPSink(endpoint string, timeout time.Duration, auth authFunc) *HTTPSink {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSink{
		endpoint:   endpoint,
		auth:       auth,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSink) Deliver(ctx context.Context, sub leads.LeadSubmission) Outcome {
	raw, err := json.Marshal(sub)
	if err != nil {
		return Outcome{Kind: RequestFailed, Message: "encode payload: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return Outcome{Kind: RequestFailed, Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Outcome{Kind: RequestFailed, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Outcome{Kind: RequestFailed, Status: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	return Classify(resp.StatusCode, string(body))
}

type responseEnvelope struct {
	Success bool   `json:"success"`
	LeadID  string `json:"leadId"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details []struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	} `json:"details"`
}

// Classify turns a raw response into an outcome. The body is treated as
// text first: an absent body is its own failure kind and is never fed to
// the JSON parser.
func Classify(status int, body string) Outcome {
	if strings.TrimSpace(body) == "" {
		return Outcome{Kind: EmptyResponse, Status: status}
	}

	var env responseEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return Outcome{Kind: MalformedResponse, Status: status, Raw: body}
	}

	if status < 200 || status >= 300 {
		if status == http.StatusBadRequest && env.Error == validationErrorMarker && len(env.Details) > 0 {
			parts := make([]string, 0, len(env.Details))
			for _, d := range env.Details {
				parts = append(parts, d.Path+": "+d.Message)
			}
			return Outcome{Kind: ValidationRejected, Status: status, Message: strings.Join(parts, ", ")}
		}

		message := env.Message
		if message == "" {
			message = env.Error
		}
		if message == "" {
			message = "Failed to submit lead"
		}
		return Outcome{Kind: RequestFailed, Status: status, Message: message}
	}

	if !env.Success || env.LeadID == "" {
		return Outcome{Kind: InvalidResponseShape, Status: status, Raw: body}
	}

	return Outcome{Kind: Submitted, Status: status, LeadID: env.LeadID}
}
