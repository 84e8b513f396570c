// Package sink delivers validated lead submissions to an intake endpoint
// and classifies what came back. The rest of the system only sees the
// Sink interface, so which transport is active (direct call to the
// upstream API, or our authenticated relay) is a wiring decision.
package sink

import (
	"context"
	"fmt"

	"sdr-backend/internal/leads"
)

type Kind string

const (
	// Submitted carries the upstream lead id.
	Submitted Kind = "submitted"
	// ValidationRejected is a 400 whose body carries the upstream's
	// per-field details; the data was locally valid but refused anyway.
	ValidationRejected Kind = "validation_rejected"
	// RequestFailed is any other non-2xx, including transport errors and
	// timeouts (status 0).
	RequestFailed Kind = "request_failed"
	// EmptyResponse means no body at all; JSON parsing was never tried.
	EmptyResponse Kind = "empty_response"
	// MalformedResponse means the body was present but not JSON; Raw
	// keeps the text for diagnostics.
	MalformedResponse Kind = "malformed_response"
	// InvalidResponseShape is a 2xx missing the success/leadId markers.
	// The transport worked; the contract did not.
	InvalidResponseShape Kind = "invalid_response_shape"
)

type Outcome struct {
	Kind    Kind
	LeadID  string
	Status  int
	Message string
	Raw     string
}

func (o Outcome) OK() bool {
	return o.Kind == Submitted
}

func (o Outcome) String() string {
	switch o.Kind {
	case Submitted:
		return fmt.Sprintf("submitted (lead %s)", o.LeadID)
	case RequestFailed:
		return fmt.Sprintf("request failed (status %d): %s", o.Status, o.Message)
	default:
		if o.Message != "" {
			return string(o.Kind) + ": " + o.Message
		}
		return string(o.Kind)
	}
}

// Sink delivers one submission and resolves to exactly one outcome. No
// retry happens inside; a caller that wants to retry calls Deliver again
// and is responsible for not overlapping its own submissions.
type Sink interface {
	Deliver(ctx context.Context, sub leads.LeadSubmission) Outcome
}
