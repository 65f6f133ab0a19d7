package notify

import (
	"context"
	"time"
)

// SubmissionEvent is published for every accepted feedback submission so
// downstream consumers (branch dashboards, mail digests) can react without
// polling the listing endpoint.
type SubmissionEvent struct {
	FeedbackID string    `json:"feedbackId"`
	Branch     string    `json:"branch"`
	HasFile    bool      `json:"hasFile"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Publisher delivers submission events. Publishing is best-effort: callers
// log failures and never fail the submission over them.
type Publisher interface {
	Publish(ctx context.Context, event SubmissionEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, SubmissionEvent) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }
