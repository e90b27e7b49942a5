package generator

import (
	"context"
	"time"
)

// ProviderClient is the slice of an LLM client the generation pipeline
// needs. Satisfied by the clients in internal/service/llm/providers.
type ProviderClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	Name() string
}

// RelatedPost is an existing article usable as an internal link target.
type RelatedPost struct {
	Title string
	URL   string
}

// SiteSearch finds published articles related to a topic so generated
// content can link to pages that actually exist.
type SiteSearch interface {
	FindRelated(ctx context.Context, topic string, limit int) ([]RelatedPost, error)
}

// Publisher persists a finished record together with its validation report.
// NeedsReview marks records that still carry validation errors after every
// provider was tried.
type Publisher interface {
	Publish(ctx context.Context, rec *ContentRecord, report ValidationReport, needsReview bool) error
}

// Attempt describes one provider call for audit logging.
type Attempt struct {
	GenerationID string
	Provider     string
	Retry        bool
	Violations   []string
	Duration     time.Duration
	Err          error
}

// AttemptLogger records every provider attempt, successful or not.
type AttemptLogger interface {
	LogAttempt(ctx context.Context, attempt Attempt) error
}
