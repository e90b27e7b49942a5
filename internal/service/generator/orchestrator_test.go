package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type reply struct {
	text string
	err  error
}

// scriptedProvider returns its replies in order, repeating the last one, and
// records every prompt it was asked to complete.
type scriptedProvider struct {
	name    string
	replies []reply
	prompts []string
}

func (p *scriptedProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	p.prompts = append(p.prompts, prompt)
	i := len(p.prompts) - 1
	if i >= len(p.replies) {
		i = len(p.replies) - 1
	}
	r := p.replies[i]
	return r.text, r.err
}

func (p *scriptedProvider) Name() string { return p.name }

type capturingPublisher struct {
	calls       int
	rec         *ContentRecord
	report      ValidationReport
	needsReview bool
	err         error
}

func (p *capturingPublisher) Publish(ctx context.Context, rec *ContentRecord, report ValidationReport, needsReview bool) error {
	p.calls++
	p.rec = rec
	p.report = report
	p.needsReview = needsReview
	return p.err
}

type capturingAttempts struct {
	attempts []Attempt
}

func (a *capturingAttempts) LogAttempt(ctx context.Context, attempt Attempt) error {
	a.attempts = append(a.attempts, attempt)
	return nil
}

type staticSearch struct {
	posts []RelatedPost
	err   error
}

func (s *staticSearch) FindRelated(ctx context.Context, topic string, limit int) ([]RelatedPost, error) {
	return s.posts, s.err
}

// cleanResponse is a provider reply that survives the whole pipeline without
// a single violation.
func cleanResponse(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(validRecord())
	require.NoError(t, err)
	return string(b)
}

// dirtyResponse yields a record with violations the auto-fixer cannot clear:
// an over-long sentence without commas and no keyword-bearing subheading.
func dirtyResponse(t *testing.T) string {
	t.Helper()
	rec := validRecord()
	rec.Content = "<p>Coffee brewing " + strings.Repeat("really ", 25) + "rewards patient people.</p>"
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	return string(b)
}

func testRequest() *GenerationRequest {
	return &GenerationRequest{
		Topic:    "Brewing better coffee at home",
		Keywords: []string{"coffee brewing", "pour over"},
	}
}

func newTestService(opts ServiceOptions) *Service {
	if opts.History == nil {
		opts.History = &fakeHistory{}
	}
	// Tests never wait on the limiter.
	opts.RateLimit = rate.Inf
	return NewService(opts)
}

func TestGenerateCleanFirstTry(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{{text: cleanResponse(t)}}}
	publisher := &capturingPublisher{}
	attempts := &capturingAttempts{}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Publisher: publisher,
		Attempts:  attempts,
	})

	result, err := svc.Generate(context.Background(), "gen-1", testRequest())
	require.NoError(t, err)
	assert.True(t, result.Clean)
	assert.Equal(t, "alpha", result.Report.Provider)
	assert.Equal(t, "alpha", result.Record.Provider)
	assert.False(t, result.Report.Retry)
	assert.Empty(t, result.Report.InitialErrors)

	assert.Len(t, provider.prompts, 1)
	assert.Equal(t, 1, publisher.calls)
	assert.False(t, publisher.needsReview)

	require.Len(t, attempts.attempts, 1)
	assert.Equal(t, "gen-1", attempts.attempts[0].GenerationID)
	assert.False(t, attempts.attempts[0].Retry)
}

func TestGenerateCorrectiveRetry(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{
		{text: dirtyResponse(t)},
		{text: cleanResponse(t)},
	}}
	publisher := &capturingPublisher{}
	attempts := &capturingAttempts{}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Publisher: publisher,
		Attempts:  attempts,
	})

	result, err := svc.Generate(context.Background(), "gen-2", testRequest())
	require.NoError(t, err)
	assert.True(t, result.Clean)
	assert.True(t, result.Report.Retry)
	assert.NotEmpty(t, result.Report.InitialErrors)
	assert.Empty(t, result.Report.RetryErrors)

	require.Len(t, provider.prompts, 2)
	assert.Contains(t, provider.prompts[1], "Your previous response violated these rules:")
	for _, v := range result.Report.InitialErrors {
		assert.Contains(t, provider.prompts[1], v)
	}

	require.Len(t, attempts.attempts, 2)
	assert.True(t, attempts.attempts[1].Retry)
	assert.False(t, publisher.needsReview)
}

func TestGenerateFailsOverToNextProvider(t *testing.T) {
	alpha := &scriptedProvider{name: "alpha", replies: []reply{{err: errors.New("quota exceeded")}}}
	beta := &scriptedProvider{name: "beta", replies: []reply{{text: cleanResponse(t)}}}
	publisher := &capturingPublisher{}
	attempts := &capturingAttempts{}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{alpha, beta},
		Publisher: publisher,
		Attempts:  attempts,
	})

	result, err := svc.Generate(context.Background(), "gen-3", testRequest())
	require.NoError(t, err)
	assert.True(t, result.Clean)
	assert.Equal(t, "beta", result.Report.Provider)

	assert.Len(t, alpha.prompts, 1)
	assert.Len(t, beta.prompts, 1)

	// The failed call is still logged for audit.
	require.Len(t, attempts.attempts, 2)
	assert.Equal(t, "alpha", attempts.attempts[0].Provider)
	assert.Error(t, attempts.attempts[0].Err)
}

func TestGenerateKeepsBestEffortOnExhaustion(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{{text: dirtyResponse(t)}}}
	publisher := &capturingPublisher{}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Publisher: publisher,
	})

	result, err := svc.Generate(context.Background(), "gen-4", testRequest())
	require.NoError(t, err)
	assert.False(t, result.Clean)
	assert.True(t, result.Report.Retry)
	assert.NotEmpty(t, result.Report.RetryErrors)
	require.NotNil(t, result.Record)

	assert.Equal(t, 1, publisher.calls)
	assert.True(t, publisher.needsReview)
}

func TestGenerateWorseRetryStillReturnsRetryRecord(t *testing.T) {
	worse := validRecord()
	worse.Title = "Coffee brewing rough draft"
	worse.Content = "<p>Coffee brewing " + strings.Repeat("really ", 25) + "rewards patient people.</p>"
	worse.MetaDescription = ""
	worse.Excerpt = ""
	b, err := json.Marshal(worse)
	require.NoError(t, err)

	provider := &scriptedProvider{name: "alpha", replies: []reply{
		{text: dirtyResponse(t)},
		{text: string(b)},
	}}
	publisher := &capturingPublisher{}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Publisher: publisher,
	})

	result, err := svc.Generate(context.Background(), "gen-10", testRequest())
	require.NoError(t, err)
	assert.False(t, result.Clean)
	assert.True(t, result.Report.Retry)
	assert.Greater(t, len(result.Report.RetryErrors), len(result.Report.InitialErrors))

	// The retry's record is the one handed back, and the retry errors
	// describe that record, not the discarded first attempt.
	assert.Equal(t, "Coffee brewing rough draft", result.Record.Title)
	assert.Equal(t, result.Report.RetryErrors, validateRecord(result.Record, false, DefaultRules()))
	assert.Contains(t, result.Report.RetryErrors, "meta_description is missing")
}

func TestGenerateRetryCallFailureKeepsFirstRecord(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{
		{text: dirtyResponse(t)},
		{err: errors.New("server error")},
	}}
	publisher := &capturingPublisher{}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Publisher: publisher,
	})

	result, err := svc.Generate(context.Background(), "gen-11", testRequest())
	require.NoError(t, err)
	assert.False(t, result.Clean)
	assert.True(t, result.Report.Retry)
	assert.Equal(t, []string{"retry_failed"}, result.Report.RetryErrors)
	assert.NotEmpty(t, result.Report.InitialErrors)

	// The first attempt's record survives and still carries its violations.
	require.NotNil(t, result.Record)
	assert.Equal(t, result.Report.InitialErrors, validateRecord(result.Record, false, DefaultRules()))

	assert.Equal(t, 1, publisher.calls)
	assert.True(t, publisher.needsReview)
	assert.Equal(t, result.Report, publisher.report)
}

func TestGenerateNoParseableRecord(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{
		{text: "I am sorry, I cannot help with that."},
	}}
	publisher := &capturingPublisher{}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Publisher: publisher,
	})

	_, err := svc.Generate(context.Background(), "gen-5", testRequest())
	assert.ErrorIs(t, err, ErrNoProviderSucceeded)
	assert.Zero(t, publisher.calls)
}

func TestGenerateRequestValidation(t *testing.T) {
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{&scriptedProvider{name: "alpha", replies: []reply{{}}}},
	})

	_, err := svc.Generate(context.Background(), "gen-6", &GenerationRequest{Keywords: []string{"coffee"}})
	assert.ErrorIs(t, err, ErrTopicRequired)

	_, err = svc.Generate(context.Background(), "gen-6", &GenerationRequest{Topic: "Coffee"})
	assert.ErrorIs(t, err, ErrKeywordsRequired)
}

func TestGenerateNoProviderConfigured(t *testing.T) {
	svc := newTestService(ServiceOptions{})
	_, err := svc.Generate(context.Background(), "gen-7", testRequest())
	assert.ErrorIs(t, err, ErrNoProviderConfigured)
}

func TestGenerateHonorsProviderPreference(t *testing.T) {
	alpha := &scriptedProvider{name: "alpha", replies: []reply{{text: cleanResponse(t)}}}
	beta := &scriptedProvider{name: "beta", replies: []reply{{text: cleanResponse(t)}}}
	svc := newTestService(ServiceOptions{Providers: []ProviderClient{alpha, beta}})

	req := testRequest()
	req.Providers = []string{"BETA"}
	result, err := svc.Generate(context.Background(), "gen-8", req)
	require.NoError(t, err)
	assert.Equal(t, "beta", result.Report.Provider)
	assert.Empty(t, alpha.prompts)
}

func TestGenerateOffersLinkCandidates(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{{text: cleanResponse(t)}}}
	search := &staticSearch{posts: []RelatedPost{
		{Title: "Grinding basics", URL: "/grinding-basics/"},
	}}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Search:    search,
	})

	_, err := svc.Generate(context.Background(), "gen-9", testRequest())
	require.NoError(t, err)
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "Grinding basics (/grinding-basics/)")
}

func TestGenerateToleratesSearchFailure(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{{text: cleanResponse(t)}}}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Search:    &staticSearch{err: errors.New("index offline")},
	})

	result, err := svc.Generate(context.Background(), "gen-10", testRequest())
	require.NoError(t, err)
	assert.True(t, result.Clean)
}

func TestGenerateReportsProgress(t *testing.T) {
	provider := &scriptedProvider{name: "alpha", replies: []reply{{text: cleanResponse(t)}}}
	svc := newTestService(ServiceOptions{
		Providers: []ProviderClient{provider},
		Publisher: &capturingPublisher{},
	})

	var stages []string
	req := testRequest()
	req.Progress = func(stage, provider string) { stages = append(stages, stage) }

	_, err := svc.Generate(context.Background(), "gen-11", req)
	require.NoError(t, err)
	for _, want := range []string{
		StageSearching, StagePrompting, StageGenerating,
		StageParsing, StageValidating, StagePublishing, StageDone,
	} {
		assert.Contains(t, stages, want)
	}
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{name: "alpha", replies: []reply{{text: cleanResponse(t)}}}
	svc := NewService(ServiceOptions{
		Providers: []ProviderClient{provider},
		History:   &fakeHistory{},
	})

	_, err := svc.Generate(ctx, "gen-12", testRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateExisting(t *testing.T) {
	svc := newTestService(ServiceOptions{})
	assert.Empty(t, svc.ValidateExisting(validRecord()))

	rec := validRecord()
	rec.Title = "No keyword up front"
	assert.NotEmpty(t, svc.ValidateExisting(rec))
}

func TestAutoFixExisting(t *testing.T) {
	svc := newTestService(ServiceOptions{})

	rec := validRecord()
	rec.Title = "Ultimate guide"
	rec.Slug = ""
	changed, violations := svc.AutoFixExisting(rec)
	assert.True(t, changed)
	assert.Empty(t, violations)
	assert.Equal(t, "coffee brewing - Ultimate guide", rec.Title)
	// The slug derives from the title as it was stored, before the prefix fix.
	assert.Equal(t, "ultimate-guide", rec.Slug)
}

func TestProviderNames(t *testing.T) {
	svc := newTestService(ServiceOptions{Providers: []ProviderClient{
		&scriptedProvider{name: "alpha"},
		&scriptedProvider{name: "beta"},
	}})
	assert.Equal(t, []string{"alpha", "beta"}, svc.ProviderNames())
}
