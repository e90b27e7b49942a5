package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/chynybekuuludastan/article_generator/internal/service/llm"
	"github.com/chynybekuuludastan/article_generator/internal/service/llm/prompts"
)

// Orchestration errors.
var (
	ErrTopicRequired        = errors.New("generation request has no topic")
	ErrKeywordsRequired     = errors.New("generation request has no keywords")
	ErrNoProviderConfigured = errors.New("no LLM provider is configured")
	ErrNoProviderSucceeded  = errors.New("every configured provider failed to produce a parseable article")
)

// Pipeline stages reported through GenerationRequest.Progress.
const (
	StageSearching  = "searching"
	StagePrompting  = "prompting"
	StageGenerating = "generating"
	StageParsing    = "parsing"
	StageValidating = "validating"
	StageRetrying   = "retrying"
	StagePublishing = "publishing"
	StageDone       = "done"
)

const maxLinkCandidates = 5

// GenerationResult is the outcome of one orchestrated run. Clean reports
// whether the record passed every rule; a false value means the record is
// best-effort and was published for manual review.
type GenerationResult struct {
	Record *ContentRecord   `json:"record"`
	Report ValidationReport `json:"report"`
	Clean  bool             `json:"clean"`
}

// Service drives the full generation pipeline: prompt construction, provider
// calls in configured order, parse/sanitize/auto-fix/validate, one corrective
// retry per provider, and failover to the next provider.
type Service struct {
	providers []ProviderClient
	search    SiteSearch
	history   KeywordHistory
	publisher Publisher
	attempts  AttemptLogger
	prompts   *prompts.Generator
	rules     Rules
	limiter   *rate.Limiter
	logger    llm.Logger
	maxTokens int
}

// ServiceOptions configures a generation Service. Providers is the only
// required field; everything else has a working zero-value fallback.
type ServiceOptions struct {
	Providers []ProviderClient
	Search    SiteSearch
	History   KeywordHistory
	Publisher Publisher
	Attempts  AttemptLogger
	Rules     *Rules
	RateLimit rate.Limit
	Burst     int
	Logger    llm.Logger
	MaxTokens int
}

// NewService creates a generation service from the given options.
func NewService(opts ServiceOptions) *Service {
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	if opts.Logger == nil {
		opts.Logger = &llm.DefaultLogger{}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(1)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	return &Service{
		providers: opts.Providers,
		search:    opts.Search,
		history:   opts.History,
		publisher: opts.Publisher,
		attempts:  opts.Attempts,
		prompts:   prompts.NewGenerator(),
		rules:     rules,
		limiter:   rate.NewLimiter(opts.RateLimit, opts.Burst),
		logger:    opts.Logger,
		maxTokens: opts.MaxTokens,
	}
}

// ProviderNames lists the configured providers in failover order.
func (s *Service) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Generate runs the whole pipeline for one request. Providers are tried in
// order; each gets at most one corrective retry. The first clean record wins.
// When no provider produces a clean record, the best record seen so far (the
// one with the fewest remaining violations) is published for review; an error
// is returned only when not a single attempt yielded a parseable record.
func (s *Service) Generate(ctx context.Context, id string, req *GenerationRequest) (*GenerationResult, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrTopicRequired
	}
	if req.FocusKeyword() == "" {
		return nil, ErrKeywordsRequired
	}

	order := s.orderProviders(req.Providers)
	if len(order) == 0 {
		return nil, ErrNoProviderConfigured
	}

	usedBefore := false
	if s.history != nil {
		usedBefore = s.history.WasUsedBefore(req.FocusKeyword())
	}

	s.progress(req, StageSearching, "")
	links := s.linkCandidates(ctx, req.Topic)

	s.progress(req, StagePrompting, "")
	basePrompt := s.prompts.ArticlePrompt(prompts.ArticleSpec{
		Topic:      req.Topic,
		Keywords:   req.Keywords,
		WordTarget: req.TargetWords(),
		Links:      links,
	})

	var best *GenerationResult

	for _, provider := range order {
		result, err := s.tryProvider(ctx, id, provider, req, basePrompt, usedBefore)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Error("provider attempt failed", "provider", provider.Name(), "error", err)
			continue
		}
		if result.Clean {
			return s.finish(ctx, req, result)
		}
		if best == nil || len(result.Report.currentErrors()) < len(best.Report.currentErrors()) {
			best = result
		}
	}

	if best == nil {
		return nil, ErrNoProviderSucceeded
	}
	s.logger.Info("no provider produced a clean record, keeping best effort",
		"provider", best.Report.Provider, "violations", len(best.Report.currentErrors()))
	return s.finish(ctx, req, best)
}

// retryFailedMarker is recorded as the sole retry error when the corrective
// call itself fails, so the audit trail distinguishes "retry produced a worse
// record" from "retry produced nothing at all".
const retryFailedMarker = "retry_failed"

// currentErrors returns the violations standing against the attached record.
// After a failed retry the first attempt's record is kept, so the marker entry
// does not describe it and the initial violations still apply.
func (r *ValidationReport) currentErrors() []string {
	if r.Retry && !r.retryFailed() {
		return r.RetryErrors
	}
	return r.InitialErrors
}

func (r *ValidationReport) retryFailed() bool {
	return len(r.RetryErrors) == 1 && r.RetryErrors[0] == retryFailedMarker
}

// tryProvider runs up to two attempts (initial plus one corrective retry)
// against one provider and reports the best record it produced.
func (s *Service) tryProvider(ctx context.Context, id string, provider ProviderClient, req *GenerationRequest, basePrompt string, usedBefore bool) (*GenerationResult, error) {
	s.progress(req, StageGenerating, provider.Name())

	rec, violations, fixed, err := s.attempt(ctx, id, provider, req, basePrompt, false)
	if err != nil {
		return nil, err
	}

	report := ValidationReport{
		Provider:       provider.Name(),
		InitialErrors:  violations,
		AutoFixApplied: fixed,
	}
	if len(violations) == 0 {
		return &GenerationResult{Record: rec, Report: report, Clean: true}, nil
	}

	s.progress(req, StageRetrying, provider.Name())
	retryPrompt := s.prompts.CorrectivePrompt(basePrompt, violations)
	retryRec, retryViolations, retryFixed, err := s.attempt(ctx, id, provider, req, retryPrompt, true)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The first record survives a failed retry; the marker entry records
		// that the corrective attempt produced nothing usable.
		s.logger.Error("corrective retry failed", "provider", provider.Name(), "error", err)
		report.Retry = true
		report.RetryErrors = []string{retryFailedMarker}
		return &GenerationResult{Record: rec, Report: report}, nil
	}

	report.Retry = true
	report.AutoFixApplied = fixed || retryFixed
	report.RetryErrors = retryViolations
	result := &GenerationResult{Record: retryRec, Report: report}
	if len(retryViolations) == 0 {
		result.Clean = true
	}
	return result, nil
}

// attempt performs one provider call followed by the full local pipeline.
func (s *Service) attempt(ctx context.Context, id string, provider ProviderClient, req *GenerationRequest, prompt string, retry bool) (*ContentRecord, []string, bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, false, err
	}

	start := time.Now()
	raw, err := provider.Complete(ctx, prompt, s.maxTokens)
	if err != nil {
		s.logAttempt(ctx, Attempt{
			GenerationID: id,
			Provider:     provider.Name(),
			Retry:        retry,
			Duration:     time.Since(start),
			Err:          err,
		})
		return nil, nil, false, err
	}

	s.progress(req, StageParsing, provider.Name())
	rec, err := Parse(raw)
	if err != nil {
		err = fmt.Errorf("parsing %s response: %w", provider.Name(), err)
		s.logAttempt(ctx, Attempt{
			GenerationID: id,
			Provider:     provider.Name(),
			Retry:        retry,
			Duration:     time.Since(start),
			Err:          err,
		})
		return nil, nil, false, err
	}
	rec.Provider = provider.Name()
	s.seedFromRequest(rec, req)
	Sanitize(rec)

	usedBefore := false
	if s.history != nil && rec.FocusKeyword != "" {
		usedBefore = s.history.WasUsedBefore(rec.FocusKeyword)
	}

	s.progress(req, StageValidating, provider.Name())
	fixed := AutoFix(rec, usedBefore, s.rules)
	violations := validateRecord(rec, usedBefore, s.rules)

	s.logAttempt(ctx, Attempt{
		GenerationID: id,
		Provider:     provider.Name(),
		Retry:        retry,
		Violations:   violations,
		Duration:     time.Since(start),
	})
	return rec, violations, fixed, nil
}

// finish publishes the result and emits the final progress events.
func (s *Service) finish(ctx context.Context, req *GenerationRequest, result *GenerationResult) (*GenerationResult, error) {
	if s.publisher != nil {
		s.progress(req, StagePublishing, result.Report.Provider)
		if err := s.publisher.Publish(ctx, result.Record, result.Report, !result.Clean); err != nil {
			return nil, fmt.Errorf("publishing record: %w", err)
		}
	}
	s.progress(req, StageDone, result.Report.Provider)
	return result, nil
}

// seedFromRequest fills record fields the model omitted from the request.
func (s *Service) seedFromRequest(rec *ContentRecord, req *GenerationRequest) {
	if rec.FocusKeyword == "" {
		rec.FocusKeyword = req.FocusKeyword()
	}
	if len(rec.SecondaryKeywords) == 0 && len(req.Keywords) > 1 {
		rec.SecondaryKeywords = append(rec.SecondaryKeywords, req.Keywords[1:]...)
	}
}

// orderProviders resolves the request's provider preference against the
// configured clients. Unknown names are skipped; an empty preference means
// every configured provider in registration order.
func (s *Service) orderProviders(preferred []string) []ProviderClient {
	if len(preferred) == 0 {
		return s.providers
	}
	out := make([]ProviderClient, 0, len(preferred))
	for _, name := range preferred {
		for _, p := range s.providers {
			if strings.EqualFold(p.Name(), name) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func (s *Service) linkCandidates(ctx context.Context, topic string) []prompts.LinkCandidate {
	if s.search == nil {
		return nil
	}
	related, err := s.search.FindRelated(ctx, topic, maxLinkCandidates)
	if err != nil {
		s.logger.Error("site search failed, generating without link candidates", "error", err)
		return nil
	}
	out := make([]prompts.LinkCandidate, 0, len(related))
	for _, r := range related {
		out = append(out, prompts.LinkCandidate{Title: r.Title, URL: r.URL})
	}
	return out
}

func (s *Service) logAttempt(ctx context.Context, attempt Attempt) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.LogAttempt(ctx, attempt); err != nil {
		s.logger.Error("recording generation attempt failed", "error", err)
	}
}

func (s *Service) progress(req *GenerationRequest, stage, provider string) {
	if req.Progress != nil {
		req.Progress(stage, provider)
	}
}

// ValidateExisting runs the rule set against an already-stored record without
// mutating it.
func (s *Service) ValidateExisting(rec *ContentRecord) []string {
	usedBefore := false
	if s.history != nil && rec.FocusKeyword != "" {
		usedBefore = s.history.WasUsedBefore(rec.FocusKeyword)
	}
	return validateRecord(rec, usedBefore, s.rules)
}

// AutoFixExisting sanitizes and auto-fixes a record in place and returns
// whether anything changed plus the violations that remain.
func (s *Service) AutoFixExisting(rec *ContentRecord) (bool, []string) {
	usedBefore := false
	if s.history != nil && rec.FocusKeyword != "" {
		usedBefore = s.history.WasUsedBefore(rec.FocusKeyword)
	}
	Sanitize(rec)
	fixed := AutoFix(rec, usedBefore, s.rules)
	return fixed, validateRecord(rec, usedBefore, s.rules)
}
