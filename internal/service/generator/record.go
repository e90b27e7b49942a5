package generator

// Length and rule limits applied by the sanitizer, validator and auto-fixer.
const (
	TitleMaxLen           = 60
	MetaDescriptionMaxLen = 155
	ExcerptMaxLen         = 150

	// Keyword density: occurrences allowed in plain-text content.
	MaxDensityFreshKeyword = 8
	MaxDensityUsedKeyword  = 1

	// Occurrences preserved when the auto-fixer thins an over-dense keyword.
	KeepFirstFreshKeyword = 3
	KeepFirstUsedKeyword  = 1

	MinInternalLinks = 2

	AvgSentenceWordsMax  = 20.0
	LongSentenceWords    = 25
	LongSentenceMaxShare = 0.15
	TransitionMinShare   = 0.30
)

// ContentRecord is the canonical representation of one generated article,
// produced by the parser and mutated in place by the sanitizer and auto-fixer.
type ContentRecord struct {
	Title             string        `json:"title"`
	MetaDescription   string        `json:"meta_description"`
	Slug              string        `json:"slug"`
	Content           string        `json:"content"`
	Excerpt           string        `json:"excerpt"`
	FocusKeyword      string        `json:"focus_keyword"`
	SecondaryKeywords []string      `json:"secondary_keywords"`
	Tags              []string      `json:"tags"`
	ImagePrompts      []ImagePrompt `json:"image_prompts"`
	InternalLinks     []Link        `json:"internal_links"`
	OutboundLinks     []Link        `json:"outbound_links"`
	Provider          string        `json:"provider"`
}

// ImagePrompt describes one image the publishing layer should generate or
// source, together with its alt text.
type ImagePrompt struct {
	Prompt string `json:"prompt"`
	Alt    string `json:"alt"`
}

// Link is an internal or outbound hyperlink with its anchor text.
type Link struct {
	URL    string `json:"url"`
	Anchor string `json:"anchor"`
}

// ValidationReport is attached to a ContentRecord after a generation run and
// persisted alongside the published draft for audit. It is immutable once
// attached.
type ValidationReport struct {
	Provider       string   `json:"provider"`
	InitialErrors  []string `json:"initial_errors"`
	AutoFixApplied bool     `json:"auto_fix_applied"`
	Retry          bool     `json:"retry"`
	RetryErrors    []string `json:"retry_errors,omitempty"`
}

// Word-count buckets accepted in a GenerationRequest.
const (
	WordCountShort    = "short"
	WordCountMedium   = "medium"
	WordCountLong     = "long"
	WordCountDetailed = "detailed"
)

// GenerationRequest is the ephemeral input for one generation run. It is
// consumed once by the orchestrator and owns no persistent state.
type GenerationRequest struct {
	Topic     string   `json:"topic"`
	Keywords  []string `json:"keywords"`
	WordCount string   `json:"word_count"` // short|medium|long|detailed
	Providers []string `json:"providers"`  // ordered preference; empty means all configured

	// Progress, when set, receives pipeline stage transitions. Used by the
	// websocket layer; the orchestrator never blocks on it.
	Progress func(stage, provider string) `json:"-"`
}

// TargetWords maps the request's word-count bucket to a word target.
func (r *GenerationRequest) TargetWords() int {
	switch r.WordCount {
	case WordCountShort:
		return 500
	case WordCountLong:
		return 1500
	case WordCountDetailed:
		return 2000
	default:
		return 1000
	}
}

// FocusKeyword returns the primary keyword of the request, which seeds the
// record's focus keyword when the model omits one.
func (r *GenerationRequest) FocusKeyword() string {
	if len(r.Keywords) == 0 {
		return ""
	}
	return r.Keywords[0]
}
