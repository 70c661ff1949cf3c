// Package redflag screens sampled responses for signs of confusion before they
// are counted as votes. A flagged response should be discarded and resampled.
package redflag

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Format is the shape a response is required to have.
type Format string

// The supported formats. FormatNone disables the format check.
const (
	FormatNone       Format = ""
	FormatJSON       Format = "json"
	FormatCode       Format = "code"
	FormatSingleLine Format = "single_line"
)

// ParseFormat parses a format name. The empty string and "none" mean FormatNone.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatNone, FormatJSON, FormatCode, FormatSingleLine:
		return f, nil
	case "none":
		return FormatNone, nil
	default:
		return FormatNone, fmt.Errorf("unknown format '%s'", s)
	}
}

// Default values used for zero fields of Config.
const (
	DefaultCharsPerToken       = 4.0
	DefaultRepetitionThreshold = 0.3
)

// Config selects the checks a Screener runs.
// The zero value runs the hedging, off-topic and repetition checks in lenient mode.
type Config struct {
	// MinTokens and MaxTokens bound the estimated token count. Zero disables a bound.
	MinTokens int
	MaxTokens int
	// CharsPerToken is used to estimate the token count from the length.
	CharsPerToken float64
	Format        Format
	// RequiredFields are top-level keys that a JSON object must contain.
	RequiredFields []string

	SkipHedging    bool
	SkipOffTopic   bool
	SkipRepetition bool
	// RepetitionThreshold is the share of repeated word trigrams that is tolerated.
	RepetitionThreshold float64

	// Strict discards responses with any flag. Otherwise a response is discarded
	// only for a critical flag or for two or more flags.
	Strict bool
}

// Screener checks responses against a Config.
type Screener struct {
	cfg Config
}

// New returns a Screener for the given config.
func New(cfg Config) (*Screener, error) {
	if cfg.MinTokens < 0 || cfg.MaxTokens < 0 {
		return nil, fmt.Errorf("token bounds must not be negative: min %d, max %d", cfg.MinTokens, cfg.MaxTokens)
	}
	if cfg.MaxTokens > 0 && cfg.MinTokens > cfg.MaxTokens {
		return nil, fmt.Errorf("min tokens %d exceeds max tokens %d", cfg.MinTokens, cfg.MaxTokens)
	}
	if cfg.CharsPerToken < 0 {
		return nil, fmt.Errorf("chars per token must be positive: %v", cfg.CharsPerToken)
	}
	if cfg.CharsPerToken == 0 {
		cfg.CharsPerToken = DefaultCharsPerToken
	}
	if cfg.RepetitionThreshold < 0 || cfg.RepetitionThreshold >= 1 {
		return nil, fmt.Errorf("repetition threshold must be in [0, 1): %v", cfg.RepetitionThreshold)
	}
	if cfg.RepetitionThreshold == 0 {
		cfg.RepetitionThreshold = DefaultRepetitionThreshold
	}
	if _, err := ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}
	if len(cfg.RequiredFields) > 0 && cfg.Format != FormatJSON {
		return nil, fmt.Errorf("required fields need the %s format", FormatJSON)
	}
	return &Screener{cfg: cfg}, nil
}

// Result is the outcome of screening one response.
type Result struct {
	Flagged bool
	Reasons []Reason
	// Confidence is 1 for a clean response, otherwise the lowest severity of the raised flags.
	Confidence float64
}

// Flags returns the raised flags in the order they were checked.
func (r Result) Flags() []Flag {
	flags := make([]Flag, len(r.Reasons))
	for i, reason := range r.Reasons {
		flags[i] = reason.Flag
	}
	return flags
}

// Has reports whether f was raised.
func (r Result) Has(f Flag) bool {
	for _, reason := range r.Reasons {
		if reason.Flag == f {
			return true
		}
	}
	return false
}

// Err returns all reasons combined into one error, or nil if nothing was raised.
func (r Result) Err() error {
	var err error
	for _, reason := range r.Reasons {
		err = multierr.Append(err, reason)
	}
	return err
}

// Screen runs the configured checks on text.
func (s *Screener) Screen(text string) Result {
	lower := strings.ToLower(text)
	checks := []*Reason{
		checkLength(text, s.cfg.MinTokens, s.cfg.MaxTokens, s.cfg.CharsPerToken),
		checkFormat(text, s.cfg.Format, s.cfg.RequiredFields),
	}
	if !s.cfg.SkipHedging {
		checks = append(checks, checkPatterns(lower, LowConfidence, hedging))
	}
	if !s.cfg.SkipOffTopic {
		checks = append(checks, checkPatterns(lower, OffTopic, offRails))
	}
	if !s.cfg.SkipRepetition {
		checks = append(checks, checkRepetition(lower, s.cfg.RepetitionThreshold))
	}

	res := Result{Confidence: 1}
	critical := false
	for _, reason := range checks {
		if reason == nil {
			continue
		}
		res.Reasons = append(res.Reasons, *reason)
		if sev := reason.Flag.Severity(); sev < res.Confidence {
			res.Confidence = sev
		}
		critical = critical || reason.Flag.Critical()
	}
	if s.cfg.Strict {
		res.Flagged = len(res.Reasons) > 0
	} else {
		res.Flagged = critical || len(res.Reasons) >= 2
	}
	return res
}

// Filter returns the responses that are not flagged, in their original order.
func (s *Screener) Filter(responses []string) []string {
	var kept []string
	for _, r := range responses {
		if !s.Screen(r).Flagged {
			kept = append(kept, r)
		}
	}
	return kept
}
