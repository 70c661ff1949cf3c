// Package runner drives the vote for each step of a long task. It draws
// candidate answers from a Sampler, discards red-flagged ones, and feeds the
// rest to a maker.Voter until the step is decided.
package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/relab/maker"
	"github.com/relab/maker/internal/logging"
	"github.com/relab/maker/redflag"
	"golang.org/x/time/rate"
)

//go:generate mockgen -destination=../internal/mocks/sampler_mock.go -package=mocks . Sampler

// Sampler produces one candidate answer for a step.
// Each call is expected to be an independent draw.
type Sampler interface {
	Sample(ctx context.Context, step int) (string, error)
}

// Screener decides whether a candidate must be discarded before voting.
// It is implemented by *redflag.Screener.
type Screener interface {
	Screen(text string) redflag.Result
}

// ErrUndecided is returned by Run when StopOnForced is set and a step ends without consensus.
var ErrUndecided = errors.New("step ended without consensus")

// Equivalence names how two candidate answers are compared.
type Equivalence string

// The supported equivalences. The empty string means Exact.
const (
	Exact   Equivalence = "exact"
	Fold    Equivalence = "fold"
	Trimmed Equivalence = "trimmed"
)

// ParseEquivalence parses the name of an equivalence.
func ParseEquivalence(s string) (Equivalence, error) {
	switch e := Equivalence(strings.ToLower(s)); e {
	case "", Exact:
		return Exact, nil
	case Fold, Trimmed:
		return e, nil
	default:
		return "", fmt.Errorf("unknown equivalence '%s'", s)
	}
}

// Func returns the predicate for e. Unknown names compare exactly.
func (e Equivalence) Func() maker.Equivalence[string] {
	switch e {
	case Fold:
		return maker.EqualFold
	case Trimmed:
		return maker.TrimmedEqualFold
	default:
		return maker.Equal[string]
	}
}

// Config configures a Runner. Zero values select the defaults.
type Config struct {
	// Margin is the lead k required for consensus.
	Margin int
	// MaxSamples bounds the number of candidates counted per step.
	MaxSamples int
	// MaxDraws bounds the number of calls to the sampler per step, including
	// discarded candidates. Defaults to 4*MaxSamples.
	MaxDraws    int
	Equivalence Equivalence
	// RateLimit is the maximum number of samples per second. Zero or +Inf disables it.
	RateLimit float64
	// Burst is the number of samples that may be drawn at once. Defaults to 1.
	Burst int
	// StopOnForced makes Run stop at the first step without consensus.
	StopOnForced bool
}

// Option sets optional collaborators of a Runner.
type Option func(*Runner)

// WithScreener discards the candidates that s flags.
func WithScreener(s Screener) Option {
	return func(r *Runner) {
		r.screener = s
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// Runner runs one step at a time. It must not be used by several goroutines at once.
type Runner struct {
	cfg      Config
	sampler  Sampler
	screener Screener
	logger   logging.Logger
	limiter  *rate.Limiter
	voter    *maker.Voter[string]
}

// New returns a Runner that draws candidates from sampler.
func New(sampler Sampler, cfg Config, opts ...Option) (*Runner, error) {
	if sampler == nil {
		return nil, errors.New("runner: sampler is nil")
	}
	if cfg.Margin == 0 {
		cfg.Margin = maker.DefaultMargin
	}
	if cfg.MaxSamples == 0 {
		cfg.MaxSamples = maker.DefaultMaxSamples
	}
	if cfg.RateLimit < 0 || math.IsNaN(cfg.RateLimit) {
		return nil, fmt.Errorf("runner: rate limit must not be negative: %v", cfg.RateLimit)
	}
	if cfg.Burst < 0 {
		return nil, fmt.Errorf("runner: burst must not be negative: %d", cfg.Burst)
	}
	if cfg.Burst == 0 {
		cfg.Burst = 1
	}
	eq, err := ParseEquivalence(string(cfg.Equivalence))
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	cfg.Equivalence = eq

	voteOpts := []maker.VoteOption{maker.WithMargin(cfg.Margin), maker.WithMaxSamples(cfg.MaxSamples)}
	var voter *maker.Voter[string]
	if eq == Exact {
		voter, err = maker.NewVoter[string](voteOpts...)
	} else {
		voter, err = maker.NewVoterFunc(eq.Func(), voteOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	if cfg.MaxDraws == 0 {
		cfg.MaxDraws = 4 * cfg.MaxSamples
	}
	if cfg.MaxDraws < 0 {
		return nil, fmt.Errorf("runner: max draws must be positive: %d", cfg.MaxDraws)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 && !math.IsInf(cfg.RateLimit, 1) {
		limit = rate.Limit(cfg.RateLimit)
	}

	r := &Runner{
		cfg:     cfg,
		sampler: sampler,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		voter:   voter,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.New("runner")
	}
	return r, nil
}

// Config returns the configuration of the runner, with defaults filled in.
func (r *Runner) Config() Config {
	return r.cfg
}

// StepResult is the result of one step.
type StepResult struct {
	Step    int
	Outcome maker.Outcome[string]
	// Draws is the number of calls to the sampler.
	Draws int
	// Discarded is the number of red-flagged candidates.
	Discarded int
}

// RunStep samples candidates for step until the vote is decided.
// If MaxDraws is reached first, the current outcome of the vote is returned:
// Forced if any candidate was counted, otherwise NoConsensus.
// Sampler errors and context cancellation abort the step.
func (r *Runner) RunStep(ctx context.Context, step int) (StepResult, error) {
	r.voter.Reset()
	res := StepResult{Step: step}

	for res.Draws < r.cfg.MaxDraws {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		candidate, err := r.sampler.Sample(ctx, step)
		res.Draws++
		if err != nil {
			return res, fmt.Errorf("sample step %d: %w", step, err)
		}
		if r.screener != nil {
			if sr := r.screener.Screen(candidate); sr.Flagged {
				res.Discarded++
				r.logger.Debugf("step %d: discarded candidate: %v", step, sr.Err())
				continue
			}
		}
		if outcome, done := r.voter.Add(candidate); done {
			res.Outcome = outcome
			r.report(res)
			return res, nil
		}
	}

	res.Outcome = r.voter.Outcome()
	r.logger.Warnf("step %d: stopped after %d draws (%d discarded)", step, res.Draws, res.Discarded)
	r.report(res)
	return res, nil
}

func (r *Runner) report(res StepResult) {
	switch res.Outcome.Status {
	case maker.Consensus:
		r.logger.Debugf("step %d: %v after %d draws", res.Step, res.Outcome, res.Draws)
	case maker.Forced:
		r.logger.Warnf("step %d: forced winner %q without consensus (margin %d, %d samples)",
			res.Step, res.Outcome.Winner, res.Outcome.Margin, res.Outcome.Samples)
	default:
		r.logger.Warnf("step %d: no candidates were counted", res.Step)
	}
}

// Summary counts the outcomes of a run.
type Summary struct {
	Steps       int
	Consensus   int
	Forced      int
	NoConsensus int
	Draws       int
	Discarded   int

	draws drawStats
}

// DrawsPerStep returns the mean and standard deviation of the number of draws per step.
func (s Summary) DrawsPerStep() (mean, stddev float64) {
	return s.draws.get()
}

func (s *Summary) add(res StepResult) {
	s.Steps++
	s.Draws += res.Draws
	s.draws.update(res.Draws)
	s.Discarded += res.Discarded
	switch res.Outcome.Status {
	case maker.Consensus:
		s.Consensus++
	case maker.Forced:
		s.Forced++
	default:
		s.NoConsensus++
	}
}

// Run runs steps 0 to steps-1 in order, calling fn, if not nil, with the result of each step.
// It stops at the first error from RunStep or fn. If StopOnForced is set,
// it also stops at the first step without consensus and returns ErrUndecided.
func (r *Runner) Run(ctx context.Context, steps int, fn func(StepResult) error) (Summary, error) {
	var summary Summary
	for step := 0; step < steps; step++ {
		res, err := r.RunStep(ctx, step)
		if err != nil {
			return summary, err
		}
		summary.add(res)
		if fn != nil {
			if err := fn(res); err != nil {
				return summary, err
			}
		}
		if r.cfg.StopOnForced && !res.Outcome.Earned() {
			return summary, fmt.Errorf("step %d: %w", step, ErrUndecided)
		}
	}
	return summary, nil
}
