package maker

const (
	// DefaultMargin is the margin used when WithMargin is not given.
	DefaultMargin = 3
	// DefaultMaxSamples is the sample bound used when WithMaxSamples is not given.
	DefaultMaxSamples = 100
)

type voteConfig struct {
	margin     int
	maxSamples int
}

// VoteOption configures a vote.
type VoteOption func(*voteConfig)

// WithMargin sets the lead k that a group needs over the runner-up to win.
func WithMargin(k int) VoteOption {
	return func(c *voteConfig) {
		c.margin = k
	}
}

// WithMaxSamples sets the maximum number of candidates that are consumed.
func WithMaxSamples(n int) VoteOption {
	return func(c *voteConfig) {
		c.maxSamples = n
	}
}

func newVoteConfig(opts []VoteOption) (voteConfig, error) {
	cfg := voteConfig{
		margin:     DefaultMargin,
		maxSamples: DefaultMaxSamples,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.margin < 1 {
		return cfg, invalidArgument("margin k must be at least 1, got %d", cfg.margin)
	}
	if cfg.maxSamples < 1 {
		return cfg, invalidArgument("max samples must be at least 1, got %d", cfg.maxSamples)
	}
	return cfg, nil
}

// Voter runs first-to-ahead-by-k voting over candidates that arrive one at a time.
//
// A Voter decides a single step. Call Reset to reuse it for the next step.
// A Voter must not be used concurrently.
type Voter[T any] struct {
	tally      *Tally[T]
	margin     int
	maxSamples int

	done    bool
	outcome Outcome[T]
}

// NewVoter returns a voter that groups candidates by value equality.
func NewVoter[T comparable](opts ...VoteOption) (*Voter[T], error) {
	cfg, err := newVoteConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Voter[T]{
		tally:      NewTally[T](),
		margin:     cfg.margin,
		maxSamples: cfg.maxSamples,
	}, nil
}

// NewVoterFunc returns a voter that groups candidates with the given equivalence.
func NewVoterFunc[T any](eq Equivalence[T], opts ...VoteOption) (*Voter[T], error) {
	if eq == nil {
		return nil, invalidArgument("equivalence must not be nil")
	}
	cfg, err := newVoteConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Voter[T]{
		tally:      NewTallyFunc(eq),
		margin:     cfg.margin,
		maxSamples: cfg.maxSamples,
	}, nil
}

// Add counts the next candidate. It returns done=true when the vote is decided,
// either because a group reached the margin, or because the sample bound was reached.
// Once the vote is decided, Add ignores further candidates and returns the final outcome.
func (v *Voter[T]) Add(c T) (outcome Outcome[T], done bool) {
	if v.done {
		return v.outcome, true
	}

	v.tally.Add(c)

	if v.tally.Margin() >= v.margin {
		v.finish(Consensus)
		return v.outcome, true
	}
	if v.tally.Total() >= v.maxSamples {
		v.finish(Forced)
		return v.outcome, true
	}
	return v.current(), false
}

// Outcome returns the outcome of the vote. If the vote is not yet decided,
// it returns the outcome for a candidate stream that ends now: the largest
// group as a Forced winner, or NoConsensus if no candidates were added.
func (v *Voter[T]) Outcome() Outcome[T] {
	if v.done {
		return v.outcome
	}
	return v.current()
}

// Done returns true if the vote is decided.
func (v *Voter[T]) Done() bool {
	return v.done
}

// Margin returns the margin k that the voter requires.
func (v *Voter[T]) Margin() int {
	return v.margin
}

// MaxSamples returns the maximum number of candidates the voter consumes.
func (v *Voter[T]) MaxSamples() int {
	return v.maxSamples
}

// Groups returns a copy of the current groups in the order they were created.
func (v *Voter[T]) Groups() []Group[T] {
	return v.tally.Groups()
}

// Reset prepares the voter for a new step.
func (v *Voter[T]) Reset() {
	v.tally.Reset()
	v.done = false
	v.outcome = Outcome[T]{}
}

func (v *Voter[T]) finish(status Status) {
	v.done = true
	v.outcome = v.snapshot(status)
}

func (v *Voter[T]) current() Outcome[T] {
	if v.tally.Total() == 0 {
		return Outcome[T]{}
	}
	return v.snapshot(Forced)
}

func (v *Voter[T]) snapshot(status Status) Outcome[T] {
	leader, _ := v.tally.Leader()
	return Outcome[T]{
		Status:  status,
		Winner:  leader.Representative,
		Margin:  v.tally.Margin(),
		Samples: v.tally.Total(),
		Groups:  v.tally.Len(),
	}
}

// VoteUntilConsensus runs first-to-ahead-by-k voting over candidates, in order,
// grouping them by value equality. At most max samples candidates are consumed.
//
// The first group to lead all others by the margin k wins with status Consensus.
// If the candidates run out first, the largest group is returned with status Forced.
// An empty candidate list gives NoConsensus.
//
// It returns ErrInvalidArgument if the margin or the sample bound is less than 1.
func VoteUntilConsensus[T comparable](candidates []T, opts ...VoteOption) (Outcome[T], error) {
	v, err := NewVoter[T](opts...)
	if err != nil {
		return Outcome[T]{}, err
	}
	return v.run(candidates), nil
}

// VoteUntilConsensusFunc is like VoteUntilConsensus, but groups candidates with eq.
func VoteUntilConsensusFunc[T any](candidates []T, eq Equivalence[T], opts ...VoteOption) (Outcome[T], error) {
	v, err := NewVoterFunc(eq, opts...)
	if err != nil {
		return Outcome[T]{}, err
	}
	return v.run(candidates), nil
}

func (v *Voter[T]) run(candidates []T) Outcome[T] {
	for _, c := range candidates {
		if outcome, done := v.Add(c); done {
			return outcome
		}
	}
	return v.Outcome()
}
