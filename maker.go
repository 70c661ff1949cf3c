// Package maker implements first-to-ahead-by-k voting, which lets a long sequence of
// noisy decisions reach a low end-to-end error rate. For each step, independent candidate
// answers are fed to a Voter one at a time. A candidate wins the step once its group leads
// every competing group by at least k votes.
//
// The package also contains the two formulas used to size a run:
//
//	RequiredK     -> the smallest margin k that reaches a target success rate over s steps
//	EstimateCost  -> the expected number of samples (and cost) of running s steps with margin k
//
// The relationships between the types are as follows:
//
//	                 +-------------+
//	candidates ----->|    Voter    |----> Outcome{Status, Winner, Margin, Samples}
//	 (one by one)    +-------------+
//	                        |
//	                        v
//	                 +-------------+        +----------------+
//	                 |    Tally    |------->|  Equivalence   |  (general path only)
//	                 +-------------+        +----------------+
//
// Nothing in this package blocks, logs or keeps state across steps.
package maker

import "fmt"

// Status describes how a vote ended.
type Status uint8

const (
	// NoConsensus means that no candidates were seen.
	NoConsensus Status = iota
	// Consensus means that the winner reached the required margin.
	Consensus
	// Forced means that the candidates ran out before any group reached the
	// required margin, and the largest group was returned instead.
	Forced
)

func (s Status) String() string {
	switch s {
	case NoConsensus:
		return "no-consensus"
	case Consensus:
		return "consensus"
	case Forced:
		return "forced"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Outcome is the result of a vote.
type Outcome[T any] struct {
	// Status tells whether the winner was earned, forced or absent.
	Status Status
	// Winner is the representative of the winning group.
	// It is the zero value if Status is NoConsensus.
	Winner T
	// Margin is the lead of the winning group over the runner-up
	// at the time the vote ended.
	Margin int
	// Samples is the number of candidates that were consumed.
	Samples int
	// Groups is the number of distinct groups that were seen.
	Groups int
}

// HasWinner returns true if the outcome carries a winner, earned or forced.
func (o Outcome[T]) HasWinner() bool {
	return o.Status != NoConsensus
}

// Earned returns true if the winner reached the required margin.
func (o Outcome[T]) Earned() bool {
	return o.Status == Consensus
}

func (o Outcome[T]) String() string {
	if o.Status == NoConsensus {
		return "no-consensus"
	}
	return fmt.Sprintf("%s{%v, margin=%d, samples=%d, groups=%d}", o.Status, o.Winner, o.Margin, o.Samples, o.Groups)
}
