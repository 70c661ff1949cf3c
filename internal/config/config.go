// Package config holds the typed configuration of each maker command.
// The configurations are read from viper, which merges flags, environment
// variables and the config file.
package config

import (
	"errors"
	"fmt"

	"github.com/relab/maker/internal/profiling"
	"github.com/relab/maker/redflag"
	"github.com/relab/maker/runner"
	"github.com/relab/maker/simulation"
)

// ErrInvalidConfig is wrapped by all validation errors.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// PlanConfig holds the configuration for sizing a task.
type PlanConfig struct {
	// Steps is the number of steps in the task.
	Steps int
	// Accuracy is the probability that one sample is correct.
	Accuracy float64
	// Target is the required probability of completing all steps.
	Target float64
	// CostPerCall is the price of one sample.
	CostPerCall float64
	// K overrides the computed margin if it is not zero.
	K int
	// Plot is a file to save the scaling plots to. The cost plot is saved next to it.
	Plot string
}

// Validate checks the fields that the maker functions do not check themselves.
func (c PlanConfig) Validate() error {
	if c.K < 0 {
		return invalid("k must not be negative: %d", c.K)
	}
	return nil
}

// SimulateConfig holds the configuration for a simulation.
type SimulateConfig struct {
	simulation.Config
	// Output is a JSON file to write the result to.
	Output string
	// Plot is a file to save the k scaling plot for the simulated accuracy to.
	Plot     string
	Profiles profiling.Paths
}

// VoteConfig holds the configuration for voting on candidates read from a file.
type VoteConfig struct {
	// Input is the file to read candidates from, one per line. Empty or "-" is stdin.
	Input       string
	Margin      int
	MaxSamples  int
	Equivalence runner.Equivalence
	// Screen enables red-flag screening of the candidates before voting.
	Screen bool
	redflag.Config
}

// Validate checks the margin and the sample bound.
func (c VoteConfig) Validate() error {
	if c.Margin < 1 {
		return invalid("k must be at least 1: %d", c.Margin)
	}
	if c.MaxSamples < 1 {
		return invalid("max samples must be at least 1: %d", c.MaxSamples)
	}
	return nil
}

// ScreenConfig holds the configuration for screening responses read from a file.
type ScreenConfig struct {
	// Input is the file to read responses from, one per line. Empty or "-" is stdin.
	Input string
	redflag.Config
	// Explain prints the reasons for every flagged response.
	Explain bool
}
