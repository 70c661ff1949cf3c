// Package simulation compares a standard agent, which fails at its first wrong
// step, with an agent that votes on every step, over many simulated trials.
//
// Each step is answered correctly with a fixed probability. Wrong answers are
// spread over one or more distractors, the first being the most likely.
// With a single distractor every wrong answer votes for the same competitor,
// which is the worst case for the voting agent.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	mrand "math/rand"
	"runtime"
	"sort"

	wr "github.com/mroth/weightedrand"
	"github.com/relab/maker"
	"github.com/relab/maker/internal/logging"
	"github.com/relab/maker/runner"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	correctAnswer = "correct"
	// MaxDistractors bounds the number of distinct wrong answers.
	MaxDistractors = 32
	// DefaultTarget is the success rate used to choose k when it is not set.
	DefaultTarget = 0.99
)

// Config configures a simulation. Zero values of the optional fields select defaults.
type Config struct {
	Steps    int     `json:"steps"`
	Accuracy float64 `json:"accuracy"`
	// K is the voting margin. Zero selects the smallest k that reaches Target.
	K      int     `json:"k"`
	Target float64 `json:"target"`
	Trials int     `json:"trials"`
	// Distractors is the number of distinct wrong answers. Defaults to 1.
	Distractors int   `json:"distractors"`
	Seed        int64 `json:"seed"`
	// Workers is the number of trials run in parallel. Defaults to GOMAXPROCS.
	Workers int `json:"workers"`
	// MaxSamples bounds the candidates counted per step. Defaults to ten times
	// the expected number of samples per step, and at least maker.DefaultMaxSamples.
	MaxSamples int `json:"max_samples"`
}

func (cfg *Config) resolve() error {
	if cfg.Steps < 1 {
		return fmt.Errorf("steps must be at least 1: %d", cfg.Steps)
	}
	if !(cfg.Accuracy > 0.5 && cfg.Accuracy <= 1) {
		return fmt.Errorf("accuracy must be in (0.5, 1]: %v", cfg.Accuracy)
	}
	if cfg.Trials < 1 {
		return fmt.Errorf("trials must be at least 1: %d", cfg.Trials)
	}
	if cfg.Distractors == 0 {
		cfg.Distractors = 1
	}
	if cfg.Distractors < 1 || cfg.Distractors > MaxDistractors {
		return fmt.Errorf("distractors must be in [1, %d]: %d", MaxDistractors, cfg.Distractors)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1: %d", cfg.Workers)
	}
	if cfg.Target == 0 {
		cfg.Target = DefaultTarget
	}
	if cfg.K < 0 || cfg.MaxSamples < 0 {
		return fmt.Errorf("k and max samples must not be negative: %d, %d", cfg.K, cfg.MaxSamples)
	}
	if cfg.K == 0 {
		if cfg.Accuracy == 1 {
			cfg.K = 1
		} else {
			k, err := maker.RequiredK(maker.ReliabilityParameters{
				TotalSteps:        cfg.Steps,
				PerStepAccuracy:   cfg.Accuracy,
				TargetSuccessRate: cfg.Target,
			})
			if err != nil {
				return err
			}
			cfg.K = k
		}
	}
	if cfg.MaxSamples == 0 {
		est, err := maker.EstimateCost(1, cfg.K, cfg.Accuracy, 1)
		if err != nil {
			return err
		}
		cfg.MaxSamples = int(math.Ceil(10 * est.ExpectedSamplesPerStep))
		if cfg.MaxSamples < maker.DefaultMaxSamples {
			cfg.MaxSamples = maker.DefaultMaxSamples
		}
	}
	return nil
}

// AgentResult summarizes the trials of one agent.
type AgentResult struct {
	Successes   int     `json:"successes"`
	SuccessRate float64 `json:"success_rate"`
	// StdErr is the standard error of SuccessRate.
	StdErr float64 `json:"std_err"`
	// Calls counts samples per trial, including failed trials.
	MeanCalls   float64 `json:"mean_calls"`
	StdDevCalls float64 `json:"stddev_calls"`
	MedianCalls float64 `json:"median_calls"`
	// ForcedSteps counts the steps that ended without consensus.
	ForcedSteps int `json:"forced_steps"`
}

// Result is the outcome of a simulation.
type Result struct {
	// Config is the configuration with all defaults filled in.
	Config   Config      `json:"config"`
	Standard AgentResult `json:"standard"`
	Voting   AgentResult `json:"voting"`
	// TheoreticalStandard is Accuracy^Steps.
	TheoreticalStandard float64 `json:"theoretical_standard"`
	// TheoreticalVoting is the lower bound on the voting agent's success rate.
	TheoreticalVoting float64 `json:"theoretical_voting"`
	// PredictedCalls is the expected number of samples for a trial that completes all steps.
	PredictedCalls float64 `json:"predicted_calls"`
}

// Gain is the voting agent's success rate relative to the standard agent's.
// A standard agent that never succeeded counts as 1e-10.
func (r Result) Gain() float64 {
	return r.Voting.SuccessRate / math.Max(r.Standard.SuccessRate, 1e-10)
}

// Simulation runs trials for one configuration.
type Simulation struct {
	cfg     Config
	chooser *wr.Chooser
	logger  logging.Logger
}

// New validates cfg and fills in its defaults.
func New(cfg Config, logger logging.Logger) (*Simulation, error) {
	if err := cfg.resolve(); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	// the first distractor is twice as likely as the second, and so on
	choices := make([]wr.Choice, cfg.Distractors)
	for i := range choices {
		choices[i] = wr.NewChoice(fmt.Sprintf("wrong-%d", i), uint(1)<<(cfg.Distractors-1-i))
	}
	chooser, err := wr.NewChooser(choices...)
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	if logger == nil {
		logger = logging.New("simulation")
	}
	return &Simulation{cfg: cfg, chooser: chooser, logger: logger}, nil
}

// Config returns the configuration with defaults filled in.
func (s *Simulation) Config() Config {
	return s.cfg
}

type trial struct {
	standardOK    bool
	standardCalls int
	votingOK      bool
	votingCalls   int
	forced        int
}

// Run runs all trials and summarizes them. Trials are spread over the
// configured number of workers; the result depends only on the configuration,
// not on the number of workers.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	s.logger.Infof("running %d trials of %d steps (p=%v, k=%d, %d distractors)",
		s.cfg.Trials, s.cfg.Steps, s.cfg.Accuracy, s.cfg.K, s.cfg.Distractors)

	trials := make([]trial, s.cfg.Trials)
	jobs := make(chan int)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range trials {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < s.cfg.Workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				t, err := s.runTrial(ctx, i)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				trials[i] = t
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := s.summarize(trials)
	s.logger.Infof("standard agent: %.2f%%, voting agent: %.2f%%, %.1f calls per trial",
		100*res.Standard.SuccessRate, 100*res.Voting.SuccessRate, res.Voting.MeanCalls)
	return res, nil
}

// seed derives an independent seed for one random stream of one trial.
func (s *Simulation) seed(trial int, stream uint64) uint64 {
	x := uint64(s.cfg.Seed) + uint64(trial)*0x9e3779b97f4a7c15 + stream
	// splitmix64 finalizer
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func (s *Simulation) runTrial(ctx context.Context, i int) (trial, error) {
	var t trial

	step := distuv.Bernoulli{P: s.cfg.Accuracy, Src: rand.NewSource(s.seed(i, 0))}
	t.standardOK = true
	for n := 0; n < s.cfg.Steps; n++ {
		t.standardCalls++
		if step.Rand() == 0 {
			t.standardOK = false
			break
		}
	}

	smp := &sampler{
		correct: distuv.Bernoulli{P: s.cfg.Accuracy, Src: rand.NewSource(s.seed(i, 1))},
		wrong:   mrand.New(mrand.NewSource(int64(s.seed(i, 2)))),
		chooser: s.chooser,
	}
	r, err := runner.New(smp, runner.Config{
		Margin:     s.cfg.K,
		MaxSamples: s.cfg.MaxSamples,
	}, runner.WithLogger(logging.Nop()))
	if err != nil {
		return t, err
	}
	t.votingOK = true
	for n := 0; n < s.cfg.Steps; n++ {
		res, err := r.RunStep(ctx, n)
		t.votingCalls += res.Draws
		if err != nil {
			return t, err
		}
		if !res.Outcome.Earned() {
			t.forced++
		}
		if res.Outcome.Winner != correctAnswer {
			t.votingOK = false
			break
		}
	}
	s.logger.Debugf("trial %d: standard=%v voting=%v calls=%d", i, t.standardOK, t.votingOK, t.votingCalls)
	return t, nil
}

func (s *Simulation) summarize(trials []trial) Result {
	standard := make([]float64, len(trials))
	voting := make([]float64, len(trials))
	var std, vote AgentResult
	for i, t := range trials {
		standard[i] = float64(t.standardCalls)
		voting[i] = float64(t.votingCalls)
		if t.standardOK {
			std.Successes++
		}
		if t.votingOK {
			vote.Successes++
		}
		vote.ForcedSteps += t.forced
	}
	summarizeAgent(&std, standard)
	summarizeAgent(&vote, voting)

	res := Result{
		Config:              s.cfg,
		Standard:            std,
		Voting:              vote,
		TheoreticalStandard: math.Pow(s.cfg.Accuracy, float64(s.cfg.Steps)),
		TheoreticalVoting:   maker.SuccessProbability(s.cfg.Steps, s.cfg.Accuracy, s.cfg.K),
	}
	if est, err := maker.EstimateCost(s.cfg.Steps, s.cfg.K, s.cfg.Accuracy, 1); err == nil {
		res.PredictedCalls = est.ExpectedTotalSamples
	}
	return res
}

func summarizeAgent(a *AgentResult, calls []float64) {
	n := float64(len(calls))
	a.SuccessRate = float64(a.Successes) / n
	a.StdErr = stat.StdErr(math.Sqrt(a.SuccessRate*(1-a.SuccessRate)), n)
	if len(calls) > 1 {
		a.MeanCalls, a.StdDevCalls = stat.MeanStdDev(calls, nil)
	} else {
		a.MeanCalls = calls[0]
	}
	sort.Float64s(calls)
	a.MedianCalls = stat.Quantile(0.5, stat.Empirical, calls, nil)
}

// sampler answers correctly with a fixed probability and otherwise picks a distractor.
type sampler struct {
	correct distuv.Bernoulli
	wrong   *mrand.Rand
	chooser *wr.Chooser
}

func (s *sampler) Sample(_ context.Context, _ int) (string, error) {
	if s.correct.Rand() == 1 {
		return correctAnswer, nil
	}
	answer, ok := s.chooser.PickSource(s.wrong).(string)
	if !ok {
		return "", errors.New("distractor is not a string")
	}
	return answer, nil
}
