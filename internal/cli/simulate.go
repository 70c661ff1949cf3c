package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/relab/maker/internal/config"
	"github.com/relab/maker/internal/logging"
	"github.com/relab/maker/internal/profiling"
	"github.com/relab/maker/plotting"
	"github.com/relab/maker/simulation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Compare a voting agent with a single-sample agent.",
	Long: `The simulate command runs many trials of a task with a synthetic sampler.
In every trial, a standard agent takes one sample per step and a voting agent
votes with margin k. The success rates and sample counts of both agents are
printed together with their theoretical values.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Int("steps", 100, "the number of steps in each trial")
	simulateCmd.Flags().Float64("accuracy", 0.8, "the probability that a single sample is correct")
	simulateCmd.Flags().Int("k", 0, "the voting margin (computed from target if zero)")
	simulateCmd.Flags().Float64("target", 0.99, "the target success rate used to compute k")
	simulateCmd.Flags().Int("trials", 1000, "the number of trials")
	simulateCmd.Flags().Int("distractors", 1, "the number of distinct wrong answers")
	simulateCmd.Flags().Int64("seed", 1, "the random seed")
	simulateCmd.Flags().Int("workers", 0, "the number of concurrent trials (defaults to GOMAXPROCS)")
	simulateCmd.Flags().Int("max-samples", 0, "the sample bound per step (derived from k if zero)")
	simulateCmd.Flags().String("output", "", "write the result as JSON to this file")
	simulateCmd.Flags().String("plot", "", "save the k scaling plot for the simulated accuracy to this file")

	simulateCmd.Flags().String("cpu-profile", "", "file to write a CPU profile to")
	simulateCmd.Flags().String("mem-profile", "", "file to write a memory profile to")
	simulateCmd.Flags().String("trace", "", "file to write an execution trace to")
	simulateCmd.Flags().String("fgprof-profile", "", "file to write a wall-clock profile to")
}

func runSimulate(cmd *cobra.Command, _ []string) (err error) {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.NewSimulate(viper.GetViper())
	if err != nil {
		return err
	}

	stopProfiles, err := profiling.Start(cfg.Profiles)
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	defer func() { err = multierr.Append(err, stopProfiles()) }()

	sim, err := simulation.New(cfg.Config, logging.New("simulation"))
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	printSimulation(cmd, res)

	if cfg.Output != "" {
		if err := writeJSON(cfg.Output, res); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	if cfg.Plot != "" {
		if err := plotting.NewKScalingPlot(res.Config.Target, res.Config.Accuracy).Save(cfg.Plot); err != nil {
			return fmt.Errorf("failed to save plot: %w", err)
		}
	}
	return nil
}

func printSimulation(cmd *cobra.Command, res simulation.Result) {
	out := cmd.OutOrStdout()
	c := res.Config
	fmt.Fprintf(out, "steps=%d accuracy=%g k=%d trials=%d distractors=%d seed=%d\n",
		c.Steps, c.Accuracy, c.K, c.Trials, c.Distractors, c.Seed)
	fmt.Fprintf(out, "standard: success %6.2f%% ± %.2f (theory %.2e), %.1f calls per trial\n",
		100*res.Standard.SuccessRate, 100*res.Standard.StdErr, res.TheoreticalStandard, res.Standard.MeanCalls)
	fmt.Fprintf(out, "voting:   success %6.2f%% ± %.2f (theory ≥ %.2f%%), %.1f calls per trial (predicted %.1f, median %.0f), %d forced steps\n",
		100*res.Voting.SuccessRate, 100*res.Voting.StdErr, 100*res.TheoreticalVoting,
		res.Voting.MeanCalls, res.PredictedCalls, res.Voting.MedianCalls, res.Voting.ForcedSteps)
	fmt.Fprintf(out, "gain:     %.3gx\n", res.Gain())
}

func writeJSON(path string, v interface{}) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
