package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/relab/maker"
	"github.com/relab/maker/internal/config"
	"github.com/relab/maker/plotting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// plotAccuracies are the accuracies shown next to the planned one in the k scaling plot.
var plotAccuracies = []float64{0.6, 0.7, 0.9, 0.99}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the margin and the expected cost of a task.",
	Long: `The plan command computes the smallest margin k that lets a task with the given
number of steps succeed with the target probability, and the expected number of
samples and cost of running it.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().Int("steps", 1_000_000, "the number of steps in the task")
	planCmd.Flags().Float64("accuracy", 0.8, "the probability that a single sample is correct")
	planCmd.Flags().Float64("target", 0.99, "the required probability of completing every step")
	planCmd.Flags().Float64("cost-per-call", 1, "the cost of one sample")
	planCmd.Flags().Int("k", 0, "use this margin instead of computing it")
	planCmd.Flags().String("plot", "", "save the k scaling plot to this file (the cost plot is saved next to it)")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.NewPlan(viper.GetViper())
	if err != nil {
		return err
	}

	k := cfg.K
	if k == 0 {
		k, err = maker.RequiredK(maker.ReliabilityParameters{
			TotalSteps:        cfg.Steps,
			PerStepAccuracy:   cfg.Accuracy,
			TargetSuccessRate: cfg.Target,
		})
		if err != nil {
			return err
		}
	}
	est, err := maker.EstimateCost(cfg.Steps, k, cfg.Accuracy, cfg.CostPerCall)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "steps:                %d\n", cfg.Steps)
	fmt.Fprintf(out, "per-step accuracy:    %g\n", cfg.Accuracy)
	fmt.Fprintf(out, "target success rate:  %g\n", cfg.Target)
	fmt.Fprintf(out, "required k:           %d\n", k)
	fmt.Fprintf(out, "step error bound:     %.3e\n", maker.StepErrorBound(cfg.Accuracy, k))
	fmt.Fprintf(out, "success probability:  %.6f\n", maker.SuccessProbability(cfg.Steps, cfg.Accuracy, k))
	fmt.Fprintf(out, "samples per step:     %.2f\n", est.ExpectedSamplesPerStep)
	fmt.Fprintf(out, "total samples:        %.0f\n", est.ExpectedTotalSamples)
	fmt.Fprintf(out, "total cost:           %.2f\n", est.ExpectedTotalCost)

	if cfg.Plot == "" {
		return nil
	}
	accuracies := []float64{cfg.Accuracy}
	for _, p := range plotAccuracies {
		if p != cfg.Accuracy {
			accuracies = append(accuracies, p)
		}
	}
	if err := plotting.NewKScalingPlot(cfg.Target, accuracies...).Save(cfg.Plot); err != nil {
		return fmt.Errorf("failed to save k scaling plot: %w", err)
	}
	costFile := siblingFile(cfg.Plot, "cost")
	if err := plotting.NewCostPlot(cfg.Accuracy, cfg.Target).Save(costFile); err != nil {
		return fmt.Errorf("failed to save cost plot: %w", err)
	}
	fmt.Fprintf(out, "plots saved to %s and %s\n", cfg.Plot, costFile)
	return nil
}

// siblingFile returns name with suffix inserted before its extension.
func siblingFile(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + suffix + ext
}
