package cli

import (
	"fmt"

	"github.com/relab/maker"
	"github.com/relab/maker/internal/config"
	"github.com/relab/maker/redflag"
	"github.com/relab/maker/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var voteCmd = &cobra.Command{
	Use:   "vote [file]",
	Short: "Vote on candidate answers, one per line.",
	Long: `The vote command reads candidate answers for a single step, one per line,
from a file or from stdin, and votes on them in order.

The first answer to lead all others by k votes wins. If the answers run out first,
the most common answer is reported as a forced winner.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVote,
}

func init() {
	rootCmd.AddCommand(voteCmd)

	voteCmd.Flags().Int("k", maker.DefaultMargin, "the lead required to win")
	voteCmd.Flags().Int("max-samples", maker.DefaultMaxSamples, "the maximum number of candidates to count")
	voteCmd.Flags().String("equivalence", string(runner.Exact), "how candidates are compared (exact, fold, trimmed)")
	voteCmd.Flags().Bool("screen", false, "discard red-flagged candidates before voting")
	addScreenFlags(voteCmd.Flags())
}

func runVote(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.NewVote(viper.GetViper(), args)
	if err != nil {
		return err
	}
	candidates, err := readLines(cmd, cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to read candidates: %w", err)
	}

	discarded := 0
	if cfg.Screen {
		screener, err := redflag.New(cfg.Config)
		if err != nil {
			return err
		}
		kept := screener.Filter(candidates)
		discarded = len(candidates) - len(kept)
		candidates = kept
	}

	opts := []maker.VoteOption{maker.WithMargin(cfg.Margin), maker.WithMaxSamples(cfg.MaxSamples)}
	var outcome maker.Outcome[string]
	if cfg.Equivalence == runner.Exact {
		outcome, err = maker.VoteUntilConsensus(candidates, opts...)
	} else {
		outcome, err = maker.VoteUntilConsensusFunc(candidates, cfg.Equivalence.Func(), opts...)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status:    %v\n", outcome.Status)
	if outcome.HasWinner() {
		fmt.Fprintf(out, "winner:    %s\n", outcome.Winner)
	}
	fmt.Fprintf(out, "margin:    %d (k=%d)\n", outcome.Margin, cfg.Margin)
	fmt.Fprintf(out, "samples:   %d\n", outcome.Samples)
	fmt.Fprintf(out, "groups:    %d\n", outcome.Groups)
	if cfg.Screen {
		fmt.Fprintf(out, "discarded: %d\n", discarded)
	}
	return nil
}
