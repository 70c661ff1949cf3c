package cli

import (
	"fmt"
	"strings"

	"github.com/relab/maker/internal/config"
	"github.com/relab/maker/redflag"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

var screenCmd = &cobra.Command{
	Use:   "screen [file]",
	Short: "Check responses for red flags, one per line.",
	Long: `The screen command reads responses, one per line, from a file or from stdin,
and prints the ones that pass red-flag screening.

With --explain, the reasons for every discarded response are printed to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)

	addScreenFlags(screenCmd.Flags())
	screenCmd.Flags().Bool("explain", false, "print the reasons for discarded responses to stderr")
}

func runScreen(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.NewScreen(viper.GetViper(), args)
	if err != nil {
		return err
	}
	screener, err := redflag.New(cfg.Config)
	if err != nil {
		return err
	}
	responses, err := readLines(cmd, cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to read responses: %w", err)
	}

	kept := 0
	for i, response := range responses {
		res := screener.Screen(response)
		if !res.Flagged {
			kept++
			fmt.Fprintln(cmd.OutOrStdout(), response)
			continue
		}
		if cfg.Explain {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d discarded (confidence %.2f): %s\n", i+1, res.Confidence, explain(res))
		}
	}
	if cfg.Explain {
		fmt.Fprintf(cmd.ErrOrStderr(), "kept %d of %d responses\n", kept, len(responses))
	}
	return nil
}

func explain(res redflag.Result) string {
	errs := multierr.Errors(res.Err())
	reasons := make([]string, len(errs))
	for i, err := range errs {
		reasons[i] = err.Error()
	}
	return strings.Join(reasons, "; ")
}
