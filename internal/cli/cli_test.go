package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relab/maker/internal/config"
	"github.com/relab/maker/simulation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores the default value of every flag, since flag values
// survive between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestPlan(t *testing.T) {
	out, _, err := execute(t, "", "plan", "--steps", "1000000", "--accuracy", "0.8", "--target", "0.99")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "required k:           14\n") {
		t.Errorf("plan output does not contain k=14:\n%s", out)
	}

	out, _, err = execute(t, "", "plan", "--steps", "1000", "--k", "5", "--cost-per-call", "0.5")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "required k:           5\n") {
		t.Errorf("plan output does not contain k=5:\n%s", out)
	}
	// 5 / 0.6 samples per step
	if !strings.Contains(out, "samples per step:     8.33\n") {
		t.Errorf("plan output does not contain the samples per step:\n%s", out)
	}
}

func TestPlanPlots(t *testing.T) {
	dir := t.TempDir()
	plot := filepath.Join(dir, "k.png")
	if _, _, err := execute(t, "", "plan", "--steps", "1000", "--plot", plot); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{plot, filepath.Join(dir, "k-cost.png")} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("plot was not saved: %v", err)
		}
	}
}

func TestVote(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "answers.txt")
	if err := os.WriteFile(input, []byte("A\nB\n\nA\nA\nC\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "", "vote", input, "--k", "2")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"status:    consensus\n", "winner:    A\n", "margin:    2 (k=2)\n", "samples:   4\n", "groups:    2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("vote output does not contain %q:\n%s", want, out)
		}
	}
}

func TestVoteStdin(t *testing.T) {
	out, _, err := execute(t, " yes\nYES \nno\n", "vote", "-", "--k", "2", "--equivalence", "trimmed")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"status:    consensus\n", "winner:     yes\n", "samples:   2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("vote output does not contain %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, "A\nB\n", "vote", "--k", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "status:    forced\n") {
		t.Errorf("vote output is not forced:\n%s", out)
	}
}

func TestVoteScreen(t *testing.T) {
	stdin := "{\"a\": 1}\nnot json\n{\"a\": 1}\n"
	out, _, err := execute(t, stdin, "vote", "--k", "2", "--screen", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"status:    consensus\n", "winner:    {\"a\": 1}\n", "discarded: 1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("vote output does not contain %q:\n%s", want, out)
		}
	}
}

func TestVoteInvalid(t *testing.T) {
	_, _, err := execute(t, "A\n", "vote", "--k", "0")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("vote --k 0: error = %v; want %v", err, config.ErrInvalidConfig)
	}
}

func TestScreen(t *testing.T) {
	stdin := "{\"action\": \"move\"}\nplain text\n{\"other\": 1}\n"
	out, errOut, err := execute(t, stdin, "screen", "--format", "json", "--required-fields", "action", "--explain")
	if err != nil {
		t.Fatal(err)
	}
	if out != "{\"action\": \"move\"}\n" {
		t.Errorf("screen output = %q", out)
	}
	for _, want := range []string{"line 2 discarded", "line 3 discarded", "missing required JSON fields: action", "kept 1 of 3 responses"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("screen explanation does not contain %q:\n%s", want, errOut)
		}
	}
}

func TestSimulate(t *testing.T) {
	output := filepath.Join(t.TempDir(), "result.json")
	out, _, err := execute(t, "", "simulate",
		"--steps", "10", "--accuracy", "0.9", "--k", "2", "--trials", "20", "--workers", "2", "--output", output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "voting:") || !strings.Contains(out, "standard:") {
		t.Errorf("simulate output is missing an agent:\n%s", out)
	}

	b, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var res simulation.Result
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatal(err)
	}
	if res.Config.Steps != 10 || res.Config.K != 2 || res.Config.Trials != 20 {
		t.Errorf("Config = %+v", res.Config)
	}
	if res.Voting.Successes > 20 || res.Voting.MeanCalls <= 0 {
		t.Errorf("Voting = %+v", res.Voting)
	}
}
