package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/relab/maker/redflag"
	"github.com/relab/maker/runner"
	"github.com/spf13/viper"
)

func fromYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("ReadConfig() = %v", err)
	}
	return v
}

func TestNewPlan(t *testing.T) {
	v := fromYAML(t, `
steps: 1000000
accuracy: 0.8
target: 0.99
cost-per-call: 0.002
plot: k.png
`)
	cfg, err := NewPlan(v)
	if err != nil {
		t.Fatal(err)
	}
	want := PlanConfig{Steps: 1_000_000, Accuracy: 0.8, Target: 0.99, CostPerCall: 0.002, Plot: "k.png"}
	if cfg != want {
		t.Errorf("NewPlan() = %+v; want %+v", cfg, want)
	}

	v.Set("k", -1)
	if _, err := NewPlan(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewPlan() with k=-1: error = %v; want %v", err, ErrInvalidConfig)
	}
}

func TestNewSimulate(t *testing.T) {
	v := fromYAML(t, `
steps: 100
accuracy: 0.8
trials: 500
distractors: 3
seed: 7
cpu-profile: cpu.prof
output: results.json
`)
	cfg, err := NewSimulate(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Steps != 100 || cfg.Accuracy != 0.8 || cfg.Trials != 500 || cfg.Distractors != 3 || cfg.Seed != 7 {
		t.Errorf("NewSimulate() = %+v", cfg.Config)
	}
	if cfg.K != 0 || cfg.Workers != 0 {
		t.Errorf("unset fields were not zero: k=%d workers=%d", cfg.K, cfg.Workers)
	}
	if cfg.Profiles.CPU != "cpu.prof" || cfg.Profiles.Mem != "" || !cfg.Profiles.Enabled() {
		t.Errorf("Profiles = %+v", cfg.Profiles)
	}
	if cfg.Output != "results.json" {
		t.Errorf("Output = %q", cfg.Output)
	}

	v.Set("trials", 0)
	if _, err := NewSimulate(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewSimulate() with 0 trials: error = %v; want %v", err, ErrInvalidConfig)
	}
}

func TestNewVote(t *testing.T) {
	v := fromYAML(t, `
k: 2
max-samples: 50
equivalence: trimmed
screen: true
format: single_line
`)
	cfg, err := NewVote(v, []string{"answers.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "answers.txt" || cfg.Margin != 2 || cfg.MaxSamples != 50 || cfg.Equivalence != runner.Trimmed {
		t.Errorf("NewVote() = %+v", cfg)
	}
	if !cfg.Screen || cfg.Format != redflag.FormatSingleLine {
		t.Errorf("screening settings = %v, %q", cfg.Screen, cfg.Format)
	}

	cfg, err = NewVote(v, []string{"-"})
	if err != nil || cfg.Input != "" {
		t.Errorf("NewVote(-) = %q, %v; want stdin", cfg.Input, err)
	}

	for key, value := range map[string]interface{}{"k": 0, "max-samples": -1, "equivalence": "semantic", "format": "xml"} {
		bad := fromYAML(t, "k: 2\nmax-samples: 50\n")
		bad.Set(key, value)
		if _, err := NewVote(bad, nil); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewVote() with %s=%v: error = %v; want %v", key, value, err, ErrInvalidConfig)
		}
	}
}

func TestNewScreen(t *testing.T) {
	v := fromYAML(t, `
format: json
required-fields: [action, disk]
max-tokens: 100
strict: true
explain: true
`)
	cfg, err := NewScreen(v, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "" || cfg.Format != redflag.FormatJSON || cfg.MaxTokens != 100 || !cfg.Strict || !cfg.Explain {
		t.Errorf("NewScreen() = %+v", cfg)
	}
	if len(cfg.RequiredFields) != 2 || cfg.RequiredFields[1] != "disk" {
		t.Errorf("RequiredFields = %v", cfg.RequiredFields)
	}

	// required fields need the JSON format
	v.Set("format", "code")
	if _, err := NewScreen(v, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewScreen() error = %v; want %v", err, ErrInvalidConfig)
	}
}
