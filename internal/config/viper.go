package config

import (
	"github.com/relab/maker/internal/profiling"
	"github.com/relab/maker/redflag"
	"github.com/relab/maker/runner"
	"github.com/relab/maker/simulation"
	"github.com/spf13/viper"
)

// NewPlan reads a PlanConfig from v.
func NewPlan(v *viper.Viper) (PlanConfig, error) {
	cfg := PlanConfig{
		Steps:       v.GetInt("steps"),
		Accuracy:    v.GetFloat64("accuracy"),
		Target:      v.GetFloat64("target"),
		CostPerCall: v.GetFloat64("cost-per-call"),
		K:           v.GetInt("k"),
		Plot:        v.GetString("plot"),
	}
	return cfg, cfg.Validate()
}

// NewSimulate reads a SimulateConfig from v.
func NewSimulate(v *viper.Viper) (SimulateConfig, error) {
	cfg := SimulateConfig{
		Config: simulation.Config{
			Steps:       v.GetInt("steps"),
			Accuracy:    v.GetFloat64("accuracy"),
			K:           v.GetInt("k"),
			Target:      v.GetFloat64("target"),
			Trials:      v.GetInt("trials"),
			Distractors: v.GetInt("distractors"),
			Seed:        v.GetInt64("seed"),
			Workers:     v.GetInt("workers"),
			MaxSamples:  v.GetInt("max-samples"),
		},
		Output: v.GetString("output"),
		Plot:   v.GetString("plot"),
		Profiles: profiling.Paths{
			CPU:    v.GetString("cpu-profile"),
			Mem:    v.GetString("mem-profile"),
			Trace:  v.GetString("trace"),
			FgProf: v.GetString("fgprof-profile"),
		},
	}
	if cfg.Trials < 1 {
		return cfg, invalid("trials must be at least 1: %d", cfg.Trials)
	}
	return cfg, nil
}

// NewVote reads a VoteConfig from v. The positional argument, if any, is the input file.
func NewVote(v *viper.Viper, args []string) (VoteConfig, error) {
	eq, err := runner.ParseEquivalence(v.GetString("equivalence"))
	if err != nil {
		return VoteConfig{}, invalid("%v", err)
	}
	rf, err := newRedflag(v)
	if err != nil {
		return VoteConfig{}, err
	}
	cfg := VoteConfig{
		Input:       input(args),
		Margin:      v.GetInt("k"),
		MaxSamples:  v.GetInt("max-samples"),
		Equivalence: eq,
		Screen:      v.GetBool("screen"),
		Config:      rf,
	}
	return cfg, cfg.Validate()
}

// NewScreen reads a ScreenConfig from v. The positional argument, if any, is the input file.
func NewScreen(v *viper.Viper, args []string) (ScreenConfig, error) {
	rf, err := newRedflag(v)
	if err != nil {
		return ScreenConfig{}, err
	}
	return ScreenConfig{
		Input:   input(args),
		Config:  rf,
		Explain: v.GetBool("explain"),
	}, nil
}

func newRedflag(v *viper.Viper) (redflag.Config, error) {
	format, err := redflag.ParseFormat(v.GetString("format"))
	if err != nil {
		return redflag.Config{}, invalid("%v", err)
	}
	cfg := redflag.Config{
		MinTokens:           v.GetInt("min-tokens"),
		MaxTokens:           v.GetInt("max-tokens"),
		CharsPerToken:       v.GetFloat64("chars-per-token"),
		Format:              format,
		RequiredFields:      v.GetStringSlice("required-fields"),
		SkipHedging:         v.GetBool("skip-hedging"),
		SkipOffTopic:        v.GetBool("skip-off-topic"),
		SkipRepetition:      v.GetBool("skip-repetition"),
		RepetitionThreshold: v.GetFloat64("repetition-threshold"),
		Strict:              v.GetBool("strict"),
	}
	// catch bad settings before any input is read
	if _, err := redflag.New(cfg); err != nil {
		return redflag.Config{}, invalid("%v", err)
	}
	return cfg, nil
}

func input(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return ""
	}
	return args[0]
}
