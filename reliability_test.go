package maker

import (
	"errors"
	"math"
	"testing"

	"github.com/relab/maker/internal/test"
)

func TestRequiredK(t *testing.T) {
	tests := []struct {
		steps    int
		accuracy float64
		target   float64
		want     int
	}{
		{steps: 1, accuracy: 0.99, target: 0.9, want: 1},
		{steps: 1, accuracy: 0.9, target: 0.5, want: 1},
		// ε = 0.01 is just above the single-vote error rate 1/99
		{steps: 1, accuracy: 0.99, target: 0.99, want: 2},
		{steps: 100, accuracy: 0.8, target: 0.99, want: 7},
		{steps: 1_000, accuracy: 0.8, target: 0.99, want: 9},
		{steps: 10_000, accuracy: 0.8, target: 0.99, want: 10},
		{steps: 100_000, accuracy: 0.8, target: 0.99, want: 12},
		// ln(1.005e-8) / ln(0.25) = 13.28
		{steps: 1_000_000, accuracy: 0.8, target: 0.99, want: 14},
		{steps: 1_000_000, accuracy: 0.99, target: 0.99, want: 5},
	}
	for _, tt := range tests {
		t.Run(test.Name([]string{"steps", "p", "t"}, tt.steps, tt.accuracy, tt.target), func(t *testing.T) {
			got, err := RequiredK(ReliabilityParameters{tt.steps, tt.accuracy, tt.target})
			if err != nil {
				t.Fatalf("RequiredK() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RequiredK() = %d; want %d", got, tt.want)
			}
			// the margin must actually reach the target, and one less must not
			if p := SuccessProbability(tt.steps, tt.accuracy, got); p < tt.target {
				t.Errorf("SuccessProbability(k=%d) = %v; want at least %v", got, p, tt.target)
			}
			if got > 1 {
				if p := SuccessProbability(tt.steps, tt.accuracy, got-1); p >= tt.target {
					t.Errorf("SuccessProbability(k=%d) = %v; want less than %v", got-1, p, tt.target)
				}
			}
		})
	}
}

func TestRequiredKInvalidArgument(t *testing.T) {
	tests := []ReliabilityParameters{
		{TotalSteps: 100, PerStepAccuracy: 0.5, TargetSuccessRate: 0.99},
		{TotalSteps: 100, PerStepAccuracy: 0.3, TargetSuccessRate: 0.99},
		{TotalSteps: 100, PerStepAccuracy: 1, TargetSuccessRate: 0.99},
		{TotalSteps: 100, PerStepAccuracy: math.NaN(), TargetSuccessRate: 0.99},
		{TotalSteps: 0, PerStepAccuracy: 0.8, TargetSuccessRate: 0.99},
		{TotalSteps: -5, PerStepAccuracy: 0.8, TargetSuccessRate: 0.99},
		{TotalSteps: 100, PerStepAccuracy: 0.8, TargetSuccessRate: 0},
		{TotalSteps: 100, PerStepAccuracy: 0.8, TargetSuccessRate: 1},
	}
	for _, params := range tests {
		if _, err := RequiredK(params); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("RequiredK(%+v): got error %v; want %v", params, err, ErrInvalidArgument)
		}
	}
}

func TestRequiredKMonotonic(t *testing.T) {
	accuracies := []float64{0.51, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 0.999}
	steps := []int{1, 2, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000}
	targets := []float64{0.5, 0.9, 0.99, 0.999}

	for _, target := range targets {
		for _, p := range accuracies {
			prev := 0
			for _, s := range steps {
				k, err := RequiredK(ReliabilityParameters{s, p, target})
				if err != nil {
					t.Fatal(err)
				}
				if k < 1 {
					t.Fatalf("RequiredK(%d, %v, %v) = %d; want at least 1", s, p, target, k)
				}
				if k < prev {
					t.Errorf("RequiredK decreased from %d to %d when steps grew to %d (p=%v, t=%v)", prev, k, s, p, target)
				}
				prev = k
			}
		}
		for _, s := range steps {
			prev := math.MaxInt
			for _, p := range accuracies {
				k, err := RequiredK(ReliabilityParameters{s, p, target})
				if err != nil {
					t.Fatal(err)
				}
				if k > prev {
					t.Errorf("RequiredK increased from %d to %d when accuracy grew to %v (s=%d, t=%v)", prev, k, p, s, target)
				}
				prev = k
			}
		}
	}
}

func TestDefaultReliabilityParameters(t *testing.T) {
	params := DefaultReliabilityParameters(100)
	if params.PerStepAccuracy != 0.8 || params.TargetSuccessRate != 0.99 || params.TotalSteps != 100 {
		t.Errorf("DefaultReliabilityParameters(100) = %+v", params)
	}
	if err := params.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestStepErrorBound(t *testing.T) {
	if got := StepErrorBound(0.8, 2); math.Abs(got-0.0625) > 1e-12 {
		t.Errorf("StepErrorBound(0.8, 2) = %v; want 0.0625", got)
	}
	if got := SuccessProbability(1, 0.8, 1); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("SuccessProbability(1, 0.8, 1) = %v; want 0.75", got)
	}
}
