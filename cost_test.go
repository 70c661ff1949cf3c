package maker

import (
	"errors"
	"math"
	"testing"
)

func TestEstimateCost(t *testing.T) {
	got, err := EstimateCost(1_000_000, 14, 0.8, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	// 14 / (2*0.8 - 1) = 23.33 samples per step
	if want := 14 / 0.6; math.Abs(got.ExpectedSamplesPerStep-want) > 1e-9 {
		t.Errorf("ExpectedSamplesPerStep = %v; want %v", got.ExpectedSamplesPerStep, want)
	}
	if want := 1_000_000 * 14 / 0.6; math.Abs(got.ExpectedTotalSamples-want) > 1e-3 {
		t.Errorf("ExpectedTotalSamples = %v; want %v", got.ExpectedTotalSamples, want)
	}
	if got.ExpectedTotalCost != got.ExpectedTotalSamples {
		t.Errorf("ExpectedTotalCost = %v; want %v with unit cost", got.ExpectedTotalCost, got.ExpectedTotalSamples)
	}

	priced, err := EstimateCost(1_000_000, 14, 0.8, 0.002)
	if err != nil {
		t.Fatal(err)
	}
	if want := got.ExpectedTotalSamples * 0.002; math.Abs(priced.ExpectedTotalCost-want) > 1e-6 {
		t.Errorf("ExpectedTotalCost = %v; want %v", priced.ExpectedTotalCost, want)
	}
}

func TestEstimateCostStrictlyIncreasingInK(t *testing.T) {
	for _, p := range []float64{0.55, 0.8, 0.99, 1} {
		prev := 0.0
		for k := 1; k <= 30; k++ {
			est, err := EstimateCost(100, k, p, 1)
			if err != nil {
				t.Fatal(err)
			}
			if est.ExpectedTotalCost <= prev {
				t.Errorf("p=%v: cost for k=%d is %v; want more than %v", p, k, est.ExpectedTotalCost, prev)
			}
			prev = est.ExpectedTotalCost
		}
	}
}

func TestEstimateCostLinearInSteps(t *testing.T) {
	small, err := EstimateCost(100, 7, 0.8, 1)
	if err != nil {
		t.Fatal(err)
	}
	large, err := EstimateCost(1000, 7, 0.8, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ratio := large.ExpectedTotalCost / small.ExpectedTotalCost; math.Abs(ratio-10) > 1e-9 {
		t.Errorf("cost ratio between 1000 and 100 steps = %v; want 10", ratio)
	}
	if large.ExpectedSamplesPerStep != small.ExpectedSamplesPerStep {
		t.Errorf("samples per step changed with the number of steps: %v != %v", large.ExpectedSamplesPerStep, small.ExpectedSamplesPerStep)
	}
}

func TestEstimateCostInvalidArgument(t *testing.T) {
	tests := []struct {
		steps, k int
		p, cost  float64
	}{
		{steps: 0, k: 3, p: 0.8, cost: 1},
		{steps: 10, k: 0, p: 0.8, cost: 1},
		{steps: 10, k: 3, p: 0.5, cost: 1},
		{steps: 10, k: 3, p: 1.5, cost: 1},
		{steps: 10, k: 3, p: 0.8, cost: -1},
	}
	for _, tt := range tests {
		if _, err := EstimateCost(tt.steps, tt.k, tt.p, tt.cost); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("EstimateCost(%d, %d, %v, %v): got error %v; want %v", tt.steps, tt.k, tt.p, tt.cost, err, ErrInvalidArgument)
		}
	}
}
