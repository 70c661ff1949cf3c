package maker

// CostEstimate is the expected sampling cost of a run.
type CostEstimate struct {
	ExpectedSamplesPerStep float64 `json:"expected_samples_per_step"`
	ExpectedTotalSamples   float64 `json:"expected_total_samples"`
	ExpectedTotalCost      float64 `json:"expected_total_cost"`
}

// EstimateCost returns the expected number of samples, and their cost, for running
// totalSteps steps with margin k when each sample is correct with probability p.
//
// A biased random walk that moves up with probability p needs about k/(2p-1) trials
// to reach a lead of k. This is a first-order approximation that ignores competitors
// other than the strongest one, so it is only meaningful for p > 0.5.
func EstimateCost(totalSteps, k int, p, costPerCall float64) (CostEstimate, error) {
	if totalSteps < 1 {
		return CostEstimate{}, invalidArgument("total steps must be at least 1, got %d", totalSteps)
	}
	if k < 1 {
		return CostEstimate{}, invalidArgument("margin k must be at least 1, got %d", k)
	}
	if err := checkAccuracy(p); err != nil {
		return CostEstimate{}, err
	}
	if p > 1 {
		return CostEstimate{}, invalidArgument("per-step accuracy must be at most 1, got %v", p)
	}
	if costPerCall < 0 {
		return CostEstimate{}, invalidArgument("cost per call must not be negative, got %v", costPerCall)
	}
	perStep := float64(k) / (2*p - 1)
	total := float64(totalSteps) * perStep
	return CostEstimate{
		ExpectedSamplesPerStep: perStep,
		ExpectedTotalSamples:   total,
		ExpectedTotalCost:      total * costPerCall,
	}, nil
}
