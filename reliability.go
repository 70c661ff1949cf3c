package maker

import "math"

// ReliabilityParameters describe a multi-step task that is to be sized.
type ReliabilityParameters struct {
	// TotalSteps is the number of steps in the task.
	TotalSteps int
	// PerStepAccuracy is the probability that a single sample is correct.
	// It must be in (0.5, 1): voting cannot amplify a coin flip.
	PerStepAccuracy float64
	// TargetSuccessRate is the desired probability that every step is decided correctly.
	TargetSuccessRate float64
}

// DefaultReliabilityParameters returns parameters for a task with the given number of steps,
// 80% per-step accuracy and a 99% target success rate.
func DefaultReliabilityParameters(totalSteps int) ReliabilityParameters {
	return ReliabilityParameters{
		TotalSteps:        totalSteps,
		PerStepAccuracy:   0.8,
		TargetSuccessRate: 0.99,
	}
}

// Validate returns ErrInvalidArgument if the parameters are out of range.
func (p ReliabilityParameters) Validate() error {
	if p.TotalSteps < 1 {
		return invalidArgument("total steps must be at least 1, got %d", p.TotalSteps)
	}
	if err := checkAccuracy(p.PerStepAccuracy); err != nil {
		return err
	}
	if p.PerStepAccuracy >= 1 {
		return invalidArgument("per-step accuracy must be less than 1, got %v", p.PerStepAccuracy)
	}
	if !(p.TargetSuccessRate > 0 && p.TargetSuccessRate < 1) {
		return invalidArgument("target success rate must be in (0, 1), got %v", p.TargetSuccessRate)
	}
	return nil
}

func checkAccuracy(p float64) error {
	if !(p > 0.5) {
		return invalidArgument("per-step accuracy must be greater than 0.5 for voting to help, got %v", p)
	}
	return nil
}

// RequiredK returns the smallest margin k such that a task of TotalSteps independent steps
// succeeds with probability at least TargetSuccessRate.
//
// Each step's vote is a biased random walk where the correct answer gains on its strongest
// competitor with probability p. The step is decided wrongly with probability at most
// ((1-p)/p)^k, so the task needs
//
//	k >= ln(ε) / ln((1-p)/p),  where  ε = 1 - t^(1/s).
//
// The result is at least 1 and grows logarithmically with the number of steps.
func RequiredK(params ReliabilityParameters) (int, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	p := params.PerStepAccuracy
	// 1 - t^(1/s), computed without cancellation for large s
	eps := -math.Expm1(math.Log(params.TargetSuccessRate) / float64(params.TotalSteps))
	k := math.Ceil(math.Log(eps) / math.Log((1-p)/p))
	if k < 1 {
		return 1, nil
	}
	return int(k), nil
}

// StepErrorBound returns ((1-p)/p)^k, the bound on the probability that a single
// step is decided wrongly with margin k and per-step accuracy p.
func StepErrorBound(p float64, k int) float64 {
	return math.Pow((1-p)/p, float64(k))
}

// SuccessProbability returns the probability that all of the given number of steps
// are decided correctly, using StepErrorBound for each step.
func SuccessProbability(totalSteps int, p float64, k int) float64 {
	return math.Exp(float64(totalSteps) * math.Log1p(-StepErrorBound(p, k)))
}
