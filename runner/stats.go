package runner

import "math"

// drawStats keeps a running mean and variance of the number of draws per step,
// using Welford's online algorithm.
type drawStats struct {
	mean  float64
	m2    float64
	count int
}

func (d *drawStats) update(draws int) {
	d.count++
	delta := float64(draws) - d.mean
	d.mean += delta / float64(d.count)
	d.m2 += delta * (float64(draws) - d.mean)
}

// get returns the mean and the sample standard deviation.
// The deviation is NaN for fewer than two steps.
func (d drawStats) get() (mean, stddev float64) {
	if d.count < 2 {
		return d.mean, math.NaN()
	}
	return d.mean, math.Sqrt(d.m2 / float64(d.count-1))
}
