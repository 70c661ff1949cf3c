// Package plotting renders how the voting margin and the sampling cost grow
// with the number of steps in a task.
package plotting

import (
	"fmt"
	"image/color"
	"math"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/relab/maker"
)

// pointsPerDecade is the number of step counts sampled between powers of ten.
const pointsPerDecade = 4

// Series is one labelled line of a plot.
type Series struct {
	Label  string
	Points plotter.XYs
}

// stepCounts returns step counts spread evenly on a log scale from 10^minExp to 10^maxExp.
func stepCounts(minExp, maxExp int) []int {
	var steps []int
	last := 0
	for i := minExp * pointsPerDecade; i <= maxExp*pointsPerDecade; i++ {
		s := int(math.Round(math.Pow(10, float64(i)/pointsPerDecade)))
		if s > last {
			steps = append(steps, s)
			last = s
		}
	}
	return steps
}

func checkRange(minExp, maxExp int) error {
	if minExp < 0 || maxExp < minExp || maxExp > 12 {
		return fmt.Errorf("invalid range of powers of ten: [%d, %d]", minExp, maxExp)
	}
	return nil
}

// KScalingPlot shows the margin k required to complete tasks of growing length
// with a fixed success rate, for several per-step accuracies.
type KScalingPlot struct {
	Target     float64
	Accuracies []float64
	MinExp     int
	MaxExp     int
}

// NewKScalingPlot returns a plot for task lengths from 10 to 10^6 steps.
func NewKScalingPlot(target float64, accuracies ...float64) KScalingPlot {
	return KScalingPlot{Target: target, Accuracies: accuracies, MinExp: 1, MaxExp: 6}
}

// Series returns one line per accuracy, with log10 of the step count on the x axis.
func (p KScalingPlot) Series() ([]Series, error) {
	if err := checkRange(p.MinExp, p.MaxExp); err != nil {
		return nil, err
	}
	steps := stepCounts(p.MinExp, p.MaxExp)
	series := make([]Series, 0, len(p.Accuracies))
	for _, acc := range p.Accuracies {
		s := Series{Label: fmt.Sprintf("p=%v", acc), Points: make(plotter.XYs, len(steps))}
		for i, n := range steps {
			k, err := maker.RequiredK(maker.ReliabilityParameters{
				TotalSteps:        n,
				PerStepAccuracy:   acc,
				TargetSuccessRate: p.Target,
			})
			if err != nil {
				return nil, err
			}
			s.Points[i].X = math.Log10(float64(n))
			s.Points[i].Y = float64(k)
		}
		series = append(series, s)
	}
	return series, nil
}

// Save renders the plot to filename. The format is chosen from the file extension.
func (p KScalingPlot) Save(filename string) error {
	series, err := p.Series()
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Required margin for a %v success rate", p.Target)
	return save(filename, title, "log10(steps)", "k", series)
}

// CostPlot compares the expected number of samples of a voting agent, using the
// smallest sufficient k for each task length, with one sample per step.
type CostPlot struct {
	Accuracy float64
	Target   float64
	MinExp   int
	MaxExp   int
}

// NewCostPlot returns a plot for task lengths from 10 to 10^6 steps.
func NewCostPlot(accuracy, target float64) CostPlot {
	return CostPlot{Accuracy: accuracy, Target: target, MinExp: 1, MaxExp: 6}
}

// Series returns the voting and the single sample lines, both on log10 scales.
func (p CostPlot) Series() ([]Series, error) {
	if err := checkRange(p.MinExp, p.MaxExp); err != nil {
		return nil, err
	}
	steps := stepCounts(p.MinExp, p.MaxExp)
	voting := Series{Label: "voting", Points: make(plotter.XYs, len(steps))}
	single := Series{Label: "single sample", Points: make(plotter.XYs, len(steps))}
	for i, n := range steps {
		params := maker.ReliabilityParameters{TotalSteps: n, PerStepAccuracy: p.Accuracy, TargetSuccessRate: p.Target}
		k, err := maker.RequiredK(params)
		if err != nil {
			return nil, err
		}
		est, err := maker.EstimateCost(n, k, p.Accuracy, 1)
		if err != nil {
			return nil, err
		}
		x := math.Log10(float64(n))
		voting.Points[i] = plotter.XY{X: x, Y: math.Log10(est.ExpectedTotalSamples)}
		single.Points[i] = plotter.XY{X: x, Y: x}
	}
	return []Series{voting, single}, nil
}

// Save renders the plot to filename. The format is chosen from the file extension.
func (p CostPlot) Save(filename string) error {
	series, err := p.Series()
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Expected samples at p=%v", p.Accuracy)
	return save(filename, title, "log10(steps)", "log10(samples)", series)
}

func save(filename, title, xlabel, ylabel string, series []Series) error {
	plt := plot.New()
	plt.Title.Text = title

	grid := plotter.NewGrid()
	grid.Horizontal.Color = color.Gray{Y: 200}
	grid.Horizontal.Dashes = plotutil.Dashes(2)
	grid.Vertical.Color = color.Gray{Y: 200}
	grid.Vertical.Dashes = plotutil.Dashes(2)
	plt.Add(grid)

	plt.X.Label.Text = xlabel
	plt.X.Tick.Marker = hplot.Ticks{N: 10}
	plt.Y.Label.Text = ylabel
	plt.Y.Tick.Marker = hplot.Ticks{N: 10}
	plt.Legend.Top = true
	plt.Legend.Left = true

	lines := make([]interface{}, 0, 2*len(series))
	for _, s := range series {
		lines = append(lines, s.Label, s.Points)
	}
	if err := plotutil.AddLinePoints(plt, lines...); err != nil {
		return fmt.Errorf("failed to add line plot: %w", err)
	}

	if err := plt.Save(6*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
