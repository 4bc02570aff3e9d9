package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// AccuracyRecord aggregates evaluation accuracies across independent runs.
//
// Indexing is [run][taskTrained][taskEvaluated]: after training task t,
// the evaluator scores every task seen so far, so row t has t+1 entries
// (a lower-triangular layout).
type AccuracyRecord struct {
	runs [][][]float32
}

// AddRun appends one run's lower-triangular accuracy matrix.
func (r *AccuracyRecord) AddRun(accuracies [][]float32) {
	r.runs = append(r.runs, accuracies)
}

// NumRuns returns the number of recorded runs.
func (r *AccuracyRecord) NumRuns() int {
	return len(r.runs)
}

// Run returns one run's accuracy matrix.
func (r *AccuracyRecord) Run(i int) [][]float32 {
	return r.runs[i]
}

// cell collects one [taskTrained][taskEvaluated] cell across runs.
func (r *AccuracyRecord) cell(trained, evaluated int) []float64 {
	values := make([]float64, len(r.runs))
	for i, run := range r.runs {
		values[i] = float64(run[trained][evaluated])
	}
	return values
}

// Mean returns the per-cell mean accuracy across runs.
func (r *AccuracyRecord) Mean() [][]float64 {
	return r.aggregate(func(values []float64) float64 {
		return stat.Mean(values, nil)
	})
}

// Std returns the per-cell population standard deviation across runs.
func (r *AccuracyRecord) Std() [][]float64 {
	return r.aggregate(func(values []float64) float64 {
		return stat.PopStdDev(values, nil)
	})
}

func (r *AccuracyRecord) aggregate(f func([]float64) float64) [][]float64 {
	if len(r.runs) == 0 {
		return nil
	}
	out := make([][]float64, len(r.runs[0]))
	for trained := range out {
		out[trained] = make([]float64, len(r.runs[0][trained]))
		for evaluated := range out[trained] {
			out[trained][evaluated] = f(r.cell(trained, evaluated))
		}
	}
	return out
}

// FinalMean returns the mean (across runs) of the average accuracy over
// all tasks after the final task was trained. This is the headline number
// of an experiment.
func (r *AccuracyRecord) FinalMean() (float64, error) {
	if len(r.runs) == 0 {
		return 0, fmt.Errorf("experiment: no runs recorded")
	}

	perRun := make([]float64, len(r.runs))
	for i, run := range r.runs {
		if len(run) == 0 {
			return 0, fmt.Errorf("experiment: run %d recorded no tasks", i)
		}
		final := run[len(run)-1]
		values := make([]float64, len(final))
		for j, acc := range final {
			values[j] = float64(acc)
		}
		perRun[i] = stat.Mean(values, nil)
	}
	return stat.Mean(perRun, nil), nil
}
