package data

import "fmt"

// Task is one position in the task sequence: a contiguous slice of the
// global class space together with its train and test examples.
//
// Task label sets partition the global class space in order; once the
// sequencer has advanced past a task, its training data is only seen again
// through replay or episodic memory.
type Task struct {
	Index   int
	Classes []int
	Train   Dataset
	Test    Dataset
}

// SplitClasses partitions [0, totalClasses) into numTasks contiguous,
// equally sized label sets, in order.
//
// totalClasses must be divisible by numTasks.
func SplitClasses(totalClasses, numTasks int) ([][]int, error) {
	if numTasks <= 0 {
		return nil, fmt.Errorf("data.SplitClasses: num tasks must be positive, got %d", numTasks)
	}
	if totalClasses%numTasks != 0 {
		return nil, fmt.Errorf("data.SplitClasses: %d classes not divisible by %d tasks", totalClasses, numTasks)
	}

	perTask := totalClasses / numTasks
	splits := make([][]int, numTasks)
	for i := range splits {
		classes := make([]int, perTask)
		for j := range classes {
			classes[j] = i*perTask + j
		}
		splits[i] = classes
	}
	return splits, nil
}

// Provider supplies per-task train/test data and the global class-attribute
// matrix used for zero-shot transfer.
type Provider interface {
	// Load builds the task sequence for the given label partition.
	Load(taskClasses [][]int) ([]Task, *Attributes, error)
}
