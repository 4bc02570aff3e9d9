package data

import (
	"math/rand"
)

// SampleForEachClass draws up to perClass examples uniformly at random for
// each of the given classes and returns them as one Dataset.
//
// Classes with fewer than perClass examples contribute everything they
// have. Used both for GEM episodic memories and for the replay buffer.
func SampleForEachClass(d Dataset, classes []int, perClass int, rng *rand.Rand) Dataset {
	byClass := make(map[int32][]int)
	for i, label := range d.Labels {
		byClass[label] = append(byClass[label], i)
	}

	fs := d.FeatureSize()
	out := Dataset{Feature: d.Feature}

	for _, class := range classes {
		indices := byClass[int32(class)]
		if len(indices) == 0 {
			continue
		}

		picked := indices
		if len(indices) > perClass {
			perm := rng.Perm(len(indices))
			picked = make([]int, perClass)
			for j := 0; j < perClass; j++ {
				picked[j] = indices[perm[j]]
			}
		}

		for _, i := range picked {
			out.Images = append(out.Images, d.Images[i*fs:(i+1)*fs]...)
			out.Labels = append(out.Labels, d.Labels[i])
		}
	}

	return out
}

// ReplayBuffer is an accumulating pool of examples from completed tasks,
// bounded by a per-class sample budget.
//
// It grows monotonically: task boundaries append samples of the finished
// task and nothing is ever evicted. The buffer is concatenated with the
// next task's training data when sampling mode is enabled.
type ReplayBuffer struct {
	pool     Dataset
	perClass int
}

// NewReplayBuffer creates an empty buffer with the given per-class budget.
func NewReplayBuffer(perClass int) *ReplayBuffer {
	return &ReplayBuffer{perClass: perClass}
}

// Add samples perClass examples per class of a finished task's training
// data and appends them to the pool.
func (r *ReplayBuffer) Add(train Dataset, classes []int, rng *rand.Rand) {
	sampled := SampleForEachClass(train, classes, r.perClass, rng)
	r.pool = Concat(r.pool, sampled)
}

// Data returns the accumulated pool.
func (r *ReplayBuffer) Data() Dataset {
	return r.pool
}

// Len returns the number of pooled examples.
func (r *ReplayBuffer) Len() int {
	return r.pool.Len()
}
