package data

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lifelong/internal/tensor"
)

// Synthetic generates an attribute-driven classification problem without
// any files on disk: every class gets a binary attribute vector and its
// images are noisy linear projections of that vector into feature space.
//
// Because images are a function of class attributes, a model that learns
// the attribute embedding can score unseen classes from their attribute
// rows alone, which is exactly the zero-shot structure the experiments
// exercise. Useful for tests and for running the pipeline without a real
// dataset on disk.
type Synthetic struct {
	TotalClasses  int
	AttrDim       int
	Feature       tensor.Shape // per-example feature shape
	TrainPerClass int
	TestPerClass  int
	Noise         float32 // stddev of additive feature noise
	Seed          int64
}

// Load builds the task sequence for the given label partition.
//
// Generation is fully determined by Seed; two providers with the same
// configuration produce identical data.
func (s *Synthetic) Load(taskClasses [][]int) ([]Task, *Attributes, error) {
	if s.TotalClasses <= 0 || s.AttrDim <= 0 {
		return nil, nil, fmt.Errorf("data.Synthetic: classes and attribute dim must be positive")
	}
	if s.Feature.NumElements() <= 0 {
		return nil, nil, fmt.Errorf("data.Synthetic: empty feature shape")
	}

	rng := rand.New(rand.NewSource(s.Seed))
	featSize := s.Feature.NumElements()

	// Binary attribute vectors, one per class.
	attrValues := make([]float32, s.TotalClasses*s.AttrDim)
	for i := range attrValues {
		if rng.Float32() < 0.5 {
			attrValues[i] = 1.0
		}
	}
	attrs, err := NewAttributes(attrValues, s.TotalClasses, s.AttrDim)
	if err != nil {
		return nil, nil, err
	}

	// Fixed projection from attribute space to feature space.
	projection := make([]float32, featSize*s.AttrDim)
	for i := range projection {
		projection[i] = float32(rng.NormFloat64()) / float32(s.AttrDim)
	}

	prototype := func(class int) []float32 {
		attr := attrs.Row(class)
		proto := make([]float32, featSize)
		for i := 0; i < featSize; i++ {
			var sum float32
			row := projection[i*s.AttrDim : (i+1)*s.AttrDim]
			for j, a := range attr {
				sum += row[j] * a
			}
			proto[i] = sum
		}
		return proto
	}

	sample := func(classes []int, perClass int) Dataset {
		ds := Dataset{Feature: s.Feature}
		for _, class := range classes {
			proto := prototype(class)
			for n := 0; n < perClass; n++ {
				for _, p := range proto {
					ds.Images = append(ds.Images, p+s.Noise*float32(rng.NormFloat64()))
				}
				ds.Labels = append(ds.Labels, int32(class))
			}
		}
		return ds
	}

	tasks := make([]Task, len(taskClasses))
	for i, classes := range taskClasses {
		tasks[i] = Task{
			Index:   i,
			Classes: classes,
			Train:   sample(classes, s.TrainPerClass),
			Test:    sample(classes, s.TestPerClass),
		}
	}

	return tasks, attrs, nil
}
