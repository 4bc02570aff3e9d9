package experiment

import (
	"fmt"

	"github.com/born-ml/lifelong/internal/continual"
	"github.com/born-ml/lifelong/internal/data"
)

// evalChunkSize is the number of examples scored per forward pass during
// evaluation. The final chunk holds the exact remainder, so every example
// is scored exactly once.
const evalChunkSize = 10

// Evaluate scores the learner on every task seen so far and returns one
// accuracy per task.
//
// In cross-validation mode the train splits are scored instead of the
// test splits. Multi-head evaluation masks the attribute matrix down to
// each evaluated task's classes; single-head evaluation always scores
// against the full matrix, so the model must pick the right class among
// all of them. Evaluation mutates nothing: dropout is disabled and the
// tape never records.
func (e *Experiment[B]) Evaluate(learner *continual.Learner[B], tasksSeen int) ([]float32, error) {
	if tasksSeen < 1 || tasksSeen > len(e.tasks) {
		return nil, fmt.Errorf("experiment: evaluate %d tasks of %d", tasksSeen, len(e.tasks))
	}

	learner.Model.SetTraining(false)
	defer learner.Model.SetTraining(true)

	accuracies := make([]float32, tasksSeen)
	for t := 0; t < tasksSeen; t++ {
		task := e.tasks[t]

		split := task.Test
		if e.cfg.CrossValidate {
			split = task.Train
		}

		attrSource := e.attrs
		if !e.cfg.SingleHead {
			attrSource = e.attrs.Masked(task.Classes)
		}
		attrs, err := data.AttrTensor(attrSource, learner.Backend)
		if err != nil {
			return nil, err
		}

		correct := 0
		for offset := 0; offset < split.Len(); offset += evalChunkSize {
			size := evalChunkSize
			if offset+size > split.Len() {
				size = split.Len() - offset
			}

			images, _, err := data.Batch(split, offset, size, learner.Backend)
			if err != nil {
				return nil, err
			}

			logits := learner.Model.Forward(images, attrs)
			raw := logits.Raw().AsFloat32()
			numClasses := logits.Shape()[1]

			for i := 0; i < size; i++ {
				row := raw[i*numClasses : (i+1)*numClasses]
				best := 0
				for c := 1; c < numClasses; c++ {
					if row[c] > row[best] {
						best = c
					}
				}
				if int32(best) == split.Labels[offset+i] {
					correct++
				}
			}
		}

		if split.Len() > 0 {
			accuracies[t] = float32(correct) / float32(split.Len())
		}
	}
	return accuracies, nil
}
