package continual

import (
	"fmt"

	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// MAS implements memory-aware synapses.
//
// Parameter importance is estimated label-free at each task boundary: for
// batches of the finished task's training data, the gradient of the mean
// squared output norm ‖f(x)‖² is computed, and the mean absolute gradient
// is accumulated into the importance buffer. Training steps are
// regularized towards the boundary anchor weighted by that importance.
type MAS[B tensor.Backend] struct {
	attrs     *data.Attributes
	batchSize int

	omega  Stats
	anchor Stats
}

// NewMAS creates the memory-aware-synapses strategy. attrs is the global
// class-attribute matrix; importance passes use the finished task's masked
// view of it.
func NewMAS[B tensor.Backend](attrs *data.Attributes, batchSize int) *MAS[B] {
	return &MAS[B]{attrs: attrs, batchSize: batchSize}
}

// Name returns "mas".
func (m *MAS[B]) Name() string { return MethodMAS }

func (m *MAS[B]) ensureState(l *Learner[B]) {
	if m.omega == nil {
		m.omega = l.ZeroStats()
		m.anchor = l.ParamValues()
	}
}

// TrainStep takes a step on the task loss plus the importance penalty.
func (m *MAS[B]) TrainStep(l *Learner[B], batch *Batch[B]) (float32, error) {
	m.ensureState(l)

	loss, grads, err := l.Gradients(batch)
	if err != nil {
		return loss, err
	}

	if err := l.AddRegGrads(grads, m.omega, m.anchor); err != nil {
		return loss, err
	}
	loss += l.RegPenalty(m.omega, m.anchor)

	l.Optimizer.Step(grads)
	return loss, nil
}

// TaskBoundary runs the label-free importance pass over the finished
// task's training data and re-anchors.
func (m *MAS[B]) TaskBoundary(l *Learner[B], task int, train data.Dataset, classes []int) error {
	m.ensureState(l)

	attrs, err := data.AttrTensor(m.attrs.Masked(classes), l.Backend)
	if err != nil {
		return fmt.Errorf("mas: task %d boundary: %w", task, err)
	}

	l.Model.SetTraining(false)
	defer l.Model.SetTraining(true)

	taskOmega := l.ZeroStats()
	tape := l.Backend.Tape()

	batches := 0
	for offset := 0; offset+m.batchSize <= train.Len(); offset += m.batchSize {
		images, _, err := data.Batch(train, offset, m.batchSize, l.Backend)
		if err != nil {
			return fmt.Errorf("mas: task %d boundary: %w", task, err)
		}

		tape.Clear()
		tape.StartRecording()

		logits := l.Model.Forward(images, attrs)
		squared := logits.Mul(logits)

		// d/dθ of mean_b Σ_c logits², seeded by a 1/batch output
		// gradient so no reduction op needs a recorded backward.
		outputGrad, err := tensor.NewRaw(squared.Shape(), tensor.Float32, l.Backend.Device())
		if err != nil {
			tape.StopRecording()
			tape.Clear()
			return fmt.Errorf("mas: task %d boundary: %w", task, err)
		}
		seed := outputGrad.AsFloat32()
		for i := range seed {
			seed[i] = 1.0 / float32(m.batchSize)
		}

		grads := tape.Backward(outputGrad, l.Backend)
		tape.StopRecording()
		tape.Clear()

		gradStats := l.GradStats(grads)
		for i, vals := range taskOmega {
			for j := range vals {
				g := gradStats[i][j]
				if g < 0 {
					g = -g
				}
				vals[j] += g
			}
		}
		batches++
	}

	if batches > 0 {
		taskOmega.Scale(1 / float32(batches))
		m.omega.Add(taskOmega)
	}

	m.anchor = l.ParamValues()
	return nil
}

// Reset clears importance state for an independent run.
func (m *MAS[B]) Reset() {
	m.omega = nil
	m.anchor = nil
}
