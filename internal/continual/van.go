package continual

import (
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// Van is the vanilla baseline: plain gradient steps, no auxiliary state.
// It sets the floor against which the mitigation methods are measured.
type Van[B tensor.Backend] struct{}

// NewVan creates the baseline strategy.
func NewVan[B tensor.Backend]() *Van[B] {
	return &Van[B]{}
}

// Name returns "van".
func (v *Van[B]) Name() string { return MethodVan }

// TrainStep takes a plain gradient step on the task loss.
func (v *Van[B]) TrainStep(l *Learner[B], batch *Batch[B]) (float32, error) {
	loss, grads, err := l.Gradients(batch)
	if err != nil {
		return loss, err
	}
	l.Optimizer.Step(grads)
	return loss, nil
}

// TaskBoundary is a no-op for the baseline.
func (v *Van[B]) TaskBoundary(_ *Learner[B], _ int, _ data.Dataset, _ []int) error {
	return nil
}

// Reset is a no-op for the baseline.
func (v *Van[B]) Reset() {}
