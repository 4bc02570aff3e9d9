// Package continual implements catastrophic-forgetting mitigation
// strategies for task-sequential training.
//
// Each strategy owns its importance/memory state and drives the shared
// Learner: a bundle of zero-shot classifier, autodiff backend and
// optimizer. Strategies differ only in what they do around the plain
// gradient step (Fisher accumulation, path-integral bookkeeping, episodic
// gradient projection), so the task sequencer dispatches every training
// step and task boundary through the Strategy interface.
package continual

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/lifelong/internal/autodiff"
	"github.com/born-ml/lifelong/internal/model"
	"github.com/born-ml/lifelong/internal/nn"
	"github.com/born-ml/lifelong/internal/optim"
	"github.com/born-ml/lifelong/internal/tensor"
)

// ErrNonFiniteLoss marks a diverged training step. A run that hits this is
// not salvageable: the error propagates to the top level and terminates
// the experiment before the next iteration executes.
var ErrNonFiniteLoss = errors.New("non-finite training loss")

// Learner bundles the model, autodiff backend and optimizer for one run.
//
// Runs never share a Learner: parallel runs each construct their own so
// parameters, tape and optimizer state stay independent.
type Learner[B tensor.Backend] struct {
	Backend   *autodiff.AutodiffBackend[B]
	Model     *model.ZeroShot[*autodiff.AutodiffBackend[B]]
	Optimizer optim.Optimizer
	Lambda    float32 // synaptic strength for importance regularization
}

// Batch is one training step's inputs.
type Batch[B tensor.Backend] struct {
	Images  *tensor.Tensor[float32, *autodiff.AutodiffBackend[B]]
	Labels  *tensor.Tensor[int32, *autodiff.AutodiffBackend[B]]
	Attrs   *tensor.Tensor[float32, *autodiff.AutodiffBackend[B]] // masked class-attribute matrix
	Weights *tensor.RawTensor                                     // per-example sample weights [batch]
	Task    int                                                   // current task index
	Iter    int                                                   // iteration within the task
	Iters   int                                                   // total iterations for the task
}

// Gradients runs forward + weighted cross-entropy + backward for a batch
// and returns the loss value with the gradient map.
//
// Returns ErrNonFiniteLoss (wrapped) if the loss is NaN or infinite; the
// caller must treat that as fatal for the run.
func (l *Learner[B]) Gradients(batch *Batch[B]) (float32, map[*tensor.RawTensor]*tensor.RawTensor, error) {
	tape := l.Backend.Tape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	logits := l.Model.Forward(batch.Images, batch.Attrs)
	lossRaw := l.Backend.WeightedCrossEntropy(logits.Raw(), batch.Labels.Raw(), batch.Weights)
	lossValue := lossRaw.AsFloat32()[0]

	if math.IsNaN(float64(lossValue)) || math.IsInf(float64(lossValue), 0) {
		return lossValue, nil, fmt.Errorf("%w: task %d iteration %d", ErrNonFiniteLoss, batch.Task, batch.Iter)
	}

	outputGrad, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, l.Backend.Device())
	if err != nil {
		return lossValue, nil, err
	}
	outputGrad.AsFloat32()[0] = 1.0

	grads := tape.Backward(outputGrad, l.Backend)
	return lossValue, grads, nil
}

// Params returns the model's trainable parameters in a stable order.
func (l *Learner[B]) Params() []*nn.Parameter[*autodiff.AutodiffBackend[B]] {
	return l.Model.Parameters()
}

// ZeroStats allocates a zeroed per-parameter statistics buffer matching
// the model's parameter shapes.
func (l *Learner[B]) ZeroStats() Stats {
	params := l.Params()
	stats := make(Stats, len(params))
	for i, p := range params {
		stats[i] = make([]float32, p.Tensor().NumElements())
	}
	return stats
}

// ParamValues copies the current parameter values into a Stats buffer.
func (l *Learner[B]) ParamValues() Stats {
	params := l.Params()
	values := make(Stats, len(params))
	for i, p := range params {
		src := p.Tensor().Raw().AsFloat32()
		values[i] = make([]float32, len(src))
		copy(values[i], src)
	}
	return values
}

// RestoreParams writes a ParamValues snapshot back into the model.
func (l *Learner[B]) RestoreParams(snapshot Stats) {
	params := l.Params()
	if len(snapshot) != len(params) {
		panic(fmt.Sprintf("continual: snapshot has %d entries for %d parameters", len(snapshot), len(params)))
	}
	for i, p := range params {
		copy(p.Tensor().Raw().AsFloat32(), snapshot[i])
	}
}

// GradStats copies the gradient of each parameter out of a gradient map,
// in parameter order. Parameters without a gradient get zeros.
func (l *Learner[B]) GradStats(grads map[*tensor.RawTensor]*tensor.RawTensor) Stats {
	params := l.Params()
	stats := make(Stats, len(params))
	for i, p := range params {
		stats[i] = make([]float32, p.Tensor().NumElements())
		if g, ok := grads[p.Tensor().Raw()]; ok {
			copy(stats[i], g.AsFloat32())
		}
	}
	return stats
}

// GradsFromStats builds a gradient map (as Tape.Backward would return)
// from a per-parameter statistics buffer.
func (l *Learner[B]) GradsFromStats(stats Stats) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	params := l.Params()
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor, len(params))
	for i, p := range params {
		raw, err := tensor.NewRaw(p.Tensor().Shape(), tensor.Float32, l.Backend.Device())
		if err != nil {
			return nil, err
		}
		copy(raw.AsFloat32(), stats[i])
		grads[p.Tensor().Raw()] = raw
	}
	return grads, nil
}

// AddRegGrads adds the importance-penalty gradient 2λ·Ω·(θ-θ*) to each
// parameter's gradient in place. Parameters missing from the map are
// given a fresh gradient holding only the penalty term.
func (l *Learner[B]) AddRegGrads(grads map[*tensor.RawTensor]*tensor.RawTensor, importance, anchor Stats) error {
	for i, p := range l.Params() {
		theta := p.Tensor().Raw().AsFloat32()

		g, ok := grads[p.Tensor().Raw()]
		if !ok {
			raw, err := tensor.NewRaw(p.Tensor().Shape(), tensor.Float32, l.Backend.Device())
			if err != nil {
				return err
			}
			grads[p.Tensor().Raw()] = raw
			g = raw
		}

		gData := g.AsFloat32()
		for j := range gData {
			gData[j] += 2 * l.Lambda * importance[i][j] * (theta[j] - anchor[i][j])
		}
	}
	return nil
}

// RegPenalty returns the current value of the importance penalty
// λ·Σ Ω·(θ-θ*)², for regularized-loss reporting.
func (l *Learner[B]) RegPenalty(importance, anchor Stats) float32 {
	var penalty float64
	for i, p := range l.Params() {
		theta := p.Tensor().Raw().AsFloat32()
		for j := range theta {
			d := float64(theta[j] - anchor[i][j])
			penalty += float64(importance[i][j]) * d * d
		}
	}
	return l.Lambda * float32(penalty)
}

// WeightsTensor materializes per-example sample weights as a raw tensor.
func WeightsTensor(weights []float32, device tensor.Device) (*tensor.RawTensor, error) {
	raw, err := tensor.NewRaw(tensor.Shape{len(weights)}, tensor.Float32, device)
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat32(), weights)
	return raw, nil
}

// UniformWeightsTensor is WeightsTensor with every weight set to 1.
func UniformWeightsTensor(n int, device tensor.Device) (*tensor.RawTensor, error) {
	raw, err := tensor.NewRaw(tensor.Shape{n}, tensor.Float32, device)
	if err != nil {
		return nil, err
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = 1.0
	}
	return raw, nil
}
