package continual

import (
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// omegaDamping keeps the per-task importance normalization bounded when a
// parameter barely moved during a task.
const omegaDamping = 0.1

// PI implements path integral / synaptic intelligence.
//
// During a task, each step accumulates the per-parameter contribution to
// the loss decrease: ω += -g·Δθ, where g is the task-loss gradient and Δθ
// the parameter displacement the step caused. At the task boundary the
// short-horizon ω is converted into the long-horizon importance
//
//	Ω += ω / ((θ - θ_task_start)² + ξ)
//
// and steps in later tasks are regularized towards the boundary anchor
// weighted by Ω.
type PI[B tensor.Backend] struct {
	omega     Stats // short-horizon, reset each task
	bigOmega  Stats // accumulated importance
	anchor    Stats // θ* from the last boundary, also the task-start reference
	taskStart Stats
}

// NewPI creates the path-integral strategy.
func NewPI[B tensor.Backend]() *PI[B] {
	return &PI[B]{}
}

// Name returns "pi".
func (p *PI[B]) Name() string { return MethodPI }

func (p *PI[B]) ensureState(l *Learner[B]) {
	if p.omega == nil {
		p.omega = l.ZeroStats()
		p.bigOmega = l.ZeroStats()
		p.anchor = l.ParamValues()
		p.taskStart = l.ParamValues()
	}
}

// TrainStep snapshots the parameters, takes the regularized step, then
// credits the displacement against the pre-step gradient.
func (p *PI[B]) TrainStep(l *Learner[B], batch *Batch[B]) (float32, error) {
	p.ensureState(l)

	loss, grads, err := l.Gradients(batch)
	if err != nil {
		return loss, err
	}

	// The omega update uses the raw task-loss gradient, not the
	// regularized one, so copy before the penalty is mixed in.
	taskGrads := l.GradStats(grads)

	if err := l.AddRegGrads(grads, p.bigOmega, p.anchor); err != nil {
		return loss, err
	}
	loss += l.RegPenalty(p.bigOmega, p.anchor)

	before := l.ParamValues()
	l.Optimizer.Step(grads)
	after := l.ParamValues()

	// ω += -g·Δθ: positive whenever the step moved against the gradient.
	for i, vals := range p.omega {
		for j := range vals {
			vals[j] += -taskGrads[i][j] * (after[i][j] - before[i][j])
		}
	}

	return loss, nil
}

// TaskBoundary folds the short-horizon ω into the accumulated importance,
// normalized by the squared task displacement, and re-anchors.
func (p *PI[B]) TaskBoundary(l *Learner[B], _ int, _ data.Dataset, _ []int) error {
	p.ensureState(l)

	current := l.ParamValues()
	for i, vals := range p.bigOmega {
		for j := range vals {
			d := current[i][j] - p.taskStart[i][j]
			contribution := p.omega[i][j] / (d*d + omegaDamping)
			if contribution > 0 {
				vals[j] += contribution
			}
		}
	}

	p.omega.Zero()
	p.anchor = current
	p.taskStart = current.Clone()
	return nil
}

// Reset clears all path-integral state for an independent run.
func (p *PI[B]) Reset() {
	p.omega = nil
	p.bigOmega = nil
	p.anchor = nil
	p.taskStart = nil
}
