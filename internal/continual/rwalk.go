package continual

import (
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// RWalk implements Riemannian walk, a fusion of online-Fisher EWC and
// path-integral importance.
//
// It keeps the same running Fisher estimate as EWC and the same
// per-parameter path credit ω as PI. On the Fisher commit cadence the
// path credit is converted into a Riemannian importance score
//
//	s += ω / (½·F·Δθ² + ξ)
//
// where Δθ is the parameter displacement since the last commit, and ω is
// reset. Steps are regularized by F plus the positive part of s.
type RWalk[B tensor.Backend] struct {
	decay       float32
	updateAfter int

	running Stats // online Fisher EMA
	tmp     Stats // squared gradients since the last commit
	omega   Stats // path credit since the last commit
	scores  Stats // accumulated Riemannian importance
	anchor  Stats // θ* from the last task boundary

	cadenceAnchor Stats // parameter values at the last commit

	initialized bool
}

// NewRWalk creates the Riemannian-walk strategy.
func NewRWalk[B tensor.Backend](decay float32, updateAfter int) *RWalk[B] {
	return &RWalk[B]{decay: decay, updateAfter: updateAfter}
}

// Name returns "rwalk".
func (r *RWalk[B]) Name() string { return MethodRWalk }

func (r *RWalk[B]) ensureState(l *Learner[B]) {
	if r.running == nil {
		r.running = l.ZeroStats()
		r.tmp = l.ZeroStats()
		r.omega = l.ZeroStats()
		r.scores = l.ZeroStats()
		r.anchor = l.ParamValues()
		r.cadenceAnchor = l.ParamValues()
	}
}

// importance combines the Fisher estimate with the clamped scores.
func (r *RWalk[B]) importance() Stats {
	imp := r.running.Clone()
	for i, vals := range imp {
		for j := range vals {
			if s := r.scores[i][j]; s > 0 {
				vals[j] += s
			}
		}
	}
	return imp
}

// TrainStep accumulates Fisher and path statistics around the regularized
// step, converting path credit into scores on the commit cadence.
func (r *RWalk[B]) TrainStep(l *Learner[B], batch *Batch[B]) (float32, error) {
	r.ensureState(l)

	loss, grads, err := l.Gradients(batch)
	if err != nil {
		return loss, err
	}
	taskGrads := l.GradStats(grads)

	// First step of the first task seeds the running estimate.
	if batch.Task == 0 && batch.Iter == 0 && !r.initialized {
		r.running.Zero()
		r.running.AddSquared(taskGrads)
		r.initialized = true
	}

	if (batch.Iter+1)%r.updateAfter == 0 {
		r.commit(l)
	}

	r.tmp.AddSquared(taskGrads)

	imp := r.importance()
	if err := l.AddRegGrads(grads, imp, r.anchor); err != nil {
		return loss, err
	}
	loss += l.RegPenalty(imp, r.anchor)

	before := l.ParamValues()
	l.Optimizer.Step(grads)
	after := l.ParamValues()

	// Same path credit as PI: ω += -g·Δθ.
	for i, vals := range r.omega {
		for j := range vals {
			vals[j] += -taskGrads[i][j] * (after[i][j] - before[i][j])
		}
	}

	return loss, nil
}

// commit converts the accumulated path credit into scores against the
// Fisher estimate as it stood over the walked path, then folds the
// temporary Fisher into the running EMA.
func (r *RWalk[B]) commit(l *Learner[B]) {
	current := l.ParamValues()
	for i, vals := range r.scores {
		for j := range vals {
			d := current[i][j] - r.cadenceAnchor[i][j]
			vals[j] += r.omega[i][j] / (0.5*r.running[i][j]*d*d + omegaDamping)
		}
	}
	r.omega.Zero()
	r.cadenceAnchor = current

	scale := (1 - r.decay) / float32(r.updateAfter)
	for i, vals := range r.running {
		for j := range vals {
			vals[j] = r.decay*vals[j] + scale*r.tmp[i][j]
		}
	}
	r.tmp.Zero()
}

// TaskBoundary refreshes the anchor parameters. Fisher and scores keep
// accumulating across tasks.
func (r *RWalk[B]) TaskBoundary(l *Learner[B], _ int, _ data.Dataset, _ []int) error {
	r.ensureState(l)
	r.anchor = l.ParamValues()
	return nil
}

// Reset clears all state for an independent run.
func (r *RWalk[B]) Reset() {
	r.running = nil
	r.tmp = nil
	r.omega = nil
	r.scores = nil
	r.anchor = nil
	r.cadenceAnchor = nil
	r.initialized = false
}
