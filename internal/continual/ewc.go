package continual

import (
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// EWC implements elastic weight consolidation with an online (exponential
// moving average) Fisher estimate.
//
// Every step the squared batch gradient is accumulated into a temporary
// Fisher buffer; every fisherUpdateAfter steps the temporary buffer is
// committed into the running estimate:
//
//	F = decay·F + (1-decay)/updateAfter · tmp
//
// and the temporary buffer is reset. The very first step of the very
// first task initializes the running estimate from that batch's squared
// gradient, exactly once per run. Steps are regularized towards the
// anchor parameters saved at the last task boundary, weighted by F.
type EWC[B tensor.Backend] struct {
	decay       float32
	updateAfter int

	running Stats
	tmp     Stats
	anchor  Stats

	initialized bool
	initCount   int // times the running Fisher was initialized (once per run)
	commitCount int // times the running Fisher absorbed the temporary buffer
}

// NewEWC creates the EWC strategy.
func NewEWC[B tensor.Backend](decay float32, updateAfter int) *EWC[B] {
	return &EWC[B]{decay: decay, updateAfter: updateAfter}
}

// Name returns "ewc".
func (e *EWC[B]) Name() string { return MethodEWC }

// FisherInitCount reports how often the running Fisher was initialized.
func (e *EWC[B]) FisherInitCount() int { return e.initCount }

// FisherCommitCount reports how often the temporary Fisher was committed
// into the running estimate.
func (e *EWC[B]) FisherCommitCount() int { return e.commitCount }

func (e *EWC[B]) ensureState(l *Learner[B]) {
	if e.running == nil {
		e.running = l.ZeroStats()
		e.tmp = l.ZeroStats()
		e.anchor = l.ParamValues()
	}
}

// TrainStep accumulates the temporary Fisher from the batch gradient,
// commits it on the update cadence, and takes the regularized step.
func (e *EWC[B]) TrainStep(l *Learner[B], batch *Batch[B]) (float32, error) {
	e.ensureState(l)

	loss, grads, err := l.Gradients(batch)
	if err != nil {
		return loss, err
	}
	gradStats := l.GradStats(grads)

	// First step of the first task seeds the running estimate.
	if batch.Task == 0 && batch.Iter == 0 && !e.initialized {
		e.running.Zero()
		e.running.AddSquared(gradStats)
		e.initialized = true
		e.initCount++
	}

	// Commit the temporary buffer on the cadence.
	if (batch.Iter+1)%e.updateAfter == 0 {
		e.commit()
	}

	e.tmp.AddSquared(gradStats)

	if err := l.AddRegGrads(grads, e.running, e.anchor); err != nil {
		return loss, err
	}
	loss += l.RegPenalty(e.running, e.anchor)

	l.Optimizer.Step(grads)
	return loss, nil
}

func (e *EWC[B]) commit() {
	scale := (1 - e.decay) / float32(e.updateAfter)
	for i, vals := range e.running {
		for j := range vals {
			vals[j] = e.decay*vals[j] + scale*e.tmp[i][j]
		}
	}
	e.tmp.Zero()
	e.commitCount++
}

// TaskBoundary refreshes the anchor parameters; the Fisher estimate keeps
// running across tasks.
func (e *EWC[B]) TaskBoundary(l *Learner[B], _ int, _ data.Dataset, _ []int) error {
	e.ensureState(l)
	e.anchor = l.ParamValues()
	return nil
}

// Reset clears all Fisher state for an independent run.
func (e *EWC[B]) Reset() {
	e.running = nil
	e.tmp = nil
	e.anchor = nil
	e.initialized = false
	e.initCount = 0
	e.commitCount = 0
}
