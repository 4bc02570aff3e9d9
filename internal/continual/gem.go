package continual

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// taskMemory is one finished task's episodic memory: a class-balanced
// sample of its training data plus the classes it covered.
type taskMemory struct {
	classes []int
	samples data.Dataset
}

// GEM implements gradient episodic memory.
//
// Each task boundary stores a class-balanced episodic memory of the
// finished task. During later tasks, every step first computes a
// reference gradient per stored memory (the task loss on the whole
// memory, with that task's attribute mask), then checks the current batch
// gradient against them: if it points away from any reference
// (⟨g, g_k⟩ < 0), it is replaced by the closest gradient in the cone
// {g̃ : ⟨g̃, g_k⟩ ≥ 0 for all k}.
type GEM[B tensor.Backend] struct {
	attrs    *data.Attributes
	perClass int
	rng      *rand.Rand

	memories []taskMemory
}

// NewGEM creates the gradient-episodic-memory strategy.
func NewGEM[B tensor.Backend](attrs *data.Attributes, perClass int, rng *rand.Rand) *GEM[B] {
	return &GEM[B]{attrs: attrs, perClass: perClass, rng: rng}
}

// Name returns "gem".
func (g *GEM[B]) Name() string { return MethodGEM }

// MemoryTasks reports how many task memories are stored.
func (g *GEM[B]) MemoryTasks() int { return len(g.memories) }

// referenceGradient computes the flattened task-loss gradient on one
// stored memory, using that memory's masked attribute matrix. The model
// is evaluated in inference mode so dropout does not perturb the
// reference direction.
func (g *GEM[B]) referenceGradient(l *Learner[B], mem taskMemory) ([]float32, error) {
	images, labels, err := data.Batch(mem.samples, 0, mem.samples.Len(), l.Backend)
	if err != nil {
		return nil, err
	}
	attrs, err := data.AttrTensor(g.attrs.Masked(mem.classes), l.Backend)
	if err != nil {
		return nil, err
	}
	weights, err := UniformWeightsTensor(mem.samples.Len(), l.Backend.Device())
	if err != nil {
		return nil, err
	}

	_, grads, err := l.Gradients(&Batch[B]{
		Images:  images,
		Labels:  labels,
		Attrs:   attrs,
		Weights: weights,
	})
	if err != nil {
		return nil, err
	}
	return l.GradStats(grads).Flatten(), nil
}

// TrainStep computes reference gradients over the stored memories,
// projects the batch gradient into their cone if needed, and steps.
func (g *GEM[B]) TrainStep(l *Learner[B], batch *Batch[B]) (float32, error) {
	if len(g.memories) == 0 {
		loss, grads, err := l.Gradients(batch)
		if err != nil {
			return loss, err
		}
		l.Optimizer.Step(grads)
		return loss, nil
	}

	l.Model.SetTraining(false)
	refs := make([][]float32, 0, len(g.memories))
	for _, mem := range g.memories {
		ref, err := g.referenceGradient(l, mem)
		if err != nil {
			l.Model.SetTraining(true)
			return 0, fmt.Errorf("gem: reference gradient: %w", err)
		}
		refs = append(refs, ref)
	}
	l.Model.SetTraining(true)

	loss, grads, err := l.Gradients(batch)
	if err != nil {
		return loss, err
	}

	gradStats := l.GradStats(grads)
	flat := gradStats.Flatten()

	if violatesCone(flat, refs) {
		projected := projectToCone(flat, refs)
		projGrads, err := l.GradsFromStats(gradStats.Unflatten(projected))
		if err != nil {
			return loss, fmt.Errorf("gem: projected gradient: %w", err)
		}
		grads = projGrads
	}

	l.Optimizer.Step(grads)
	return loss, nil
}

// TaskBoundary stores a class-balanced episodic memory of the finished
// task.
func (g *GEM[B]) TaskBoundary(_ *Learner[B], _ int, train data.Dataset, classes []int) error {
	samples := data.SampleForEachClass(train, classes, g.perClass, g.rng)
	g.memories = append(g.memories, taskMemory{classes: classes, samples: samples})
	return nil
}

// Reset drops all episodic memories for an independent run.
func (g *GEM[B]) Reset() {
	g.memories = nil
}

// violatesCone reports whether the gradient points away from any
// reference direction.
func violatesCone(grad []float32, refs [][]float32) bool {
	for _, ref := range refs {
		if dot(grad, ref) < 0 {
			return true
		}
	}
	return false
}

// projectToCone returns the gradient closest to grad (in L2) satisfying
// ⟨g̃, ref_k⟩ ≥ 0 for every reference.
//
// Solved in the dual: g̃ = g + Rᵀv with v ≥ 0 minimizing
// ½·vᵀRRᵀv + vᵀRg, by projected coordinate descent over v. The memory
// count is small (one entry per finished task), so the Gram matrix and
// the sweeps are cheap next to the backward passes that produced the
// references.
func projectToCone(grad []float32, refs [][]float32) []float32 {
	k := len(refs)

	gram := make([][]float64, k)
	rg := make([]float64, k)
	for i := 0; i < k; i++ {
		gram[i] = make([]float64, k)
		for j := 0; j <= i; j++ {
			d := dot64(refs[i], refs[j])
			gram[i][j] = d
			gram[j][i] = d
		}
		rg[i] = dot64(refs[i], grad)
	}

	const sweeps = 100
	const tolerance = 1e-10

	v := make([]float64, k)
	for sweep := 0; sweep < sweeps; sweep++ {
		maxDelta := 0.0
		for i := 0; i < k; i++ {
			if gram[i][i] == 0 {
				continue
			}
			// Gradient of the dual objective in coordinate i.
			deriv := rg[i]
			for j := 0; j < k; j++ {
				deriv += gram[i][j] * v[j]
			}
			next := v[i] - deriv/gram[i][i]
			if next < 0 {
				next = 0
			}
			if delta := next - v[i]; delta > maxDelta || -delta > maxDelta {
				maxDelta = delta
				if maxDelta < 0 {
					maxDelta = -maxDelta
				}
			}
			v[i] = next
		}
		if maxDelta < tolerance {
			break
		}
	}

	projected := make([]float32, len(grad))
	copy(projected, grad)
	for i := 0; i < k; i++ {
		if v[i] == 0 {
			continue
		}
		c := float32(v[i])
		for j, r := range refs[i] {
			projected[j] += c * r
		}
	}
	return projected
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func dot64(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
