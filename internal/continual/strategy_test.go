package continual

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lifelong/internal/autodiff"
	"github.com/born-ml/lifelong/internal/backend/cpu"
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/model"
	"github.com/born-ml/lifelong/internal/optim"
	"github.com/born-ml/lifelong/internal/tensor"
)

const (
	testAttrDim   = 4
	testFeature   = 6
	testBatchSize = 8
)

// testRig is a minimal two-task problem with a fresh learner, small enough
// that every strategy can run real steps in a unit test.
type testRig struct {
	learner *Learner[*cpu.CPUBackend]
	attrs   *data.Attributes
	tasks   []data.Task
}

func newTestRig(t *testing.T, lambda float32) *testRig {
	t.Helper()

	backend := autodiff.New(cpu.New())
	m, err := model.New(model.Config{
		Arch:     model.ArchMLP,
		Feature:  tensor.Shape{testFeature},
		Hidden:   8,
		AttrDim:  testAttrDim,
		KeepProb: 1.0,
	}, rand.New(rand.NewSource(11)), backend)
	require.NoError(t, err)

	provider := &data.Synthetic{
		TotalClasses:  4,
		AttrDim:       testAttrDim,
		Feature:       tensor.Shape{testFeature},
		TrainPerClass: testBatchSize,
		TestPerClass:  2,
		Noise:         0.05,
		Seed:          7,
	}
	splits, err := data.SplitClasses(4, 2)
	require.NoError(t, err)
	tasks, attrs, err := provider.Load(splits)
	require.NoError(t, err)

	return &testRig{
		learner: &Learner[*cpu.CPUBackend]{
			Backend:   backend,
			Model:     m,
			Optimizer: optim.NewSGD(m.Parameters(), optim.SGDConfig{LR: 0.05}, backend),
			Lambda:    lambda,
		},
		attrs: attrs,
		tasks: tasks,
	}
}

// batch materializes one fixed training batch for a task, with the task's
// attribute mask and uniform weights.
func (r *testRig) batch(t *testing.T, task, iter, iters int) *Batch[*cpu.CPUBackend] {
	t.Helper()

	train := r.tasks[task].Train
	images, labels, err := data.Batch(train, 0, testBatchSize, r.learner.Backend)
	require.NoError(t, err)
	attrs, err := data.AttrTensor(r.attrs.Masked(r.tasks[task].Classes), r.learner.Backend)
	require.NoError(t, err)
	weights, err := UniformWeightsTensor(testBatchSize, r.learner.Backend.Device())
	require.NoError(t, err)

	return &Batch[*cpu.CPUBackend]{
		Images:  images,
		Labels:  labels,
		Attrs:   attrs,
		Weights: weights,
		Task:    task,
		Iter:    iter,
		Iters:   iters,
	}
}

func TestNew_UnknownMethod(t *testing.T) {
	_, err := New[*cpu.CPUBackend]("dreaming", StrategyConfig{})
	assert.Error(t, err)
}

func TestNew_AllMethods(t *testing.T) {
	cfg := StrategyConfig{
		FisherEMADecay:    0.9,
		FisherUpdateAfter: 50,
		MemoryPerClass:    5,
		BatchSize:         8,
		Attrs:             &data.Attributes{NumClasses: 1, Dim: 1, Data: []float32{1}},
		RNG:               rand.New(rand.NewSource(1)),
	}
	for _, method := range ValidMethods {
		s, err := New[*cpu.CPUBackend](method, cfg)
		require.NoError(t, err, method)
		assert.Equal(t, method, s.Name())
	}
}

func TestVan_LossDecreasesOnFixedBatch(t *testing.T) {
	rig := newTestRig(t, 0)
	van := NewVan[*cpu.CPUBackend]()

	first, err := van.TrainStep(rig.learner, rig.batch(t, 0, 0, 100))
	require.NoError(t, err)

	var last float32
	for iter := 1; iter < 100; iter++ {
		last, err = van.TrainStep(rig.learner, rig.batch(t, 0, iter, 100))
		require.NoError(t, err)
		require.False(t, math.IsNaN(float64(last)))
	}

	assert.Less(t, last, first, "descending the same batch must reduce its loss")
}

func TestNonFiniteLossAborts(t *testing.T) {
	rig := newTestRig(t, 0)
	van := NewVan[*cpu.CPUBackend]()

	// Poison the embedding head. It sits past the ReLU layers, so the NaN
	// reaches the logits and the loss instead of being clamped away.
	params := rig.learner.Params()
	nan := float32(math.NaN())
	head := params[len(params)-1].Tensor().Raw().AsFloat32()
	for i := range head {
		head[i] = nan
	}

	_, err := van.TrainStep(rig.learner, rig.batch(t, 0, 0, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonFiniteLoss), "want ErrNonFiniteLoss, got %v", err)
}

func TestEWC_FisherInitAndCommitCadence(t *testing.T) {
	rig := newTestRig(t, 10)
	ewc := NewEWC[*cpu.CPUBackend](0.9, 5)

	for iter := 0; iter < 10; iter++ {
		_, err := ewc.TrainStep(rig.learner, rig.batch(t, 0, iter, 10))
		require.NoError(t, err)
	}

	assert.Equal(t, 1, ewc.FisherInitCount(), "running Fisher seeds exactly once per run")
	assert.Equal(t, 2, ewc.FisherCommitCount(), "commits land every updateAfter steps")

	// A later iter-0 batch (next task) must not re-seed.
	require.NoError(t, ewc.TaskBoundary(rig.learner, 0, rig.tasks[0].Train, rig.tasks[0].Classes))
	_, err := ewc.TrainStep(rig.learner, rig.batch(t, 1, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, ewc.FisherInitCount())

	ewc.Reset()
	assert.Zero(t, ewc.FisherInitCount())
	assert.Zero(t, ewc.FisherCommitCount())
}

func TestRegPenaltyAndGradient(t *testing.T) {
	rig := newTestRig(t, 2)
	l := rig.learner

	anchor := l.ParamValues()

	// Move exactly one parameter value off its anchor.
	first := l.Params()[0].Tensor().Raw().AsFloat32()
	first[0] += 0.5

	importance := l.ZeroStats()
	for _, vals := range importance {
		for j := range vals {
			vals[j] = 1
		}
	}

	// λ·Σ Ω·(θ-θ*)² = 2 · 0.5² = 0.5.
	penalty := l.RegPenalty(importance, anchor)
	assert.InDelta(t, 0.5, float64(penalty), 1e-6)

	// 2λ·Ω·(θ-θ*) = 2 · 2 · 0.5 = 2 on the perturbed value, 0 elsewhere.
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	require.NoError(t, l.AddRegGrads(grads, importance, anchor))

	gradStats := l.GradStats(grads)
	assert.InDelta(t, 2.0, float64(gradStats[0][0]), 1e-6)
	for i, vals := range gradStats {
		for j, v := range vals {
			if i == 0 && j == 0 {
				continue
			}
			assert.Zero(t, v)
		}
	}
}

func TestPI_AccumulatesImportance(t *testing.T) {
	rig := newTestRig(t, 1)
	pi := NewPI[*cpu.CPUBackend]()

	for iter := 0; iter < 20; iter++ {
		_, err := pi.TrainStep(rig.learner, rig.batch(t, 0, iter, 20))
		require.NoError(t, err)
	}
	require.NoError(t, pi.TaskBoundary(rig.learner, 0, rig.tasks[0].Train, rig.tasks[0].Classes))

	var total float64
	for _, vals := range pi.bigOmega {
		for _, v := range vals {
			require.GreaterOrEqual(t, v, float32(0), "accumulated importance is clamped at zero")
			total += float64(v)
		}
	}
	assert.Positive(t, total, "descending steps must credit positive importance somewhere")

	pi.Reset()
	assert.Nil(t, pi.bigOmega)
}

func TestMAS_BoundaryBuildsImportance(t *testing.T) {
	rig := newTestRig(t, 1)
	mas := NewMAS[*cpu.CPUBackend](rig.attrs, testBatchSize)

	_, err := mas.TrainStep(rig.learner, rig.batch(t, 0, 0, 1))
	require.NoError(t, err)

	require.NoError(t, mas.TaskBoundary(rig.learner, 0, rig.tasks[0].Train, rig.tasks[0].Classes))

	var total float64
	for _, vals := range mas.omega {
		for _, v := range vals {
			require.GreaterOrEqual(t, v, float32(0), "importance is a mean of absolute gradients")
			total += float64(v)
		}
	}
	assert.Positive(t, total)

	// The boundary pass must leave the model back in training mode and the
	// tape empty for the next training step.
	_, err = mas.TrainStep(rig.learner, rig.batch(t, 1, 0, 1))
	require.NoError(t, err)
}

func TestRWalk_RunsAcrossTasks(t *testing.T) {
	rig := newTestRig(t, 1)
	rw := NewRWalk[*cpu.CPUBackend](0.9, 5)

	for iter := 0; iter < 10; iter++ {
		_, err := rw.TrainStep(rig.learner, rig.batch(t, 0, iter, 10))
		require.NoError(t, err)
	}
	require.NoError(t, rw.TaskBoundary(rig.learner, 0, rig.tasks[0].Train, rig.tasks[0].Classes))

	var fisher float64
	for _, vals := range rw.running {
		for _, v := range vals {
			require.GreaterOrEqual(t, v, float32(0), "squared gradients cannot go negative")
			fisher += float64(v)
		}
	}
	assert.Positive(t, fisher)

	for iter := 0; iter < 10; iter++ {
		loss, err := rw.TrainStep(rig.learner, rig.batch(t, 1, iter, 10))
		require.NoError(t, err)
		require.False(t, math.IsNaN(float64(loss)))
	}

	rw.Reset()
	assert.Nil(t, rw.running)
	assert.False(t, rw.initialized)
}

func TestRWalk_ScoresUseFisherFromWalkedPath(t *testing.T) {
	rig := newTestRig(t, 0)
	rw := NewRWalk[*cpu.CPUBackend](0.5, 1)
	rw.ensureState(rig.learner)

	// One unit of path credit and squared gradient everywhere, with the
	// parameters displaced one unit from the last commit.
	current := rig.learner.ParamValues()
	for i, vals := range rw.omega {
		for j := range vals {
			vals[j] = 1
			rw.tmp[i][j] = 1
			rw.cadenceAnchor[i][j] = current[i][j] - 1
		}
	}

	rw.commit(rig.learner)

	// The running Fisher was still zero while this path was walked, so
	// the score denominator is just the damping term: s = 1/0.1. Scoring
	// against the freshly committed EMA (F = 0.5) would give 1/(0.25+0.1).
	assert.InDelta(t, 10.0, float64(rw.scores[0][0]), 1e-4)
	assert.InDelta(t, 0.5, float64(rw.running[0][0]), 1e-6)

	// The commit consumes the path credit and moves the cadence anchor.
	assert.Zero(t, rw.omega[0][0])
	assert.InDelta(t, float64(current[0][0]), float64(rw.cadenceAnchor[0][0]), 1e-6)
}

func TestGEM_MemoryGrowsAtBoundaries(t *testing.T) {
	rig := newTestRig(t, 0)
	gem := NewGEM[*cpu.CPUBackend](rig.attrs, 3, rand.New(rand.NewSource(5)))

	assert.Zero(t, gem.MemoryTasks())

	// No memories yet: plain step.
	_, err := gem.TrainStep(rig.learner, rig.batch(t, 0, 0, 1))
	require.NoError(t, err)

	require.NoError(t, gem.TaskBoundary(rig.learner, 0, rig.tasks[0].Train, rig.tasks[0].Classes))
	assert.Equal(t, 1, gem.MemoryTasks())

	// With a stored memory the step runs the projection path.
	_, err = gem.TrainStep(rig.learner, rig.batch(t, 1, 0, 1))
	require.NoError(t, err)

	gem.Reset()
	assert.Zero(t, gem.MemoryTasks())
}

func TestProjectToCone_SingleReference(t *testing.T) {
	grad := []float32{1, -1}
	refs := [][]float32{{0, 1}}

	require.True(t, violatesCone(grad, refs))

	projected := projectToCone(grad, refs)
	assert.InDelta(t, 1.0, float64(projected[0]), 1e-6)
	assert.InDelta(t, 0.0, float64(projected[1]), 1e-6)
	assert.GreaterOrEqual(t, dot(projected, refs[0]), float32(-1e-6))
}

func TestProjectToCone_MultipleReferences(t *testing.T) {
	grad := []float32{-1, -1}
	refs := [][]float32{{1, 0}, {0, 1}}

	require.True(t, violatesCone(grad, refs))

	projected := projectToCone(grad, refs)
	for i, ref := range refs {
		assert.GreaterOrEqual(t, dot(projected, ref), float32(-1e-6), "reference %d", i)
	}
	// Both constraints are active, so the projection collapses to zero.
	assert.InDelta(t, 0.0, float64(projected[0]), 1e-6)
	assert.InDelta(t, 0.0, float64(projected[1]), 1e-6)
}

func TestViolatesCone_NoViolation(t *testing.T) {
	grad := []float32{1, 1}
	refs := [][]float32{{1, 0}, {0, 1}}
	assert.False(t, violatesCone(grad, refs))
}
