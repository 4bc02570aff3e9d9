package experiment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lifelong/internal/autodiff"
	"github.com/born-ml/lifelong/internal/backend/cpu"
	"github.com/born-ml/lifelong/internal/continual"
	"github.com/born-ml/lifelong/internal/model"
	"github.com/born-ml/lifelong/internal/optim"
)

// newEvalFixture builds an experiment plus an untrained learner the way a
// run would, without running any training.
func newEvalFixture(t *testing.T, cfg Config) (*Experiment[*cpu.CPUBackend], *continual.Learner[*cpu.CPUBackend]) {
	t.Helper()

	exp, err := New(cfg, smallProvider(cfg), cpu.New)
	require.NoError(t, err)

	backend := autodiff.New(cpu.New())
	classifier, err := model.New(model.Config{
		Arch:     cfg.Arch,
		Feature:  exp.Tasks()[0].Train.Feature,
		Hidden:   cfg.Hidden,
		AttrDim:  exp.Attrs().Dim,
		KeepProb: cfg.KeepProb,
	}, rand.New(rand.NewSource(cfg.Seed)), backend)
	require.NoError(t, err)

	learner := &continual.Learner[*cpu.CPUBackend]{
		Backend:   backend,
		Model:     classifier,
		Optimizer: optim.NewSGD(classifier.Parameters(), optim.SGDConfig{LR: cfg.LR}, backend),
		Lambda:    cfg.Lambda,
	}
	return exp, learner
}

func TestEvaluate_CoversChunkRemainder(t *testing.T) {
	cfg := smallConfig()
	exp, learner := newEvalFixture(t, cfg)

	// Test splits hold 14 examples per task: one full chunk of 10 plus a
	// remainder of 4. Every example must be scored exactly once, so the
	// accuracies are multiples of 1/14.
	row, err := exp.Evaluate(learner, 2)
	require.NoError(t, err)
	require.Len(t, row, 2)

	for _, acc := range row {
		assert.GreaterOrEqual(t, acc, float32(0))
		assert.LessOrEqual(t, acc, float32(1))
		scaled := acc * 14
		assert.InDelta(t, float64(int(scaled+0.5)), float64(scaled), 1e-5,
			"accuracy must be a whole number of correct examples over 14")
	}
}

func TestEvaluate_BoundsChecked(t *testing.T) {
	cfg := smallConfig()
	exp, learner := newEvalFixture(t, cfg)

	_, err := exp.Evaluate(learner, 0)
	assert.Error(t, err)
	_, err = exp.Evaluate(learner, 3)
	assert.Error(t, err)
}

func TestEvaluate_CrossValidateUsesTrainSplit(t *testing.T) {
	cfg := smallConfig()
	cfg.CrossValidate = true
	exp, learner := newEvalFixture(t, cfg)

	// Train splits hold 16 examples per task.
	row, err := exp.Evaluate(learner, 1)
	require.NoError(t, err)
	require.Len(t, row, 1)

	scaled := row[0] * 16
	assert.InDelta(t, float64(int(scaled+0.5)), float64(scaled), 1e-5)
}

func TestEvaluate_LeavesTrainingMode(t *testing.T) {
	cfg := smallConfig()
	cfg.KeepProb = 0.5
	exp, learner := newEvalFixture(t, cfg)

	// Two evaluations of the same untrained model must agree even with
	// dropout configured: evaluation always runs in inference mode.
	first, err := exp.Evaluate(learner, 2)
	require.NoError(t, err)
	second, err := exp.Evaluate(learner, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
