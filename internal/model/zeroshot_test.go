package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/lifelong/internal/autodiff"
	"github.com/born-ml/lifelong/internal/backend/cpu"
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// The feature stacks contain ReLU layers, which only the autodiff
// decorator implements, so all forwarding tests run on top of it.
type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newTestBackend() testBackend {
	return autodiff.New(cpu.New())
}

func TestNew_UnknownArch(t *testing.T) {
	backend := newTestBackend()
	_, err := New[testBackend](Config{
		Arch:     "resnet",
		Feature:  tensor.Shape{8},
		Hidden:   4,
		AttrDim:  4,
		KeepProb: 1.0,
	}, rand.New(rand.NewSource(1)), backend)
	assert.Error(t, err)
}

func TestMLP_ForwardShape(t *testing.T) {
	backend := newTestBackend()
	m, err := New[testBackend](Config{
		Arch:     ArchMLP,
		Feature:  tensor.Shape{12},
		Hidden:   8,
		AttrDim:  6,
		KeepProb: 1.0,
	}, rand.New(rand.NewSource(1)), backend)
	require.NoError(t, err)

	input := tensor.Randn[float32](tensor.Shape{4, 12}, backend)
	attrs := tensor.Ones[float32](tensor.Shape{10, 6}, backend)

	embedding := m.Embed(input)
	assert.Equal(t, tensor.Shape{4, 6}, embedding.Shape())

	logits := m.Forward(input, attrs)
	assert.Equal(t, tensor.Shape{4, 10}, logits.Shape())
}

func TestCNN_ForwardShape(t *testing.T) {
	backend := newTestBackend()
	m, err := New[testBackend](Config{
		Arch:     ArchCNN,
		Feature:  tensor.Shape{1, 28, 28},
		Hidden:   16,
		AttrDim:  6,
		KeepProb: 1.0,
	}, rand.New(rand.NewSource(1)), backend)
	require.NoError(t, err)

	input := tensor.Randn[float32](tensor.Shape{2, 1, 28, 28}, backend)
	attrs := tensor.Ones[float32](tensor.Shape{5, 6}, backend)

	logits := m.Forward(input, attrs)
	assert.Equal(t, tensor.Shape{2, 5}, logits.Shape())
}

func TestCNN_InputTooSmall(t *testing.T) {
	backend := newTestBackend()
	_, err := New[testBackend](Config{
		Arch:     ArchCNN,
		Feature:  tensor.Shape{1, 6, 6},
		Hidden:   16,
		AttrDim:  6,
		KeepProb: 1.0,
	}, rand.New(rand.NewSource(1)), backend)
	assert.Error(t, err)
}

// TestForward_MaskedClassesScoreZero checks the masking contract: a class
// whose attribute row is all zeroes gets exactly zero score for every input.
func TestForward_MaskedClassesScoreZero(t *testing.T) {
	backend := newTestBackend()
	m, err := New[testBackend](Config{
		Arch:     ArchMLP,
		Feature:  tensor.Shape{10},
		Hidden:   8,
		AttrDim:  4,
		KeepProb: 1.0,
	}, rand.New(rand.NewSource(2)), backend)
	require.NoError(t, err)

	attrValues := make([]float32, 6*4)
	for i := range attrValues {
		attrValues[i] = 1.0
	}
	full, err := data.NewAttributes(attrValues, 6, 4)
	require.NoError(t, err)
	masked := full.Masked([]int{0, 1})

	attrs, err := data.AttrTensor(masked, backend)
	require.NoError(t, err)

	input := tensor.Randn[float32](tensor.Shape{3, 10}, backend)
	logits := m.Forward(input, attrs)

	raw := logits.Data()
	numClasses := 6
	for row := 0; row < 3; row++ {
		for class := 2; class < numClasses; class++ {
			assert.Zero(t, raw[row*numClasses+class],
				"masked class must score zero")
		}
	}
}

// TestForward_Deterministic checks that evaluation-mode inference is a pure
// function of the parameters.
func TestForward_Deterministic(t *testing.T) {
	backend := newTestBackend()
	m, err := New[testBackend](Config{
		Arch:     ArchMLP,
		Feature:  tensor.Shape{10},
		Hidden:   8,
		AttrDim:  4,
		KeepProb: 0.5,
	}, rand.New(rand.NewSource(3)), backend)
	require.NoError(t, err)
	m.SetTraining(false)

	input := tensor.Randn[float32](tensor.Shape{2, 10}, backend)
	attrs := tensor.Ones[float32](tensor.Shape{4, 4}, backend)

	first := m.Forward(input, attrs).Data()
	second := m.Forward(input, attrs).Data()
	assert.Equal(t, first, second)
}

func TestStateDictRoundTrip(t *testing.T) {
	backend := newTestBackend()
	cfg := Config{
		Arch:     ArchMLP,
		Feature:  tensor.Shape{10},
		Hidden:   8,
		AttrDim:  4,
		KeepProb: 1.0,
	}

	src, err := New[testBackend](cfg, rand.New(rand.NewSource(4)), backend)
	require.NoError(t, err)
	dst, err := New[testBackend](cfg, rand.New(rand.NewSource(5)), backend)
	require.NoError(t, err)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	input := tensor.Randn[float32](tensor.Shape{2, 10}, backend)
	attrs := tensor.Ones[float32](tensor.Shape{4, 4}, backend)

	srcOut := src.Forward(input, attrs).Data()
	dstOut := dst.Forward(input, attrs).Data()
	for i := range srcOut {
		if math.Abs(float64(srcOut[i]-dstOut[i])) > 1e-6 {
			t.Fatalf("output %d differs after load: %v vs %v", i, srcOut[i], dstOut[i])
		}
	}

	err = dst.LoadStateDict(map[string]*tensor.RawTensor{"bogus.weight": nil})
	assert.Error(t, err)
}
