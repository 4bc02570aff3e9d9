package nn

import (
	"math"
	"testing"

	"github.com/born-ml/lifelong/internal/autodiff"
	"github.com/born-ml/lifelong/internal/backend/cpu"
	"github.com/born-ml/lifelong/internal/tensor"
)

// TestWeightedCrossEntropy_UniformMatchesUnweighted tests that all-ones
// weights reduce to plain cross-entropy.
func TestWeightedCrossEntropy_UniformMatchesUnweighted(t *testing.T) {
	backend := cpu.New()

	logits, err := tensor.FromSlice(
		[]float32{2.0, 1.0, 0.1, 0.5, 2.5, 0.3},
		tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	targets, err := tensor.FromSlice([]int32{0, 1}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	weights, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	plain := NewCrossEntropyLoss(backend).Forward(logits, targets).Data()[0]
	weighted := NewWeightedCrossEntropyLoss(backend).Forward(logits, targets, weights).Data()[0]

	if math.Abs(float64(plain-weighted)) > 1e-6 {
		t.Errorf("weighted loss %v != unweighted loss %v", weighted, plain)
	}
}

// TestWeightedCrossEntropy_WeightsShiftLoss tests that up-weighting the
// high-loss example increases the total.
func TestWeightedCrossEntropy_WeightsShiftLoss(t *testing.T) {
	backend := cpu.New()

	// Example 0 is classified correctly, example 1 badly.
	logits, err := tensor.FromSlice(
		[]float32{5.0, 0.0, 0.0, 5.0},
		tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	targets, err := tensor.FromSlice([]int32{0, 0}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	criterion := NewWeightedCrossEntropyLoss(backend)

	uniform, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	upweighted, err := tensor.FromSlice([]float32{1, 3}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	base := criterion.Forward(logits, targets, uniform).Data()[0]
	shifted := criterion.Forward(logits, targets, upweighted).Data()[0]

	if shifted <= base {
		t.Errorf("up-weighting the bad example should increase loss: %v <= %v", shifted, base)
	}
}

// TestWeightedCrossEntropy_AutodiffGradient tests the recorded backward pass:
// the gradient of the correct class is negative and rows scale with weights.
func TestWeightedCrossEntropy_AutodiffGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())

	logits, err := tensor.FromSlice(
		[]float32{1.0, 0.0, 1.0, 0.0},
		tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	targets, err := tensor.FromSlice([]int32{0, 0}, tensor.Shape{2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	weightsRaw, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, backend.Device())
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	weightsRaw.AsFloat32()[0] = 1
	weightsRaw.AsFloat32()[1] = 3

	backend.Tape().StartRecording()
	loss := backend.WeightedCrossEntropy(logits.Raw(), targets.Raw(), weightsRaw)
	backend.Tape().StopRecording()

	outputGrad, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, backend.Device())
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	outputGrad.AsFloat32()[0] = 1

	grads := backend.Tape().Backward(outputGrad, backend)
	grad, ok := grads[logits.Raw()]
	if !ok {
		t.Fatal("no gradient recorded for logits")
	}

	gradData := grad.AsFloat32()
	if gradData[0] >= 0 {
		t.Errorf("correct-class gradient should be negative, got %v", gradData[0])
	}

	// Identical rows, so the per-row gradients differ only by weight.
	ratio := gradData[2] / gradData[0]
	if math.Abs(float64(ratio-3)) > 1e-5 {
		t.Errorf("row gradient ratio = %v, expected 3 (weight ratio)", ratio)
	}

	if math.IsNaN(float64(loss.AsFloat32()[0])) {
		t.Error("loss is NaN")
	}

	backend.Tape().Clear()
}
