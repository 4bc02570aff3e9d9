package autodiff

import (
	"github.com/born-ml/lifelong/internal/autodiff/ops"
	"github.com/born-ml/lifelong/internal/tensor"
)

// WeightedCrossEntropy computes cross-entropy loss with per-example weights
// and records the operation on the tape.
//
// Forward:
//
//	Loss = Σ_b w_b * (-log_softmax(logits[b])[targets[b]]) / Σ_b w_b
//
// Backward:
//
//	∂L/∂logits[b] = w_b * (softmax(logits[b]) - y_one_hot[b]) / Σ_b w_b
//
// Weights are constants; no gradient flows into them. With uniform weights
// this is identical to CrossEntropy.
//
// Parameters:
//   - logits: Model predictions [batch_size, num_classes]
//   - targets: Ground truth class indices [batch_size]
//   - weights: Per-example weights [batch_size], all > 0
//
// Returns:
//   - Scalar loss value (weighted mean over batch)
func (b *AutodiffBackend[B]) WeightedCrossEntropy(logits, targets, weights *tensor.RawTensor) *tensor.RawTensor {
	defer logits.ForceNonUnique()()
	// targets and weights are not differentiated

	result := ops.WeightedCrossEntropyForward(logits, targets, weights, b.Device())

	if b.tape.IsRecording() {
		op := ops.NewWeightedCrossEntropyOp(logits, targets, weights, result)
		b.tape.Record(op)
	}

	return result
}
