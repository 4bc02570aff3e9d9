package nn

import (
	"github.com/born-ml/lifelong/internal/tensor"
)

// WeightedCrossEntropyLoss is cross-entropy loss with per-example weights.
//
// Mathematical Formulation:
//
//	Loss = Σ_b w_b * (-log_probs[b][target_b]) / Σ_b w_b
//
// With all weights equal this reduces exactly to CrossEntropyLoss. Weights
// are treated as constants: no gradient flows into them. Replay-based
// training uses this to down-weight over-represented classes in the
// assembled batch.
//
// Usage:
//
//	criterion := nn.NewWeightedCrossEntropyLoss[Backend](backend)
//	loss := criterion.Forward(logits, targets, weights)
type WeightedCrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

// NewWeightedCrossEntropyLoss creates a new weighted cross-entropy loss function.
func NewWeightedCrossEntropyLoss[B tensor.Backend](backend B) *WeightedCrossEntropyLoss[B] {
	return &WeightedCrossEntropyLoss[B]{
		backend: backend,
	}
}

// Forward computes the weighted cross-entropy loss.
//
// Parameters:
//   - logits: Model predictions with shape [batch_size, num_classes]
//   - targets: Ground truth class indices with shape [batch_size]
//   - weights: Per-example weights with shape [batch_size], all > 0
//
// Returns a scalar loss (weighted mean over the batch). When using an
// autodiff-aware backend the operation is recorded on the tape.
func (c *WeightedCrossEntropyLoss[B]) Forward(
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
	weights *tensor.Tensor[float32, B],
) *tensor.Tensor[float32, B] {
	// Check if backend supports WeightedCrossEntropy (autodiff-aware)
	type WeightedCrossEntropyBackend interface {
		WeightedCrossEntropy(logits, targets, weights *tensor.RawTensor) *tensor.RawTensor
	}

	if adBackend, ok := any(c.backend).(WeightedCrossEntropyBackend); ok {
		resultRaw := adBackend.WeightedCrossEntropy(logits.Raw(), targets.Raw(), weights.Raw())
		return tensor.New[float32, B](resultRaw, c.backend)
	}

	// Fallback to manual computation for non-autodiff backends
	shape := logits.Shape()
	if len(shape) != 2 {
		panic("WeightedCrossEntropyLoss: logits must be 2D [batch_size, num_classes]")
	}

	batchSize := shape[0]
	numClasses := shape[1]

	targetsData := targets.Raw().AsInt32()
	if len(targetsData) != batchSize {
		panic("WeightedCrossEntropyLoss: targets must have shape [batch_size]")
	}
	weightsData := weights.Raw().AsFloat32()
	if len(weightsData) != batchSize {
		panic("WeightedCrossEntropyLoss: weights must have shape [batch_size]")
	}

	logitsData := logits.Raw().AsFloat32()

	totalLoss := float32(0.0)
	weightSum := float32(0.0)

	for b := 0; b < batchSize; b++ {
		sampleLogits := logitsData[b*numClasses : (b+1)*numClasses]
		logProbs := logSoftmax(sampleLogits)

		target := int(targetsData[b])
		if target < 0 || target >= numClasses {
			panic("WeightedCrossEntropyLoss: target index out of bounds")
		}

		totalLoss += weightsData[b] * -logProbs[target]
		weightSum += weightsData[b]
	}

	lossRaw, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, c.backend.Device())
	if err != nil {
		panic(err)
	}
	lossRaw.AsFloat32()[0] = totalLoss / weightSum

	return tensor.New[float32, B](lossRaw, c.backend)
}

// Parameters returns an empty slice (loss functions have no trainable parameters).
func (c *WeightedCrossEntropyLoss[B]) Parameters() []*Parameter[B] {
	return nil
}
