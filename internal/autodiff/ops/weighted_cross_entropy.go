package ops

import (
	"github.com/born-ml/lifelong/internal/tensor"
)

// WeightedCrossEntropyOp is cross-entropy loss with per-example weights.
//
// Forward:
//
//	Loss = Σ_b w_b * (-log_softmax(logits[b])[targets[b]]) / Σ_b w_b
//
// Backward:
//
//	∂L/∂logits[b,i] = w_b * (softmax(logits[b])[i] - y_one_hot[b,i]) / Σ_b w_b
//
// With all weights equal this reduces exactly to CrossEntropyOp.
// Weights are treated as constants: no gradient flows into them.
//
// Assumptions:
//   - Logits shape: [batch_size, num_classes] (2D, float32)
//   - Targets shape: [batch_size] (1D, class indices)
//   - Weights shape: [batch_size] (1D, float32, all > 0)
type WeightedCrossEntropyOp struct {
	logits  *tensor.RawTensor
	targets *tensor.RawTensor
	weights *tensor.RawTensor
	output  *tensor.RawTensor
}

// NewWeightedCrossEntropyOp creates a new weighted cross-entropy operation.
func NewWeightedCrossEntropyOp(logits, targets, weights, output *tensor.RawTensor) *WeightedCrossEntropyOp {
	return &WeightedCrossEntropyOp{
		logits:  logits,
		targets: targets,
		weights: weights,
		output:  output,
	}
}

// Inputs returns the input tensors.
func (op *WeightedCrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits}
}

// Output returns the output tensor.
func (op *WeightedCrossEntropyOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the gradient with respect to logits.
func (op *WeightedCrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	logitsShape := op.logits.Shape()
	if len(logitsShape) != 2 {
		panic("WeightedCrossEntropyOp: backward only supports 2D logits [batch_size, num_classes]")
	}

	batchSize := logitsShape[0]
	numClasses := logitsShape[1]

	logitsGrad, err := tensor.NewRaw(logitsShape, op.logits.DType(), op.logits.Device())
	if err != nil {
		panic(err)
	}

	if op.logits.DType() != tensor.Float32 {
		panic("WeightedCrossEntropyOp: backward only supports float32")
	}

	logitsData := op.logits.AsFloat32()
	targetsData := op.targets.AsInt32()
	weightsData := op.weights.AsFloat32()
	gradData := logitsGrad.AsFloat32()
	gradScale := outputGrad.AsFloat32()[0]

	weightSum := float32(0.0)
	for _, w := range weightsData {
		weightSum += w
	}

	for b := 0; b < batchSize; b++ {
		sampleLogits := logitsData[b*numClasses : (b+1)*numClasses]
		probs := computeSoftmaxFloat32(sampleLogits)

		target := int(targetsData[b])
		for i := 0; i < numClasses; i++ {
			grad := probs[i]
			if i == target {
				grad -= 1.0
			}
			gradData[b*numClasses+i] = gradScale * weightsData[b] * grad / weightSum
		}
	}

	return []*tensor.RawTensor{logitsGrad}
}

// WeightedCrossEntropyForward computes weighted cross-entropy loss.
//
// This is the forward helper shared by AutodiffBackend.WeightedCrossEntropy
// and non-autodiff callers.
//
// Parameters:
//   - logits: [batch_size, num_classes] (float32)
//   - targets: [batch_size] (class indices)
//   - weights: [batch_size] (per-example weights, all > 0)
//
// Returns:
//   - Scalar loss tensor (weighted mean over batch)
func WeightedCrossEntropyForward(logits, targets, weights *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	logitsShape := logits.Shape()
	if len(logitsShape) != 2 {
		panic("WeightedCrossEntropyForward: logits must be 2D [batch_size, num_classes]")
	}
	if len(targets.Shape()) != 1 || targets.Shape()[0] != logitsShape[0] {
		panic("WeightedCrossEntropyForward: targets must be 1D [batch_size]")
	}
	if len(weights.Shape()) != 1 || weights.Shape()[0] != logitsShape[0] {
		panic("WeightedCrossEntropyForward: weights must be 1D [batch_size]")
	}
	if logits.DType() != tensor.Float32 {
		panic("WeightedCrossEntropyForward: only supports float32")
	}

	batchSize := logitsShape[0]
	numClasses := logitsShape[1]

	output, err := tensor.NewRaw(tensor.Shape{1}, logits.DType(), device)
	if err != nil {
		panic(err)
	}

	logitsData := logits.AsFloat32()
	targetsData := targets.AsInt32()
	weightsData := weights.AsFloat32()

	totalLoss := float32(0.0)
	weightSum := float32(0.0)

	for b := 0; b < batchSize; b++ {
		sampleLogits := logitsData[b*numClasses : (b+1)*numClasses]
		logProbs := computeLogSoftmaxFloat32(sampleLogits)

		target := int(targetsData[b])
		if target < 0 || target >= numClasses {
			panic("WeightedCrossEntropyForward: target index out of bounds")
		}

		totalLoss += weightsData[b] * -logProbs[target]
		weightSum += weightsData[b]
	}

	output.AsFloat32()[0] = totalLoss / weightSum

	return output
}
