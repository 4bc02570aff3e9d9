package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lifelong/internal/tensor"
)

// Dropout randomly zeroes elements of the input during training.
//
// Uses inverted dropout: kept elements are scaled by 1/keepProb so the
// expected activation is unchanged and evaluation needs no rescaling.
// In evaluation mode (SetTraining(false)) the input passes through
// untouched.
//
// The mask is generated as a constant tensor and applied with an ordinary
// element-wise multiply, so gradients flow through the kept elements when
// running under an autodiff backend.
//
// Example:
//
//	drop := nn.NewDropout[Backend](0.5, rng)
//	drop.SetTraining(true)
//	output := drop.Forward(input)
type Dropout[B tensor.Backend] struct {
	keepProb float32
	training bool
	rng      *rand.Rand
}

// NewDropout creates a new Dropout module.
//
// keepProb is the probability of keeping an element (0 < keepProb <= 1).
// The module starts in training mode.
func NewDropout[B tensor.Backend](keepProb float32, rng *rand.Rand) *Dropout[B] {
	if keepProb <= 0 || keepProb > 1 {
		panic(fmt.Sprintf("Dropout: keep probability must be in (0, 1], got %v", keepProb))
	}
	return &Dropout[B]{
		keepProb: keepProb,
		training: true,
		rng:      rng,
	}
}

// SetTraining toggles between training (mask applied) and evaluation
// (identity) behavior.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Forward applies the dropout mask in training mode, identity otherwise.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.keepProb >= 1 {
		return input
	}

	backend := input.Backend()

	maskRaw, err := tensor.NewRaw(input.Shape(), tensor.Float32, backend.Device())
	if err != nil {
		panic(err)
	}

	scale := 1.0 / d.keepProb
	maskData := maskRaw.AsFloat32()
	for i := range maskData {
		if d.rng.Float32() < d.keepProb {
			maskData[i] = scale
		}
	}

	mask := tensor.New[float32, B](maskRaw, backend)
	return input.Mul(mask)
}

// Parameters returns an empty slice (Dropout has no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map (Dropout has no state).
func (d *Dropout[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op for Dropout.
func (d *Dropout[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}
