// Package model builds zero-shot attribute classifiers for the
// continual-learning experiments.
//
// A classifier maps an image to an embedding in attribute space; class
// scores are the dot products of that embedding with every class's
// attribute vector. Masking a class's attribute row to zero therefore
// removes it from consideration, which is how the sequencer restricts
// training and multi-head evaluation to a task's label subset.
package model

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lifelong/internal/nn"
	"github.com/born-ml/lifelong/internal/tensor"
)

// Valid architecture names.
const (
	ArchMLP = "mlp"
	ArchCNN = "cnn"
)

// ValidArchs lists the supported architecture names.
var ValidArchs = []string{ArchMLP, ArchCNN}

// Config describes a classifier to build.
type Config struct {
	Arch     string
	Feature  tensor.Shape // per-example input shape: {D} for mlp, {C, H, W} for cnn
	Hidden   int          // width of the hidden layer feeding the attribute embedding
	AttrDim  int          // attribute-space dimensionality
	KeepProb float32      // dropout keep probability during training
}

// ZeroShot scores images against a class-attribute matrix.
//
//	logits = dropout(φ(x)) @ Wattr, scored against attrsᵀ
//
// φ is the architecture-specific feature extractor; Wattr embeds features
// into attribute space. The attribute matrix is supplied per call so the
// sequencer can swap masked and unmasked matrices freely.
type ZeroShot[B tensor.Backend] struct {
	features  *nn.Sequential[B]
	dropout   *nn.Dropout[B]
	embed     *nn.Linear[B]
	feature   tensor.Shape
	flatten   int // width after the feature stack, before embed
	convInput bool
	backend   B
}

// New builds a classifier for the given architecture.
//
// Returns an error for unknown architecture names; this is checked again
// by experiment.Config.Validate before any training starts.
func New[B tensor.Backend](cfg Config, rng *rand.Rand, backend B) (*ZeroShot[B], error) {
	switch cfg.Arch {
	case ArchMLP:
		return newMLP(cfg, rng, backend)
	case ArchCNN:
		return newCNN(cfg, rng, backend)
	default:
		return nil, fmt.Errorf("model: architecture %q is not supported (valid: %v)", cfg.Arch, ValidArchs)
	}
}

func newMLP[B tensor.Backend](cfg Config, rng *rand.Rand, backend B) (*ZeroShot[B], error) {
	if len(cfg.Feature) != 1 {
		return nil, fmt.Errorf("model: mlp wants a flat feature shape, got %v", cfg.Feature)
	}

	in := cfg.Feature[0]
	features := nn.NewSequential[B](
		nn.NewLinear[B](in, cfg.Hidden, backend),
		nn.NewReLU[B](),
	)

	return &ZeroShot[B]{
		features: features,
		dropout:  nn.NewDropout[B](cfg.KeepProb, rng),
		embed:    nn.NewLinear[B](cfg.Hidden, cfg.AttrDim, backend),
		feature:  cfg.Feature,
		flatten:  cfg.Hidden,
		backend:  backend,
	}, nil
}

func newCNN[B tensor.Backend](cfg Config, rng *rand.Rand, backend B) (*ZeroShot[B], error) {
	if len(cfg.Feature) != 3 {
		return nil, fmt.Errorf("model: cnn wants a [C, H, W] feature shape, got %v", cfg.Feature)
	}

	channels, height, width := cfg.Feature[0], cfg.Feature[1], cfg.Feature[2]

	conv1 := nn.NewConv2D[B](channels, 6, 5, 5, 1, 2, true, backend)
	pool1 := nn.NewMaxPool2D[B](2, 2, backend)
	conv2 := nn.NewConv2D[B](6, 16, 5, 5, 1, 0, true, backend)
	pool2 := nn.NewMaxPool2D[B](2, 2, backend)

	// Track spatial dims through the stack to size the hidden layer.
	h, w := height, width // conv1 padding preserves size
	h, w = h/2, w/2
	h, w = h-4, w-4 // conv2, no padding
	h, w = h/2, w/2
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("model: input %dx%d too small for the cnn stack", height, width)
	}
	flatWidth := 16 * h * w

	convStack := nn.NewSequential[B](conv1, pool1, conv2, pool2)
	head := nn.NewSequential[B](
		nn.NewLinear[B](flatWidth, cfg.Hidden, backend),
		nn.NewReLU[B](),
	)

	return &ZeroShot[B]{
		features:  nn.NewSequential[B](convStack, head),
		dropout:   nn.NewDropout[B](cfg.KeepProb, rng),
		embed:     nn.NewLinear[B](cfg.Hidden, cfg.AttrDim, backend),
		feature:   cfg.Feature,
		flatten:   flatWidth,
		convInput: true,
		backend:   backend,
	}, nil
}

// SetTraining toggles dropout between training and evaluation behavior.
func (m *ZeroShot[B]) SetTraining(training bool) {
	m.dropout.SetTraining(training)
}

// Embed computes the attribute-space embedding of a batch of images.
//
// Input shape: [batch, Feature...]. Output shape: [batch, attrDim].
func (m *ZeroShot[B]) Embed(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x := input
	if m.convInput {
		// Conv stack wants [batch, C, H, W]; the head wants [batch, flat].
		conv := m.features.Module(0)
		head := m.features.Module(1)

		x = conv.Forward(x)
		batch := x.Shape()[0]
		x = x.Reshape(batch, m.flatten)
		x = head.Forward(x)
	} else {
		x = m.features.Forward(x)
	}

	x = m.dropout.Forward(x)
	return m.embed.Forward(x)
}

// Forward scores a batch of images against a class-attribute matrix.
//
// attrs has shape [numClasses, attrDim]; rows of zeroes (masked classes)
// yield zero scores. Returns logits of shape [batch, numClasses].
func (m *ZeroShot[B]) Forward(input, attrs *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	embedding := m.Embed(input)
	return embedding.MatMul(attrs.T())
}

// Parameters returns all trainable parameters.
func (m *ZeroShot[B]) Parameters() []*nn.Parameter[B] {
	params := m.features.Parameters()
	return append(params, m.embed.Parameters()...)
}

// StateDict exports all parameters with "features." and "embed." prefixes.
func (m *ZeroShot[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for name, raw := range m.features.StateDict() {
		stateDict["features."+name] = raw
	}
	for name, raw := range m.embed.StateDict() {
		stateDict["embed."+name] = raw
	}
	return stateDict
}

// LoadStateDict restores all parameters from a StateDict export.
func (m *ZeroShot[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	featureState := make(map[string]*tensor.RawTensor)
	embedState := make(map[string]*tensor.RawTensor)

	for name, raw := range stateDict {
		switch {
		case len(name) > 9 && name[:9] == "features.":
			featureState[name[9:]] = raw
		case len(name) > 6 && name[:6] == "embed.":
			embedState[name[6:]] = raw
		default:
			return fmt.Errorf("model: unknown state dict key %q", name)
		}
	}

	if err := m.features.LoadStateDict(featureState); err != nil {
		return fmt.Errorf("model: features: %w", err)
	}
	if err := m.embed.LoadStateDict(embedState); err != nil {
		return fmt.Errorf("model: embed: %w", err)
	}
	return nil
}
