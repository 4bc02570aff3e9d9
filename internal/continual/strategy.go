package continual

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/tensor"
)

// Valid strategy names. "van" is the unregularized baseline (vanilla).
const (
	MethodVan   = "van"
	MethodEWC   = "ewc"
	MethodPI    = "pi"
	MethodMAS   = "mas"
	MethodGEM   = "gem"
	MethodRWalk = "rwalk"
)

// ValidMethods lists the supported strategy names.
var ValidMethods = []string{MethodVan, MethodEWC, MethodPI, MethodMAS, MethodGEM, MethodRWalk}

// Strategy is one catastrophic-forgetting mitigation method.
//
// TrainStep performs one optimization step for a batch, including any
// method-specific bookkeeping (Fisher accumulation, omega updates,
// gradient projection). TaskBoundary consolidates state when a task's
// training finishes (it is not invoked after the final task). Reset
// clears all state between independent runs.
type Strategy[B tensor.Backend] interface {
	Name() string
	TrainStep(l *Learner[B], batch *Batch[B]) (loss float32, err error)
	TaskBoundary(l *Learner[B], task int, train data.Dataset, classes []int) error
	Reset()
}

// StrategyConfig carries the knobs shared by the strategy constructors.
type StrategyConfig struct {
	FisherEMADecay    float32          // running Fisher EMA decay (EWC, RWalk)
	FisherUpdateAfter int              // steps between running-Fisher commits (EWC, RWalk)
	MemoryPerClass    int              // episodic memory budget per class (GEM)
	BatchSize         int              // batch size for boundary importance passes (MAS)
	Attrs             *data.Attributes // global class-attribute matrix (GEM, MAS)
	RNG               *rand.Rand       // memory sampling (GEM)
}

// New constructs the named strategy.
//
// Unknown names are a configuration error, reported before any training
// work starts.
func New[B tensor.Backend](method string, cfg StrategyConfig) (Strategy[B], error) {
	switch method {
	case MethodVan:
		return NewVan[B](), nil
	case MethodEWC:
		return NewEWC[B](cfg.FisherEMADecay, cfg.FisherUpdateAfter), nil
	case MethodPI:
		return NewPI[B](), nil
	case MethodMAS:
		return NewMAS[B](cfg.Attrs, cfg.BatchSize), nil
	case MethodGEM:
		return NewGEM[B](cfg.Attrs, cfg.MemoryPerClass, cfg.RNG), nil
	case MethodRWalk:
		return NewRWalk[B](cfg.FisherEMADecay, cfg.FisherUpdateAfter), nil
	default:
		return nil, fmt.Errorf("continual: method %q is not supported (valid: %v)", method, ValidMethods)
	}
}
