// Package experiment drives continual-learning experiments: configuration,
// the task sequencer, the evaluator, early stopping, and accuracy
// aggregation/reporting across runs.
package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/lifelong/internal/continual"
	"github.com/born-ml/lifelong/internal/model"
)

// Valid optimizer names.
const (
	OptimSGD      = "sgd"
	OptimMomentum = "momentum"
	OptimAdam     = "adam"
)

// ValidOptims lists the supported optimizer names.
var ValidOptims = []string{OptimSGD, OptimMomentum, OptimAdam}

// Config is one experiment's full parameterization.
//
// Zero values are not meaningful; start from Defaults() and override,
// either from a YAML file (LoadFile) or from CLI flags.
type Config struct {
	Dataset string `yaml:"dataset"` // dataset name, used in report IDs
	Arch    string `yaml:"arch"`    // model architecture: mlp, cnn
	Method  string `yaml:"method"`  // strategy: van, ewc, pi, mas, gem, rwalk
	Optim   string `yaml:"optim"`   // optimizer: sgd, momentum, adam

	LR       float32 `yaml:"lr"`
	Momentum float32 `yaml:"momentum"` // momentum factor (optim=momentum)

	Batch      int `yaml:"batch"`
	TrainIters int `yaml:"train_iters"` // iterations per task (fixed-iters mode)
	Runs       int `yaml:"runs"`        // independent runs to aggregate

	NumTasks     int `yaml:"num_tasks"`
	TotalClasses int `yaml:"total_classes"`
	AttrDim      int `yaml:"attr_dim"`
	Hidden       int `yaml:"hidden"`

	KeepProb float32 `yaml:"keep_prob"` // dropout keep probability

	Lambda            float32 `yaml:"lambda"`              // synaptic strength
	FisherEMADecay    float32 `yaml:"fisher_ema_decay"`    // EWC/RWalk
	FisherUpdateAfter int     `yaml:"fisher_update_after"` // EWC/RWalk
	MemPerClass       int     `yaml:"mem_per_class"`       // GEM memory / replay budget

	Sampling      bool `yaml:"sampling"`       // replay buffer + balanced weights
	SingleEpoch   bool `yaml:"single_epoch"`   // one pass over the data per task
	SingleHead    bool `yaml:"single_head"`    // evaluate against the full attribute matrix
	CrossValidate bool `yaml:"cross_validate"` // evaluate on train splits, append CV line

	Seed         int64  `yaml:"seed"`
	LogDir       string `yaml:"log_dir"`
	SaveModels   bool   `yaml:"save_models"`   // write per-task model checkpoints under LogDir
	ParallelRuns bool   `yaml:"parallel_runs"` // fan runs out over worker goroutines
}

// Defaults returns the standard experiment configuration.
func Defaults() Config {
	return Config{
		Dataset:           "synthetic",
		Arch:              model.ArchMLP,
		Method:            continual.MethodVan,
		Optim:             OptimSGD,
		LR:                0.1,
		Momentum:          0.9,
		Batch:             16,
		TrainIters:        2000,
		Runs:              5,
		NumTasks:          5,
		TotalClasses:      20,
		AttrDim:           32,
		Hidden:            64,
		KeepProb:          0.8,
		Lambda:            75000,
		FisherEMADecay:    0.9,
		FisherUpdateAfter: 50,
		MemPerClass:       25,
		Seed:              1234,
		LogDir:            "results",
	}
}

// LoadFile reads a YAML experiment file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("experiment: read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("experiment: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unusable configurations before any training work
// starts. Name checks (architecture, method, optimizer) fail here rather
// than mid-experiment.
func (c Config) Validate() error {
	if !contains(model.ValidArchs, c.Arch) {
		return fmt.Errorf("experiment: architecture %q is not supported (valid: %v)", c.Arch, model.ValidArchs)
	}
	if !contains(continual.ValidMethods, c.Method) {
		return fmt.Errorf("experiment: method %q is not supported (valid: %v)", c.Method, continual.ValidMethods)
	}
	if !contains(ValidOptims, c.Optim) {
		return fmt.Errorf("experiment: optimizer %q is not supported (valid: %v)", c.Optim, ValidOptims)
	}
	if c.LR <= 0 {
		return fmt.Errorf("experiment: learning rate must be positive, got %g", c.LR)
	}
	if c.Batch <= 0 {
		return fmt.Errorf("experiment: batch size must be positive, got %d", c.Batch)
	}
	if c.Runs <= 0 {
		return fmt.Errorf("experiment: runs must be positive, got %d", c.Runs)
	}
	if c.NumTasks <= 0 {
		return fmt.Errorf("experiment: num tasks must be positive, got %d", c.NumTasks)
	}
	if c.TotalClasses <= 0 || c.TotalClasses%c.NumTasks != 0 {
		return fmt.Errorf("experiment: %d classes not divisible into %d tasks", c.TotalClasses, c.NumTasks)
	}
	if !c.SingleEpoch && c.TrainIters <= 0 {
		return fmt.Errorf("experiment: train iters must be positive, got %d", c.TrainIters)
	}
	if c.KeepProb <= 0 || c.KeepProb > 1 {
		return fmt.Errorf("experiment: keep prob must be in (0, 1], got %g", c.KeepProb)
	}
	if c.Method == continual.MethodGEM && c.MemPerClass <= 0 {
		return fmt.Errorf("experiment: gem needs a positive per-class memory budget, got %d", c.MemPerClass)
	}
	return nil
}

func contains(valid []string, name string) bool {
	for _, v := range valid {
		if v == name {
			return true
		}
	}
	return false
}
