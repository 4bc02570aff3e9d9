package experiment

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"runtime"

	"github.com/born-ml/lifelong/internal/autodiff"
	"github.com/born-ml/lifelong/internal/continual"
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/model"
	"github.com/born-ml/lifelong/internal/optim"
	"github.com/born-ml/lifelong/internal/parallel"
	"github.com/born-ml/lifelong/internal/tensor"
)

// Experiment runs a configured task sequence for several independent
// runs and aggregates the per-task accuracies.
//
// B is the inner compute backend; every run wraps a fresh instance in its
// own autodiff decorator so parallel runs never share a tape, parameters
// or optimizer state.
type Experiment[B tensor.Backend] struct {
	cfg        Config
	tasks      []data.Task
	attrs      *data.Attributes
	newBackend func() B
}

// New validates the configuration, loads the task sequence from the
// provider and prepares an experiment.
func New[B tensor.Backend](cfg Config, provider data.Provider, newBackend func() B) (*Experiment[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	splits, err := data.SplitClasses(cfg.TotalClasses, cfg.NumTasks)
	if err != nil {
		return nil, err
	}

	tasks, attrs, err := provider.Load(splits)
	if err != nil {
		return nil, fmt.Errorf("experiment: load tasks: %w", err)
	}
	if len(tasks) != cfg.NumTasks {
		return nil, fmt.Errorf("experiment: provider built %d tasks, config wants %d", len(tasks), cfg.NumTasks)
	}

	return &Experiment[B]{cfg: cfg, tasks: tasks, attrs: attrs, newBackend: newBackend}, nil
}

// Tasks returns the loaded task sequence.
func (e *Experiment[B]) Tasks() []data.Task { return e.tasks }

// Attrs returns the global class-attribute matrix.
func (e *Experiment[B]) Attrs() *data.Attributes { return e.attrs }

// Run executes all configured runs and returns the aggregated record.
//
// A fatal run error (numeric divergence, backend failure) aborts the
// whole experiment.
func (e *Experiment[B]) Run() (*AccuracyRecord, error) {
	results := make([][][]float32, e.cfg.Runs)
	errs := make([]error, e.cfg.Runs)

	runOne := func(run int) {
		results[run], errs[run] = e.runOne(run)
	}

	if e.cfg.ParallelRuns {
		parallel.For(e.cfg.Runs, runOne, parallel.Config{
			Enabled:      true,
			NumWorkers:   min(runtime.NumCPU(), e.cfg.Runs),
			MinChunkSize: 1,
		})
	} else {
		for run := 0; run < e.cfg.Runs; run++ {
			runOne(run)
		}
	}

	record := &AccuracyRecord{}
	for run := 0; run < e.cfg.Runs; run++ {
		if errs[run] != nil {
			return nil, fmt.Errorf("experiment: run %d: %w", run, errs[run])
		}
		record.AddRun(results[run])
	}
	return record, nil
}

// runOne trains the full task sequence once with fresh state.
func (e *Experiment[B]) runOne(run int) ([][]float32, error) {
	cfg := e.cfg
	rng := rand.New(rand.NewSource(cfg.Seed + int64(run)))

	backend := autodiff.New(e.newBackend())

	classifier, err := model.New(model.Config{
		Arch:     cfg.Arch,
		Feature:  e.tasks[0].Train.Feature,
		Hidden:   cfg.Hidden,
		AttrDim:  e.attrs.Dim,
		KeepProb: cfg.KeepProb,
	}, rng, backend)
	if err != nil {
		return nil, err
	}

	optimizer, err := newOptimizer(cfg, classifier, backend)
	if err != nil {
		return nil, err
	}

	learner := &continual.Learner[B]{
		Backend:   backend,
		Model:     classifier,
		Optimizer: optimizer,
		Lambda:    cfg.Lambda,
	}

	strategy, err := continual.New[B](cfg.Method, continual.StrategyConfig{
		FisherEMADecay:    cfg.FisherEMADecay,
		FisherUpdateAfter: cfg.FisherUpdateAfter,
		MemoryPerClass:    cfg.MemPerClass,
		BatchSize:         cfg.Batch,
		Attrs:             e.attrs,
		RNG:               rng,
	})
	if err != nil {
		return nil, err
	}
	strategy.Reset()

	weightFn := data.WeightFunc(data.UniformWeights)
	if cfg.Sampling {
		weightFn = data.BalancedWeights
	}

	var replay *data.ReplayBuffer
	if cfg.Sampling {
		replay = data.NewReplayBuffer(cfg.MemPerClass)
	}

	var (
		accuracies  [][]float32
		snapshot    continual.Stats
		seenClasses []int
	)

	for taskIdx, task := range e.tasks {
		// Later tasks start from the snapshot taken after the previous
		// task's training, not from whatever state evaluation left.
		if snapshot != nil {
			learner.RestoreParams(snapshot)
		}

		seenClasses = append(seenClasses, task.Classes...)

		train := task.Train
		if replay != nil && taskIdx > 0 {
			train = data.Concat(train, replay.Data())
		}

		weights := weightFn(train.Labels, seenClasses)
		train, perm := train.Shuffle(rng)
		weights = data.PermuteFloats(weights, perm)

		if err := e.trainTask(learner, strategy, run, taskIdx, train, task.Classes, weights); err != nil {
			return nil, err
		}

		// Consolidate before the next task; the final task has no
		// successor to protect against.
		if taskIdx < len(e.tasks)-1 {
			if err := strategy.TaskBoundary(learner, taskIdx, task.Train, task.Classes); err != nil {
				return nil, fmt.Errorf("task %d boundary: %w", taskIdx, err)
			}
			if replay != nil {
				replay.Add(task.Train, task.Classes, rng)
			}
		}

		row, err := e.Evaluate(learner, taskIdx+1)
		if err != nil {
			return nil, fmt.Errorf("task %d evaluation: %w", taskIdx, err)
		}
		accuracies = append(accuracies, row)
		log.Printf("run %d task %d accuracies %v", run, taskIdx, row)

		snapshot = learner.ParamValues()
		optimizer.Reset()

		if cfg.SaveModels {
			path := checkpointPath(cfg.LogDir, run, taskIdx)
			if err := saveCheckpoint(path, cfg.Arch, cfg.Method, classifier.StateDict()); err != nil {
				return nil, err
			}
		}
	}

	return accuracies, nil
}

// trainTask runs the iteration loop of one task.
func (e *Experiment[B]) trainTask(
	learner *continual.Learner[B],
	strategy continual.Strategy[B],
	run, taskIdx int,
	train data.Dataset,
	classes []int,
	weights []float32,
) error {
	cfg := e.cfg

	attrs, err := data.AttrTensor(e.attrs.Masked(classes), learner.Backend)
	if err != nil {
		return err
	}

	batchSize := cfg.Batch
	if train.Len() < batchSize {
		batchSize = train.Len()
	}

	iters := cfg.TrainIters
	if cfg.SingleEpoch {
		iters = train.Len() / batchSize
	}

	stopper := newEarlyStopper()
	residual := train.Len() - batchSize

	for iter := 0; iter < iters; iter++ {
		if cfg.Optim == OptimMomentum {
			learner.Optimizer.SetLR(momentumLR(cfg.LR, iter, iters))
		}

		offset := 0
		if residual > 0 {
			offset = (iter * batchSize) % residual
		}

		images, labels, err := data.Batch(train, offset, batchSize, learner.Backend)
		if err != nil {
			return fmt.Errorf("task %d iteration %d: %w", taskIdx, iter, err)
		}
		batchWeights, err := continual.WeightsTensor(weights[offset:offset+batchSize], learner.Backend.Device())
		if err != nil {
			return fmt.Errorf("task %d iteration %d: %w", taskIdx, iter, err)
		}

		loss, err := strategy.TrainStep(learner, &continual.Batch[B]{
			Images:  images,
			Labels:  labels,
			Attrs:   attrs,
			Weights: batchWeights,
			Task:    taskIdx,
			Iter:    iter,
			Iters:   iters,
		})
		if err != nil {
			return fmt.Errorf("task %d iteration %d: %w", taskIdx, iter, err)
		}

		if iter%100 == 0 {
			log.Printf("run %d task %d iter %d/%d loss=%.4f", run, taskIdx, iter, iters, loss)
		}

		if cfg.SingleEpoch && midEvalDue(iter) {
			row, err := e.Evaluate(learner, taskIdx+1)
			if err != nil {
				return fmt.Errorf("task %d iteration %d: %w", taskIdx, iter, err)
			}
			log.Printf("run %d task %d iter %d accuracies %v", run, taskIdx, iter, row)
		}

		if stopper.Record(iter, loss) {
			log.Printf("run %d task %d early stop at iter %d loss=%.4f", run, taskIdx, iter, loss)
			break
		}
	}
	return nil
}

// momentumLR is the polynomial decay schedule applied with the momentum
// optimizer: lr·(1-iter/iters)^0.9, restarting from the base rate on
// every task.
func momentumLR(base float32, iter, iters int) float32 {
	frac := 1 - float64(iter)/float64(iters)
	return base * float32(math.Pow(frac, 0.9))
}

// midEvalDue is the in-task evaluation cadence for single-epoch training:
// dense at the start, then sparse.
func midEvalDue(iter int) bool {
	if iter == 0 {
		return false
	}
	if iter <= 50 {
		return iter%5 == 0
	}
	return iter%50 == 0
}

// newOptimizer builds the configured optimizer over the model parameters.
func newOptimizer[B tensor.Backend](
	cfg Config,
	classifier *model.ZeroShot[*autodiff.AutodiffBackend[B]],
	backend *autodiff.AutodiffBackend[B],
) (optim.Optimizer, error) {
	params := classifier.Parameters()
	switch cfg.Optim {
	case OptimSGD:
		return optim.NewSGD(params, optim.SGDConfig{LR: cfg.LR}, backend), nil
	case OptimMomentum:
		return optim.NewSGD(params, optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}, backend), nil
	case OptimAdam:
		return optim.NewAdam(params, optim.AdamConfig{LR: cfg.LR}, backend), nil
	default:
		return nil, fmt.Errorf("experiment: optimizer %q is not supported (valid: %v)", cfg.Optim, ValidOptims)
	}
}
