// Command lifelong runs continual-learning experiments: a sequence of
// classification tasks trained one after another, with a configurable
// forgetting-mitigation strategy and zero-shot attribute transfer.
//
// Usage:
//
//	lifelong -method ewc -arch mlp -runs 5
//	lifelong -config experiment.yaml -method gem
//
// Flags override values from the YAML config file.
package main

import (
	"flag"
	"log"

	"github.com/born-ml/lifelong/internal/backend/cpu"
	"github.com/born-ml/lifelong/internal/data"
	"github.com/born-ml/lifelong/internal/experiment"
	"github.com/born-ml/lifelong/internal/tensor"
)

func main() {
	log.SetFlags(log.LstdFlags)

	configPath := flag.String("config", "", "YAML experiment config (flags override it)")

	defaults := experiment.Defaults()
	arch := flag.String("arch", defaults.Arch, "model architecture (mlp, cnn)")
	method := flag.String("method", defaults.Method, "strategy (van, ewc, pi, mas, gem, rwalk)")
	optimName := flag.String("optim", defaults.Optim, "optimizer (sgd, momentum, adam)")
	lr := flag.Float64("lr", float64(defaults.LR), "learning rate")
	lambda := flag.Float64("lambda", float64(defaults.Lambda), "synaptic strength")
	batch := flag.Int("batch", defaults.Batch, "batch size")
	iters := flag.Int("iters", defaults.TrainIters, "training iterations per task")
	runs := flag.Int("runs", defaults.Runs, "independent runs")
	numTasks := flag.Int("tasks", defaults.NumTasks, "number of tasks")
	totalClasses := flag.Int("classes", defaults.TotalClasses, "total classes across tasks")
	memPerClass := flag.Int("mem", defaults.MemPerClass, "episodic memory / replay budget per class")
	sampling := flag.Bool("sampling", false, "enable the replay buffer with balanced sample weights")
	singleEpoch := flag.Bool("single-epoch", false, "one pass over each task's data instead of fixed iterations")
	singleHead := flag.Bool("single-head", false, "evaluate against the full attribute matrix")
	crossValidate := flag.Bool("cross-validate", false, "evaluate on train splits and append a CV line")
	parallelRuns := flag.Bool("parallel", false, "fan runs out over worker goroutines")
	seed := flag.Int64("seed", defaults.Seed, "base random seed")
	logDir := flag.String("log-dir", defaults.LogDir, "directory for result snapshots")
	saveModels := flag.Bool("save-models", false, "write per-task model checkpoints to the log dir")
	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := experiment.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "arch":
			cfg.Arch = *arch
		case "method":
			cfg.Method = *method
		case "optim":
			cfg.Optim = *optimName
		case "lr":
			cfg.LR = float32(*lr)
		case "lambda":
			cfg.Lambda = float32(*lambda)
		case "batch":
			cfg.Batch = *batch
		case "iters":
			cfg.TrainIters = *iters
		case "runs":
			cfg.Runs = *runs
		case "tasks":
			cfg.NumTasks = *numTasks
		case "classes":
			cfg.TotalClasses = *totalClasses
		case "mem":
			cfg.MemPerClass = *memPerClass
		case "sampling":
			cfg.Sampling = *sampling
		case "single-epoch":
			cfg.SingleEpoch = *singleEpoch
		case "single-head":
			cfg.SingleHead = *singleHead
		case "cross-validate":
			cfg.CrossValidate = *crossValidate
		case "parallel":
			cfg.ParallelRuns = *parallelRuns
		case "seed":
			cfg.Seed = *seed
		case "log-dir":
			cfg.LogDir = *logDir
		case "save-models":
			cfg.SaveModels = *saveModels
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	provider := &data.Synthetic{
		TotalClasses:  cfg.TotalClasses,
		AttrDim:       cfg.AttrDim,
		Feature:       featureShape(cfg),
		TrainPerClass: 200,
		TestPerClass:  50,
		Noise:         0.1,
		Seed:          cfg.Seed,
	}

	exp, err := experiment.New(cfg, provider, cpu.New)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}

	log.Printf("experiment: dataset=%s arch=%s method=%s optim=%s runs=%d tasks=%d",
		cfg.Dataset, cfg.Arch, cfg.Method, cfg.Optim, cfg.Runs, cfg.NumTasks)

	record, err := exp.Run()
	if err != nil {
		log.Fatalf("experiment failed: %v", err)
	}

	finalMean, err := record.FinalMean()
	if err != nil {
		log.Fatalf("aggregate: %v", err)
	}
	log.Printf("final mean accuracy over %d runs: %.4f", record.NumRuns(), finalMean)

	path, err := experiment.WriteSummary(cfg, record)
	if err != nil {
		log.Fatalf("write summary: %v", err)
	}
	log.Printf("summary written to %s", path)

	if cfg.CrossValidate {
		if err := experiment.AppendCrossValidation(cfg, finalMean); err != nil {
			log.Fatalf("cross-validation log: %v", err)
		}
	}
}

// featureShape picks the synthetic feature layout for the architecture:
// flat vectors for the mlp, small square images for the cnn.
func featureShape(cfg experiment.Config) tensor.Shape {
	if cfg.Arch == "cnn" {
		return tensor.Shape{1, 28, 28}
	}
	return tensor.Shape{64}
}
