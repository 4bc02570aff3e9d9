package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Summary is the JSON snapshot written after an experiment: per-cell mean
// and standard deviation across runs plus the configuration that produced
// them.
type Summary struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Config    Config      `json:"config"`
	Mean      [][]float64 `json:"mean"`
	Std       [][]float64 `json:"std"`
	FinalMean float64     `json:"final_mean"`
}

// experimentID builds the snapshot key, e.g.
// SPLIT_SYNTHETIC_mlp_ewc_20260828-153000.
func experimentID(cfg Config, now time.Time) string {
	return fmt.Sprintf("SPLIT_%s_%s_%s_%s",
		strings.ToUpper(cfg.Dataset), cfg.Arch, cfg.Method,
		now.Format("20060102-150405"))
}

// WriteSummary aggregates the record and writes the JSON snapshot into
// the configured log directory. Returns the snapshot path.
func WriteSummary(cfg Config, record *AccuracyRecord) (string, error) {
	finalMean, err := record.FinalMean()
	if err != nil {
		return "", err
	}

	now := time.Now()
	summary := Summary{
		ID:        experimentID(cfg, now),
		Timestamp: now.Format(time.RFC3339),
		Config:    cfg,
		Mean:      record.Mean(),
		Std:       record.Std(),
		FinalMean: finalMean,
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return "", fmt.Errorf("experiment: create log dir: %w", err)
	}

	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("experiment: encode summary: %w", err)
	}

	path := filepath.Join(cfg.LogDir, summary.ID+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("experiment: write summary: %w", err)
	}
	return path, nil
}

// AppendCrossValidation appends one hyperparameter result line to the
// dataset/method cross-validation log, creating it on first use. The file
// accumulates across invocations so a sweep's results end up side by side.
func AppendCrossValidation(cfg Config, finalMean float64) error {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("experiment: create log dir: %w", err)
	}

	path := filepath.Join(cfg.LogDir,
		fmt.Sprintf("%s_%s_cross_validation.txt", strings.ToLower(cfg.Dataset), cfg.Method))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("experiment: open cross-validation log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("ARCH: %s LR: %g LAMBDA: %g ACC: %.4f\n",
		cfg.Arch, cfg.LR, cfg.Lambda, finalMean)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("experiment: append cross-validation line: %w", err)
	}
	return nil
}
