package experiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/lifelong/internal/serialization"
	"github.com/born-ml/lifelong/internal/tensor"
)

// checkpointPath names the per-run, per-task model file under the log dir.
func checkpointPath(dir string, run, task int) string {
	return filepath.Join(dir, fmt.Sprintf("model_run%d_task%d.born", run, task))
}

// saveCheckpoint writes the classifier weights in .born format. arch is
// recorded as the model type and method lands in the file metadata so a
// checkpoint can be matched back to the strategy that produced it.
func saveCheckpoint(path, arch, method string, state map[string]*tensor.RawTensor) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("experiment: checkpoint dir: %w", err)
	}

	writer, err := serialization.NewBornWriter(path)
	if err != nil {
		return fmt.Errorf("experiment: checkpoint %s: %w", path, err)
	}
	defer func() {
		_ = writer.Close()
	}()

	if err := writer.WriteStateDict(state, arch, map[string]string{"method": method}); err != nil {
		return fmt.Errorf("experiment: checkpoint %s: %w", path, err)
	}
	return nil
}
