package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"catscan/internal/config"
	"catscan/internal/samples"
)

// Result captures the outcome of one startup check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// minFreeBytes is the free-space floor for the log/database volume.
const minFreeBytes = 64 << 20

// Run evaluates every startup check for the given config. Failures are
// advisory: the daemon serves anyway and each classifier invocation fails
// per-image, so a half-configured install still renders something useful.
func Run(cfg *config.Config) []Result {
	return []Result{
		CheckClassifier(cfg.Paths.ClassifierBinary),
		CheckModel(cfg.Paths.ModelPath),
		CheckSamples(cfg.Paths.SamplesDir),
		CheckDiskSpace(cfg.Paths.LogDir),
	}
}

// CheckClassifier verifies the classifier binary exists and is executable.
func CheckClassifier(path string) Result {
	const name = "classifier binary"
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is a directory", path)}
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not executable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckModel verifies the model artifact exists and is non-empty.
func CheckModel(path string) Result {
	const name = "model artifact"
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() || info.Size() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s is empty", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSamples verifies the samples root is readable and counts its images.
func CheckSamples(root string) Result {
	const name = "samples directory"
	if err := unix.Access(root, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", root, err)}
	}
	count := samples.Count(root)
	if count == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s contains no images", root)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d images)", root, count)}
}

// CheckDiskSpace verifies the log/database volume has headroom left.
func CheckDiskSpace(dir string) Result {
	const name = "disk space"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s has only %d MiB free", dir, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", dir, free>>20)}
}
