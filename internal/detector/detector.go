package detector

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"catscan/internal/config"
	"catscan/internal/logging"
)

// Outcome is the per-image verdict produced by one classifier invocation.
// Invocation failures are folded into HasCat=false; Failure carries the
// reason for logging and run history only and never reaches the stream.
type Outcome struct {
	ItemID   int
	HasCat   bool
	Failure  string
	Duration time.Duration
}

// Runner abstracts command execution so tests never spawn real processes.
type Runner func(ctx context.Context, binary string, args []string, extraEnv []string) ([]byte, error)

func execRunner(ctx context.Context, binary string, args []string, extraEnv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	return cmd.CombinedOutput()
}

// Detector invokes the external classifier binary once per image under a
// wall-clock timeout. One short-lived child per call; no state is shared
// between calls, so a single Detector may serve concurrent runs.
type Detector struct {
	binary     string
	model      string
	libraryDir string
	timeout    time.Duration
	logger     *slog.Logger
	run        Runner
}

// New constructs a Detector from config.
func New(cfg *config.Config, logger *slog.Logger) *Detector {
	return NewWithRunner(cfg, logger, nil)
}

// NewWithRunner allows injecting a custom command runner for testing.
func NewWithRunner(cfg *config.Config, logger *slog.Logger, run Runner) *Detector {
	if run == nil {
		run = execRunner
	}
	return &Detector{
		binary:     cfg.Paths.ClassifierBinary,
		model:      cfg.Paths.ModelPath,
		libraryDir: cfg.ClassifierLibraryDir(),
		timeout:    time.Duration(cfg.Detector.TimeoutSeconds) * time.Second,
		logger:     logging.NewComponentLogger(logger, "detector"),
		run:        run,
	}
}

// Timeout reports the configured per-invocation deadline.
func (d *Detector) Timeout() time.Duration {
	return d.timeout
}

// Detect runs the classifier against one image and interprets its output.
// The external contract is informal: the binary prints the paths of matching
// images to stdout, so the verdict is positive iff the captured output
// contains the image's base name or absolute path as a substring. Any
// execution error (spawn failure, nonzero exit, timeout) downgrades to a
// negative outcome; Detect never returns an error.
func (d *Detector) Detect(ctx context.Context, itemID int, imagePath string) Outcome {
	started := time.Now()
	outcome := Outcome{ItemID: itemID}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	output, err := d.run(runCtx, d.binary, []string{imagePath, "--model", d.model}, d.childEnv())
	outcome.Duration = time.Since(started)

	if err != nil {
		outcome.Failure = invocationFailure(runCtx, err)
		d.logger.Warn("classifier invocation failed",
			logging.Int("item_id", itemID),
			logging.String("image", filepath.Base(imagePath)),
			logging.String("reason", outcome.Failure),
			logging.Duration("duration", outcome.Duration),
		)
		return outcome
	}

	stdout := string(output)
	outcome.HasCat = strings.Contains(stdout, filepath.Base(imagePath)) ||
		strings.Contains(stdout, imagePath)

	d.logger.Debug("classifier finished",
		logging.Int("item_id", itemID),
		logging.String("image", filepath.Base(imagePath)),
		logging.Bool("has_cat", outcome.HasCat),
		logging.Duration("duration", outcome.Duration),
	)
	return outcome
}

// childEnv builds the extra environment the classifier needs to locate its
// runtime shared libraries (the ONNX runtime ships next to the binary).
func (d *Detector) childEnv() []string {
	if strings.TrimSpace(d.libraryDir) == "" {
		return nil
	}
	ld := d.libraryDir
	if existing := os.Getenv("LD_LIBRARY_PATH"); existing != "" {
		ld = ld + string(os.PathListSeparator) + existing
	}
	return []string{
		"LD_LIBRARY_PATH=" + ld,
		"DYLD_LIBRARY_PATH=" + d.libraryDir,
	}
}

func invocationFailure(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return "timeout"
	}
	return err.Error()
}
