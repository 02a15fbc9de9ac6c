package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"catscan/internal/config"
	"catscan/internal/history"
	"catscan/internal/logging"
	"catscan/internal/preflight"
	"catscan/internal/samples"
	"catscan/internal/server"
)

// Daemon owns the long-running pieces of the harness: the single-instance
// lock, the run history store, and the HTTP server.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *history.Store
	server *server.Server

	logPath  string
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	Images       int
	Runs         int64
	DBPath       string
	LockFilePath string
	Preflight    []preflight.Result
}

// New constructs a daemon with initialized dependencies. store may be nil
// when run history is disabled.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "catscand.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		server:   srv,
		logPath:  filepath.Join(cfg.Paths.LogDir, "catscan.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins serving. Startup checks run
// first and log their verdicts; they never block startup, since every
// classifier invocation fails per-image on a half-configured install.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another catscan daemon instance is already running")
	}

	for _, check := range preflight.Run(d.cfg) {
		if check.Passed {
			d.logger.Info("startup check passed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
			continue
		}
		d.logger.Warn("startup check failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("catscan daemon started",
		logging.String("address", d.server.Addr()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("catscan daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the bound API address, or "" before Start.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		Address:      d.server.Addr(),
		Images:       samples.Count(d.cfg.Paths.SamplesDir),
		LockFilePath: d.lockPath,
		Preflight:    preflight.Run(d.cfg),
	}
	if d.store != nil {
		status.DBPath = d.store.Path()
		if count, err := d.store.RunCount(ctx); err == nil {
			status.Runs = count
		}
	}
	return status
}
