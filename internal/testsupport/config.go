package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"catscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Stream pacing is zeroed so event-ordering tests run without wall-clock
// waits. It applies any provided options on top.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SamplesDir = filepath.Join(base, "samples")
	cfgVal.Paths.ModelPath = filepath.Join(base, "models", "yolov8n.onnx")
	cfgVal.Paths.ClassifierBinary = filepath.Join(base, "bin", "cat-finder")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Stream.ProcessingDelayMillis = 0
	cfgVal.Stream.ResultDelayMillis = 0

	if err := os.MkdirAll(cfgVal.Paths.SamplesDir, 0o755); err != nil {
		t.Fatalf("mkdir samples dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSamples writes empty sample files (relative names) under the samples dir.
func WithSamples(names ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, name := range names {
			WriteSample(b.t, filepath.Join(b.cfg.Paths.SamplesDir, name))
		}
	}
}

// WithStubClassifier writes an executable shell stub at the configured
// classifier path. The script body decides the stub's stdout and exit code.
func WithStubClassifier(script string) ConfigOption {
	return func(b *configBuilder) {
		target := b.cfg.Paths.ClassifierBinary
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
			b.t.Fatalf("write stub classifier: %v", err)
		}
	}
}

// WithModelFile writes a placeholder model artifact at the configured path.
func WithModelFile() ConfigOption {
	return func(b *configBuilder) {
		WriteSample(b.t, b.cfg.Paths.ModelPath)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SamplesDir)
}
