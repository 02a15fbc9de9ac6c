package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDetector()
	c.normalizeStream()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SamplesDir) == "" {
		c.Paths.SamplesDir = defaultSamplesDir
	}
	if c.Paths.SamplesDir, err = expandPath(c.Paths.SamplesDir); err != nil {
		return fmt.Errorf("paths.samples_dir: %w", err)
	}
	if c.Paths.ModelPath == "" {
		if value, ok := os.LookupEnv("CATSCAN_MODEL_PATH"); ok {
			c.Paths.ModelPath = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.ModelPath) == "" {
		c.Paths.ModelPath = defaultModelPath
	}
	if c.Paths.ModelPath, err = expandPath(c.Paths.ModelPath); err != nil {
		return fmt.Errorf("paths.model_path: %w", err)
	}
	if c.Paths.ClassifierBinary == "" {
		if value, ok := os.LookupEnv("CATSCAN_CLASSIFIER"); ok {
			c.Paths.ClassifierBinary = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.ClassifierBinary) == "" {
		c.Paths.ClassifierBinary = defaultClassifierBinary
	}
	if c.Paths.ClassifierBinary, err = expandPath(c.Paths.ClassifierBinary); err != nil {
		return fmt.Errorf("paths.classifier_binary: %w", err)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
			return fmt.Errorf("paths.library_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeDetector() {
	if c.Detector.TimeoutSeconds <= 0 {
		c.Detector.TimeoutSeconds = defaultDetectorTimeout
	}
}

func (c *Config) normalizeStream() {
	if c.Stream.ProcessingDelayMillis < 0 {
		c.Stream.ProcessingDelayMillis = 0
	}
	if c.Stream.ResultDelayMillis < 0 {
		c.Stream.ResultDelayMillis = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
