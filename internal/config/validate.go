package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDetector(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SamplesDir == "" {
		return errors.New("paths.samples_dir must be set")
	}
	if c.Paths.ModelPath == "" {
		return errors.New("paths.model_path must be set")
	}
	if c.Paths.ClassifierBinary == "" {
		return errors.New("paths.classifier_binary must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not a host:port address: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateDetector() error {
	if c.Detector.TimeoutSeconds > 600 {
		return errors.New("detector.timeout_seconds must be 600 or less")
	}
	return nil
}
