package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jask/dropselect/internal/config"
	"github.com/jask/dropselect/internal/keys"
)

// writeConfig saves the effective configuration to path (or config.Path()).
// An existing file is only replaced when force is set, and its settings are
// carried over.
func writeConfig(path string, force bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = config.Path()
	}

	exists := false
	if _, err := os.Stat(path); err == nil {
		exists = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if exists && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var (
		cfg config.Config
		err error
	)
	if exists {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}

	registry := keys.NewRegistry()
	if err := registry.ApplyOverrides(cfg.KeyOverrides()); err != nil {
		return "", fmt.Errorf("keys: %w", err)
	}
	cfg.SetKeyOverrides(registry.Export())

	if err := config.Save(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}
