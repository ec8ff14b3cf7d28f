package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"remuxd/internal/config"
	"remuxd/internal/deps"
	"remuxd/internal/jobfile"
	"remuxd/internal/media"
	"remuxd/internal/media/probe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newProber() (*probe.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return probe.New(cfg.Mux.MkvmergeBinary)
}

// loadJobs parses a jobs file and resolves every definition against the
// probed primary files.
func (c *commandContext) loadJobs(ctx context.Context, path string) ([]media.Job, error) {
	file, err := jobfile.Load(path)
	if err != nil {
		return nil, err
	}
	prober, err := c.newProber()
	if err != nil {
		return nil, err
	}
	return jobfile.Resolve(ctx, prober, file)
}

// requireTools fails when a required external binary is missing, so a
// session never starts half-equipped.
func requireTools(cfg *config.Config, logger *slog.Logger) error {
	statuses := deps.CheckBinaries(deps.Requirements(
		cfg.Mux.MkvmergeBinary,
		cfg.Mux.MkvpropeditBinary,
		cfg.Mux.MediainfoBinary,
	))
	for _, status := range statuses {
		if status.Available || status.Optional {
			continue
		}
		return fmt.Errorf("required tool %s unavailable: %s (run `remuxd tools` for details)", status.Name, status.Detail)
	}
	if logger != nil {
		for _, status := range statuses {
			if status.Available {
				logger.Debug("tool detected", "name", status.Name, "version", status.Version)
			}
		}
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
