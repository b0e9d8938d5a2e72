package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"podscan/internal/config"
	"podscan/internal/logging"
	"podscan/internal/orchestrator"
	"podscan/internal/output"
)

type globalFlags struct {
	config   string
	root     string
	logLevel string
	verbose  bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Configuration
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once: file, then environment, then
// flags, then validation.
func (c *commandContext) ensureConfig() (*config.Configuration, error) {
	c.configOnce.Do(func() {
		cfg, err := c.loadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loadConfig applies flag overrides without validating.
func (c *commandContext) loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(strings.TrimSpace(c.flags.config))
	if err != nil {
		return nil, err
	}
	if root := strings.TrimSpace(c.flags.root); root != "" {
		cfg.MusicRoot = config.ExpandTilde(root)
	}
	if level := strings.TrimSpace(c.flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	return cfg, nil
}

// orchestrator builds an orchestrator writing operator output to the
// command's stdout and logs to its stderr.
func (c *commandContext) orchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, err
	}
	return orchestrator.NewOrchestrator(cfg,
		orchestrator.WithLogger(logger),
		orchestrator.WithOutput(c.output(cmd)),
	), nil
}

// logger builds the structured logger for cmd, tagged with its name.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Writer:  cmd.ErrOrStderr(),
		Command: cmd.Name(),
	})
}

func (c *commandContext) output(cmd *cobra.Command) *output.Output {
	w := cmd.OutOrStdout()
	return output.New(output.Config{
		Verbose:   c.flags.verbose,
		Writer:    w,
		ErrWriter: cmd.ErrOrStderr(),
		IsTTY:     isTerminal(w),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
