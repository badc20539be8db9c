// cmd/claimcheck/root.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"claimcheck/internal/app"
	"claimcheck/internal/common/auth"
	"claimcheck/internal/common/config"
	"claimcheck/internal/common/database"
	"claimcheck/internal/common/logger"
)

const redisPingTimeout = 2 * time.Second

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
	json       bool
	noColor    bool
}

// env is everything a command needs once configuration has been read.
type env struct {
	services *app.Services
	gate     auth.Gate
	log      logger.Logger
	close    func()
}

type envBuilder func(ctx context.Context, opts *rootOptions) (*env, error)

// cli carries the flags and the lazily built env between commands.
type cli struct {
	opts  rootOptions
	build envBuilder
	env   *env
}

// Env builds the env on first use so that commands like "workers" run
// without a reachable backend or a valid config.
func (c *cli) Env(ctx context.Context) (*env, error) {
	if c.env != nil {
		return c.env, nil
	}
	e, err := c.build(ctx, &c.opts)
	if err != nil {
		return nil, err
	}
	c.env = e
	return e, nil
}

// color reports whether human-readable output to w may carry ANSI colour.
func (c *cli) color(w io.Writer) bool {
	if c.opts.noColor || c.opts.json || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// requireSession is a PreRunE for flows that need a signed-in user.
func (c *cli) requireSession(cmd *cobra.Command, _ []string) error {
	e, err := c.Env(cmd.Context())
	if err != nil {
		return err
	}
	return auth.Require(cmd.Context(), e.gate)
}

func newRootCmd(build envBuilder) *cobra.Command {
	c := &cli{build: build}

	root := &cobra.Command{
		Use:   "claimcheck",
		Short: "Verify product label claims against their ingredients",
		Long: `claimcheck checks whether a food product's marketing claims are
supported by its ingredient list. Labels can be typed in, read from a
product page URL or photographed and run through OCR.

Every verification, health and chat command requires a signed-in session.`,
		SilenceUsage: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.env != nil && c.env.close != nil {
				c.env.close()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.opts.configPath, "config", "", "config file (default is configs/config.yaml)")
	root.PersistentFlags().BoolVar(&c.opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&c.opts.json, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVar(&c.opts.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newVerifyCmd(c),
		newCropCmd(c),
		newOCRCmd(c),
		newHealthCmd(c),
		newChatCmd(c),
		newExploreCmd(c),
		newWorkersCmd(c),
	)
	return root
}

// buildEnv reads configuration and wires the services the CLI calls.
func buildEnv(ctx context.Context, opts *rootOptions) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if opts.debug {
		level = "debug"
	}
	zapLog := logger.New(logger.Options{Level: level, Format: cfg.Logging.Format, Output: "stderr"})
	log := logger.NewZapAdapter(zapLog)

	gate, err := auth.FromConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}

	var cache *database.RedisClient
	if cfg.Database.Redis.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		client, err := database.NewRedis(cfg.Database.Redis)
		if err == nil {
			err = client.Ping(pingCtx)
		}
		cancel()
		if err == nil {
			cache = client
		} else {
			log.Debug("catalog cache unavailable", map[string]interface{}{"address": cfg.Database.Redis.Address})
			if client != nil {
				client.Close()
			}
		}
	}

	services, err := app.New(cfg, cache, log)
	if err != nil {
		return nil, err
	}

	return &env{
		services: services,
		gate:     gate,
		log:      log,
		close: func() {
			if cache != nil {
				cache.Close()
			}
			_ = zapLog.Sync()
		},
	}, nil
}
