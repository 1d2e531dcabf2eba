package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"rotulo/internal/config"
	"rotulo/internal/connectivity"
	"rotulo/internal/imaging"
	"rotulo/internal/logging"
	"rotulo/internal/notifications"
	"rotulo/internal/queue"
	"rotulo/internal/services/blobstore"
	"rotulo/internal/services/identity"
	"rotulo/internal/services/recordstore"
	"rotulo/internal/submission"
	"rotulo/internal/syncer"
)

// commandContext lazily wires the subsystems a command needs. Config loads
// once; everything else builds per invocation on top of it.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
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

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openStore() (*queue.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return queue.Open(cfg)
}

func (c *commandContext) identityProvider() (*identity.Provider, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return identity.NewProvider(cfg), nil
}

// staticReachability freezes a one-shot probe result for the duration of a
// command.
type staticReachability bool

func (s staticReachability) Online() bool { return bool(s) }

// probeReachability runs a single reachability probe and returns the result
// as a Reachability for commands that need a decision now rather than a
// monitored state.
func (c *commandContext) probeReachability(ctx context.Context) (staticReachability, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return false, err
	}
	return staticReachability(connectivity.ProbeOnce(ctx, cfg)), nil
}

func (c *commandContext) recordStore() (*recordstore.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return recordstore.NewClient(cfg)
}

func (c *commandContext) blobStore() (*blobstore.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return blobstore.NewClient(cfg)
}

func (c *commandContext) buildCoordinator(store *queue.Store, network submission.Reachability) (*submission.Coordinator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	records, err := c.recordStore()
	if err != nil {
		return nil, err
	}
	blobs, err := c.blobStore()
	if err != nil {
		return nil, err
	}
	return submission.NewCoordinator(
		cfg, store, imaging.NewNormalizer(cfg),
		records, blobs, network,
		notifications.NewService(cfg), c.ensureLogger(),
	), nil
}

func (c *commandContext) buildReconciler(store *queue.Store, network syncer.Reachability) (*syncer.Reconciler, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	records, err := c.recordStore()
	if err != nil {
		return nil, err
	}
	blobs, err := c.blobStore()
	if err != nil {
		return nil, err
	}
	return syncer.New(cfg, store, records, blobs, network,
		notifications.NewService(cfg), c.ensureLogger()), nil
}
