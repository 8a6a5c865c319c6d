package main

import (
	"strings"
	"sync"

	"mimic/internal/config"
	"mimic/internal/daemon"
	"mimic/internal/identity"
	"mimic/internal/queue"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
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
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) catalog() (*identity.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return identity.NewCatalog(cfg.Paths.IdentitiesDir)
}

// withStore opens the queue database for the duration of fn. The daemon and
// the CLI share the database; SQLite's WAL mode keeps concurrent access safe.
func (c *commandContext) withStore(fn func(*config.Config, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	catalog, err := c.catalog()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg, queue.WithValidator(daemon.NewValidator(cfg, catalog)))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}
