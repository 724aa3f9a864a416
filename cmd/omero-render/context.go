package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ome/omero-cli-render/internal/config"
	"github.com/ome/omero-cli-render/internal/logging"
	"github.com/ome/omero-cli-render/internal/omero"
)

type commandContext struct {
	serverFlag  *string
	sessionFlag *string
	configFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	// dialGateway is swapped for a fake in tests.
	dialGateway func(*config.Config) (omero.Gateway, error)
}

func newCommandContext(serverFlag, sessionFlag, configFlag *string) *commandContext {
	ctx := &commandContext{
		serverFlag:  serverFlag,
		sessionFlag: sessionFlag,
		configFlag:  configFlag,
	}
	ctx.dialGateway = func(cfg *config.Config) (omero.Gateway, error) {
		return omero.NewClient(omero.ClientOptions{
			BaseURL:    cfg.Server.URL,
			SessionKey: cfg.Server.SessionKey,
			Timeout:    time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		})
	}
	return ctx
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
		if c.serverFlag != nil && strings.TrimSpace(*c.serverFlag) != "" {
			cfg.Server.URL = strings.TrimSpace(*c.serverFlag)
		}
		if c.sessionFlag != nil && strings.TrimSpace(*c.sessionFlag) != "" {
			cfg.Server.SessionKey = strings.TrimSpace(*c.sessionFlag)
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
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) gateway() (omero.Gateway, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return c.dialGateway(cfg)
}
