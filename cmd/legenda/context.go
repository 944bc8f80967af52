package main

import (
	"fmt"
	"strings"

	"legenda/internal/config"
)

// commandContext lazily resolves configuration and the daemon address for
// subcommands.
type commandContext struct {
	addressFlag *string
	configFlag  *string

	cfg     *config.Config
	cfgPath string
}

func newCommandContext(addressFlag, configFlag *string) *commandContext {
	return &commandContext{addressFlag: addressFlag, configFlag: configFlag}
}

// ensureConfig loads the configuration once per invocation.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, resolved, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.cfgPath = resolved
	return cfg, nil
}

// apiAddress reports where the daemon is listening: the --address flag wins,
// then the configured bind address.
func (c *commandContext) apiAddress() (string, error) {
	if c.addressFlag != nil {
		if addr := strings.TrimSpace(*c.addressFlag); addr != "" {
			return addr, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.APIBind, nil
}
