// Package config defines the service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/warehall/stockroom/pkg/config"
	"github.com/warehall/stockroom/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

var validate = validator.New()

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Database   config.DatabaseConfig `koanf:"database"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	Auth       AuthConfig            `koanf:"auth"`
	Inventory  InventoryConfig       `koanf:"inventory"`
}

// AuthUser is one static credential pair.
type AuthUser struct {
	Login    string `koanf:"login"    validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

// AuthConfig declares the two static accounts: Reader holds the read-only
// role, Admin additionally holds the CRUD role.
type AuthConfig struct {
	Reader AuthUser `koanf:"reader" validate:"required"`
	Admin  AuthUser `koanf:"admin"  validate:"required"`
}

// InventoryConfig holds domain tunables.
type InventoryConfig struct {
	// LeftoverThreshold is the quantity below which a product counts as a
	// leftover.
	LeftoverThreshold int32 `koanf:"leftoverThreshold" validate:"gte=0"`
}

// Defaults is the lowest-priority configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                 8080,
		"server.maxHeaderBytes":       1 << 20,
		"server.timeout.read":         "5s",
		"server.timeout.write":        "10s",
		"server.timeout.idle":         "120s",
		"server.timeout.readHeader":   "5s",
		"database.timeout":            "5s",
		"log.level":                   "info",
		"pprof.enabled":               false,
		"pprof.addr":                  "localhost:6060",
		"shutdown.timeout":            "10s",
		"inventory.leftoverThreshold": 5,
	}
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))

	b.WriteString("\n--- Database Configuration ---\n")
	b.WriteString(fmt.Sprintf("  database.url: %s\n", c.Database.MaskedURL()))
	b.WriteString(fmt.Sprintf("  database.timeout: %s\n", c.Database.Timeout))

	b.WriteString("\n--- Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))
	b.WriteString(fmt.Sprintf("  auth.reader.login: %s\n", c.Auth.Reader.Login))
	b.WriteString(fmt.Sprintf("  auth.admin.login: %s\n", c.Auth.Admin.Login))
	b.WriteString(fmt.Sprintf("  inventory.leftoverThreshold: %d\n", c.Inventory.LeftoverThreshold))

	return b.String()
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c.Auth); err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}
	if err := validate.Struct(c.Inventory); err != nil {
		return fmt.Errorf("invalid inventory configuration: %w", err)
	}
	if c.Auth.Reader.Login == c.Auth.Admin.Login {
		return fmt.Errorf("auth reader and admin logins must differ")
	}
	return nil
}
