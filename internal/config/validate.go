package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateRelocation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Naming.MoveEnabled && strings.TrimSpace(c.Paths.DestinationDir) == "" {
		return errors.New("paths.destination_dir must be set when naming.move_enabled is true")
	}
	return nil
}

func (c *Config) validateNaming() error {
	if !strings.Contains(c.Naming.Template, "%") {
		return fmt.Errorf("naming.template %q contains no replacement tokens", c.Naming.Template)
	}
	switch c.Naming.Numbering {
	case "guess", "aired", "disc", "absolute":
	default:
		return fmt.Errorf("naming.numbering: unsupported value %q (use guess, aired, disc, or absolute)", c.Naming.Numbering)
	}
	if strings.ContainsAny(c.Naming.SeasonPrefix, `/\`) {
		return fmt.Errorf("naming.season_prefix %q must not contain path separators", c.Naming.SeasonPrefix)
	}
	return nil
}

func (c *Config) validateRelocation() error {
	if c.Relocation.Workers > 32 {
		return fmt.Errorf("relocation.workers must be at most 32 (got %d)", c.Relocation.Workers)
	}
	if c.Relocation.CopyChunkBytes < 4096 {
		return fmt.Errorf("relocation.copy_chunk_bytes must be at least 4096 (got %d)", c.Relocation.CopyChunkBytes)
	}
	switch c.Relocation.DrainOrder {
	case "completion", "submission":
	default:
		return fmt.Errorf("relocation.drain_order: unsupported value %q (use completion or submission)", c.Relocation.DrainOrder)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
