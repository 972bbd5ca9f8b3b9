package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNaming()
	c.normalizeRelocation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DestinationDir, err = expandPath(strings.TrimSpace(c.Paths.DestinationDir)); err != nil {
		return fmt.Errorf("paths.destination_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

// normalizeNaming keeps the season prefix untrimmed: "Season " relies on its
// trailing space.
func (c *Config) normalizeNaming() {
	if strings.TrimSpace(c.Naming.Template) == "" {
		c.Naming.Template = defaultTemplate
	}
	c.Naming.Numbering = strings.ToLower(strings.TrimSpace(c.Naming.Numbering))
	if c.Naming.Numbering == "" {
		c.Naming.Numbering = defaultNumbering
	}
	keywords := make([]string, 0, len(c.Naming.IgnoreKeywords))
	seen := make(map[string]struct{}, len(c.Naming.IgnoreKeywords))
	for _, keyword := range c.Naming.IgnoreKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if _, ok := seen[keyword]; ok {
			continue
		}
		seen[keyword] = struct{}{}
		keywords = append(keywords, keyword)
	}
	c.Naming.IgnoreKeywords = keywords
}

func (c *Config) normalizeRelocation() {
	if c.Relocation.Workers <= 0 {
		c.Relocation.Workers = defaultWorkers
	}
	if c.Relocation.UnitTimeoutSeconds <= 0 {
		c.Relocation.UnitTimeoutSeconds = defaultUnitTimeoutSeconds
	}
	if c.Relocation.CopyChunkBytes <= 0 {
		c.Relocation.CopyChunkBytes = defaultCopyChunkBytes
	}
	c.Relocation.DrainOrder = strings.ToLower(strings.TrimSpace(c.Relocation.DrainOrder))
	if c.Relocation.DrainOrder == "" {
		c.Relocation.DrainOrder = defaultDrainOrder
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
