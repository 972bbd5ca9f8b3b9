package testsupport

import (
	"path/filepath"
	"testing"

	"tvshelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DestinationDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Relocation.Workers = 2
	cfgVal.Relocation.UnitTimeoutSeconds = 10
	cfgVal.Relocation.CopyChunkBytes = 4096

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTemplate overrides the rename template.
func WithTemplate(template string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Naming.Template = template
	}
}

// WithSeasonPrefix overrides the season folder prefix. An empty prefix
// disables season folders.
func WithSeasonPrefix(prefix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Naming.SeasonPrefix = prefix
	}
}

// WithMoveDisabled keeps files in their current directory.
func WithMoveDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Naming.MoveEnabled = false
	}
}

// WithRenameDisabled keeps current basenames.
func WithRenameDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Naming.RenameEnabled = false
	}
}

// WithNumbering sets the episode ordering preference.
func WithNumbering(numbering string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Naming.Numbering = numbering
	}
}

// WithWorkers sets the relocation pool size.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Relocation.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// SourceDir returns a directory under the test root for incoming files.
func SourceDir(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "incoming")
}
