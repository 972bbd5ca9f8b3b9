package config

const (
	defaultDestinationDir     = "~/TV"
	defaultLogDir             = "~/.local/share/tvshelf/logs"
	defaultDataDir            = "~/.local/share/tvshelf"
	defaultTemplate           = "%S [%sx%0e] %t"
	defaultSeasonPrefix       = "Season "
	defaultNumbering          = "guess"
	defaultWorkers            = 3
	defaultUnitTimeoutSeconds = 120
	defaultCopyChunkBytes     = 4 << 20
	defaultDrainOrder         = "completion"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DestinationDir: defaultDestinationDir,
			LogDir:         defaultLogDir,
			DataDir:        defaultDataDir,
		},
		Naming: Naming{
			Template:        defaultTemplate,
			SeasonPrefix:    defaultSeasonPrefix,
			LeadingZero:     false,
			MoveEnabled:     true,
			RenameEnabled:   true,
			RemoveEmptyDirs: false,
			IgnoreKeywords:  []string{"sample"},
			Numbering:       defaultNumbering,
		},
		Relocation: Relocation{
			Workers:            defaultWorkers,
			UnitTimeoutSeconds: defaultUnitTimeoutSeconds,
			CopyChunkBytes:     defaultCopyChunkBytes,
			TouchOnMove:        true,
			DrainOrder:         defaultDrainOrder,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
