package config

const (
	defaultAssetsDir            = "~/assets"
	defaultLogDir               = "~/.local/share/atlastag/logs"
	defaultOracleBinary         = "claude"
	defaultOracleModel          = "sonnet"
	defaultOracleTimeoutSeconds = 120
	defaultVerifyTimeoutSeconds = 180
	defaultOracleMaxAttempts    = 3
	defaultBatchSize            = 12
	defaultVerifyBatchSize      = 36
	defaultTileScale            = 8
	defaultGridColumns          = 4
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetsDir: defaultAssetsDir,
			LogDir:    defaultLogDir,
		},
		Oracle: Oracle{
			Binary:               defaultOracleBinary,
			Model:                defaultOracleModel,
			TimeoutSeconds:       defaultOracleTimeoutSeconds,
			VerifyTimeoutSeconds: defaultVerifyTimeoutSeconds,
			MaxAttempts:          defaultOracleMaxAttempts,
		},
		Enrich: Enrich{
			BatchSize:       defaultBatchSize,
			VerifyBatchSize: defaultVerifyBatchSize,
			TileScale:       defaultTileScale,
			GridColumns:     defaultGridColumns,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
