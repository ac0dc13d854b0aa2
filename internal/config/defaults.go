package config

// Supported object store backends.
const (
	BackendGCS    = "gcs"
	BackendS3     = "s3"
	BackendMinIO  = "minio"
	BackendMemory = "memory"
)

const (
	defaultConfigPath           = "~/.config/filewatcher/config.toml"
	defaultStateDir             = "~/.local/share/filewatcher"
	defaultBackend              = BackendGCS
	defaultPollIntervalSeconds  = 1.0
	defaultMaxCollisionAttempts = 5
	defaultLogFormat            = "auto"
	defaultLogLevel             = "info"
	defaultLoggingProject       = ""
	defaultS3Region             = "us-east-1"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Store: Store{
			Backend: defaultBackend,
			UseSSL:  true,
		},
		Watch: Watch{
			PollIntervalSeconds:  defaultPollIntervalSeconds,
			MaxCollisionAttempts: defaultMaxCollisionAttempts,
		},
		Logging: Logging{
			Format:  defaultLogFormat,
			Level:   defaultLogLevel,
			Project: defaultLoggingProject,
		},
		Journal: Journal{
			Enabled: true,
		},
	}
}
