package config

const (
	defaultDataDir           = "~/.local/share/rotulo"
	defaultLogDir            = "~/.local/share/rotulo/logs"
	defaultAppID             = "inventario-hospital"
	defaultRemoteTimeout     = 30
	defaultUploadTimeout     = 60
	defaultURLExpiryHours    = 24 * 7
	defaultMaxImageWidth     = 1200
	defaultJPEGQuality       = 70
	defaultMaxAttachments    = 3
	defaultProbeURL          = "https://www.google.com/generate_204"
	defaultProbeTimeout      = 5
	defaultProbeInterval     = 60
	defaultSyncRetryInterval = 300
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Remote: Remote{
			AppID:          defaultAppID,
			RequestTimeout: defaultRemoteTimeout,
		},
		Storage: Storage{
			UseSSL:         true,
			URLExpiryHours: defaultURLExpiryHours,
			UploadTimeout:  defaultUploadTimeout,
		},
		Capture: Capture{
			MaxImageWidth:  defaultMaxImageWidth,
			JPEGQuality:    defaultJPEGQuality,
			MaxAttachments: defaultMaxAttachments,
		},
		Connectivity: Connectivity{
			ProbeURL:      defaultProbeURL,
			ProbeTimeout:  defaultProbeTimeout,
			ProbeInterval: defaultProbeInterval,
		},
		Sync: Sync{
			RetryInterval: defaultSyncRetryInterval,
			AutoSync:      true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Queue:          true,
			Sync:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
