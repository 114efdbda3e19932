package config

type SyncConfig struct {
	General  GeneralConfig  `yaml:"general"`
	Remote   RemoteConfig   `yaml:"remote"`
	Filters  FiltersConfig  `yaml:"filters"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Transfer TransferConfig `yaml:"transfer"`
	Convert  ConvertConfig  `yaml:"convert"`
	Upload   UploadConfig   `yaml:"upload"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Sentry   SentryConfig   `yaml:"sentry"`
}

func NewDefaultSyncConfig() SyncConfig {
	return SyncConfig{
		General: GeneralConfig{
			LogDirectory: "logs",
			LogColors:    false,
			JsonLogs:     false,
			LogLevel:     "info",
		},
		Remote: RemoteConfig{
			Name:               "3DFF",
			Binary:             "rclone",
			ListTimeoutSeconds: 300,
			ListRetries:        3,
			ListCacheSeconds:   120,
		},
		Filters: FiltersConfig{
			Extensions:   []string{".mkv", ".iso", ".mp4", ".m4v", ".avi", ".m2ts"},
			MinSizeBytes: 1 * 1024 * 1024 * 1024,   // 1gb
			MaxSizeBytes: 100 * 1024 * 1024 * 1024, // 100gb
		},
		Pipeline: PipelineConfig{
			TempDirectory:      "",
			StateFile:          "upload_state.json",
			DiskMarginBytes:    2 * 1024 * 1024 * 1024, // 2gb
			SizeToleranceBytes: 10 * 1024 * 1024,       // 10mb
			MaxFailures:        3,
			SmallestFirst:      true,
		},
		Transfer: TransferConfig{
			MaxAttempts:           5,
			BackoffSeconds:        60,
			StallThresholdSeconds: 300,
			ProgressEpsilonBytes:  10 * 1024 * 1024, // 10mb
			TimeoutSeconds:        600,
			ConnectTimeoutSeconds: 120,
			StatsIntervalSeconds:  30,
			TpsLimit:              10,
			BufferSize:            "16M",
		},
		Convert: ConvertConfig{
			Enabled:               true,
			Binary:                "ffmpeg",
			StallThresholdSeconds: 300,
			MinSizeRatio:          0.95,
		},
		Upload: UploadConfig{
			Endpoint:       "",
			Bucket:         "photos",
			Region:         "",
			Ssl:            true,
			KeyPrefix:      "",
			MaxAttempts:    3,
			BackoffSeconds: 60,
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			BindAddress: "localhost",
			Port:        9000,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Dsn:         "",
			Environment: "",
			Debug:       false,
		},
	}
}
