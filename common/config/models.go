package config

type GeneralConfig struct {
	LogDirectory string `yaml:"logDirectory"`
	LogColors    bool   `yaml:"logColors"`
	JsonLogs     bool   `yaml:"jsonLogs"`
	LogLevel     string `yaml:"logLevel"`
}

type RemoteConfig struct {
	Name               string `yaml:"name"`
	Binary             string `yaml:"binary"`
	ListTimeoutSeconds int    `yaml:"listTimeoutSeconds"`
	ListRetries        int    `yaml:"listRetries"`
	ListCacheSeconds   int    `yaml:"listCacheSeconds"`
}

type FiltersConfig struct {
	Extensions   []string `yaml:"extensions,flow"`
	MinSizeBytes int64    `yaml:"minSizeBytes"`
	MaxSizeBytes int64    `yaml:"maxSizeBytes"`
}

type PipelineConfig struct {
	TempDirectory      string `yaml:"tempDirectory"`
	StateFile          string `yaml:"stateFile"`
	DiskMarginBytes    int64  `yaml:"diskMarginBytes"`
	SizeToleranceBytes int64  `yaml:"sizeToleranceBytes"`
	MaxFailures        int    `yaml:"maxFailures"`
	SmallestFirst      bool   `yaml:"smallestFirst"`
}

type TransferConfig struct {
	MaxAttempts           int   `yaml:"maxAttempts"`
	BackoffSeconds        int   `yaml:"backoffSeconds"`
	StallThresholdSeconds int   `yaml:"stallThresholdSeconds"`
	ProgressEpsilonBytes  int64 `yaml:"progressEpsilonBytes"`
	TimeoutSeconds        int   `yaml:"timeoutSeconds"`
	ConnectTimeoutSeconds int   `yaml:"connectTimeoutSeconds"`
	StatsIntervalSeconds  int   `yaml:"statsIntervalSeconds"`
	TpsLimit              int   `yaml:"tpsLimit"`
	BufferSize            string `yaml:"bufferSize"`
}

type ConvertConfig struct {
	Enabled               bool    `yaml:"enabled"`
	Binary                string  `yaml:"binary"`
	StallThresholdSeconds int     `yaml:"stallThresholdSeconds"`
	MinSizeRatio          float64 `yaml:"minSizeRatio"`
}

type UploadConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Ssl            bool   `yaml:"ssl"`
	KeyPrefix      string `yaml:"keyPrefix"`
	MaxAttempts    int    `yaml:"maxAttempts"`
	BackoffSeconds int    `yaml:"backoffSeconds"`
}

type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bindAddress"`
	Port        int    `yaml:"port"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}
