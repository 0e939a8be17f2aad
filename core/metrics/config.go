package metrics

// Config holds configuration for Prometheus metrics.
type Config struct {
	// Enabled exposes metrics and instruments requests and storage calls.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Path is the HTTP path serving the metrics.
	Path string `mapstructure:"path" default:"/metrics"`
}
