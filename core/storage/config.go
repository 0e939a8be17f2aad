package storage

// Config holds configuration for the storage engine and its driver.
type Config struct {
	// Backend is the registered driver name (file, mem, minio, s3, sqlite3, mysql).
	Backend string `mapstructure:"backend" default:"file"`
	// Endpoint locates the storage root; its format is driver specific.
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:""`
	// Token is an optional session token.
	Token string `mapstructure:"token" default:""`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:"us-east-1"`
	// UseSSL is used when the endpoint does not carry a scheme.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PipeBufferSize is the capacity in bytes of pipes created by the engine.
	PipeBufferSize int `mapstructure:"pipe_buffer_size" default:"65536"`
	// CopyChunkSize is the buffer size used when draining readers.
	CopyChunkSize int `mapstructure:"copy_chunk_size" default:"32768"`
	// ListPageSize is the page size used internally by ListAll.
	ListPageSize int64 `mapstructure:"list_page_size" default:"1000"`
	// StrictRemove makes Remove fail with ErrNotFound on missing keys.
	StrictRemove bool `mapstructure:"strict_remove" default:"false"`
}

const (
	// DefaultListLimit is the page size used by convenience entry points.
	DefaultListLimit = 10

	defaultTimeoutSeconds = 30
	defaultPipeBufferSize = 64 << 10
	defaultCopyChunkSize  = 32 << 10
	defaultListPageSize   = 1000
)

// withDefaults fills zero values so a Config built in code behaves like
// one loaded through core/config.
func (c Config) withDefaults() Config {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.PipeBufferSize <= 0 {
		c.PipeBufferSize = defaultPipeBufferSize
	}
	if c.CopyChunkSize <= 0 {
		c.CopyChunkSize = defaultCopyChunkSize
	}
	if c.ListPageSize <= 0 {
		c.ListPageSize = defaultListPageSize
	}
	return c
}
