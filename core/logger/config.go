package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level to log (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (json or console).
	Format string `mapstructure:"format" default:"console"`
	// Output is a zap sink: stderr, stdout or a file path.
	Output string `mapstructure:"output" default:"stderr"`
}
