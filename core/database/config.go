package database

// Config holds configuration for a database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite3).
	Driver string `mapstructure:"driver" default:"sqlite3"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path for sqlite3.
	Name string `mapstructure:"name" default:"objectfs"`
	// TimeoutSeconds bounds connection setup, reads and writes.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
