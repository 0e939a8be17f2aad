package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"objectfs/core/logger"
	"objectfs/core/metrics"
	"objectfs/core/reconcile"
	"objectfs/core/server"
	"objectfs/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server holds configuration for the HTTP gateway.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the storage engine.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Metrics holds configuration for Prometheus metrics.
	Metrics metrics.Config `mapstructure:"metrics"`
	// Reconcile holds configuration for backend synchronization.
	Reconcile reconcile.Config `mapstructure:"reconcile"`
}

// FileName is the optional YAML file LoadConfig reads from its path,
// without the extension.
const FileName = "objectfs"

// LoadConfig resolves the configuration from, in increasing precedence,
// the `default` struct tags, objectfs.yaml in path, and the environment.
// A .env file in path is loaded into the environment first and wins over
// variables already set.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s.yaml: %w", FileName, err)
		}
	}

	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &config, nil
}

// bindValues walks the struct and registers every mapstructure key in Viper
// with the value of its `default` tag.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set the default, even if empty, so AutomaticEnv sees the key.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
