package cmd

import (
	"fmt"
	"os"

	"objectfs/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storageFlags override the storage section of the configuration.
var storageFlags struct {
	backend   string
	endpoint  string
	accessKey string
	secretKey string
	token     string
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "objectfs",
	Short: "Uniform object storage tool",
	Long: `objectfs reads, writes and lists objects through one engine regardless
of the backend: local filesystem, memory, MinIO, S3 or a SQL blob table.
It can also serve the engine over HTTP and synchronize two backends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development config gives readable
		// timestamps for CLI users.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&storageFlags.backend, "backend", "", "Storage backend (file, mem, minio, s3, sqlite3, mysql)")
	pf.StringVar(&storageFlags.endpoint, "endpoint", "", "Backend endpoint, e.g. ./data or http://localhost:9000/bucket")
	pf.StringVar(&storageFlags.accessKey, "access-key", "", "Access key")
	pf.StringVar(&storageFlags.secretKey, "secret-key", "", "Secret key")
	pf.StringVar(&storageFlags.token, "token", "", "Session token")
}
