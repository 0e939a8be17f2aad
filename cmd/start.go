package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"objectfs/core/loader"
	"objectfs/core/logger"
	"objectfs/core/metrics"
	"objectfs/core/middleware/auth"
	"objectfs/core/middleware/rayid"
	"objectfs/core/storage"

	"objectfs/feature/gateway"
	"objectfs/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "objectfs/docs/swagger"
)

// @title ObjectFS API
// @version 1.0
// @description Uniform object storage over filesystem, in-memory, MinIO, S3 and SQL backends.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP gateway",
	Long:  `Starts the HTTP server over the configured backend and initializes all enabled features.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The observer is attached even when metrics are not served.
		m := metrics.New()
		s, err := openSession(ctx, storage.WithObserver(m))
		if err != nil {
			return err
		}
		defer s.Close()
		cfg, logg := s.cfg, s.logger
		zap.ReplaceGlobals(logg)

		if err := cfg.Server.Validate(); err != nil {
			return err
		}
		if err := s.engine.CreateRoot(ctx); err != nil {
			logg.Warn("Storage root is not ready", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(gateway.NewFeature(s.engine, logg, cfg.Server.ReadOnly))
		mgr.Register(integrity.NewFeature(s.engine, logg, cfg.Server.ReadOnly))

		// RayID first so every log line can be traced.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		skip := []string{"/swagger"}
		if cfg.Metrics.Enabled {
			app.Use(m.Middleware())
			app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(m.Handler()))
			skip = append(skip, cfg.Metrics.Path)
		}

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: skip}))

		if err := mgr.LoadAll(app); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("storage", s.engine.String()),
				zap.Bool("read_only", cfg.Server.ReadOnly))
			errCh <- app.Listen(cfg.Server.Address())
		}()

		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-sigCtx.Done():
		}

		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
