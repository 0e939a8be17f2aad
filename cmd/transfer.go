package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"objectfs/core/reconcile"
	"objectfs/core/storage"
	"objectfs/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// targetFlags describe the second engine of cp and sync.
var targetFlags struct {
	backend   string
	endpoint  string
	accessKey string
	secretKey string
	token     string
}

var (
	syncDelete     bool
	syncDryRun     bool
	syncYes        bool
	syncWorkers    int
	syncCheckMtime bool
)

// openTarget opens the engine named by the --to-* flags, or returns nil
// when none was given.
func openTarget(ctx context.Context, s *session) (*storage.Engine, error) {
	if targetFlags.backend == "" && targetFlags.endpoint == "" {
		return nil, nil
	}
	cfg := s.cfg.Storage
	if targetFlags.backend != "" {
		cfg.Backend = targetFlags.backend
	}
	cfg.Endpoint = targetFlags.endpoint
	if targetFlags.accessKey != "" || targetFlags.secretKey != "" {
		cfg.AccessKey = targetFlags.accessKey
		cfg.SecretKey = targetFlags.secretKey
		cfg.Token = targetFlags.token
	}
	dst, err := storage.New(ctx, cfg, storage.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create target engine: %w", err)
	}
	return dst, nil
}

// cpCmd copies one object, possibly to another backend.
var cpCmd = &cobra.Command{
	Use:   "cp SRC DST",
	Short: "Copy an object",
	Long: `Copies SRC to DST. Without --to-backend/--to-endpoint both keys live on
the configured backend; otherwise DST is written to the target backend.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		dst, err := openTarget(ctx, s)
		if err != nil {
			return err
		}
		if dst == nil {
			dst = s.engine
		} else {
			defer dst.Close()
		}

		n, err := s.engine.Copy(ctx, args[0], dst, args[1])
		if err != nil {
			return err
		}
		s.logger.Info("Object copied",
			zap.String("src", args[0]),
			zap.String("dst", args[1]),
			zap.String("target", dst.String()),
			zap.String("size", utils.FormatBytes(n)))
		return nil
	},
}

// syncCmd brings the target backend in line with the configured one.
var syncCmd = &cobra.Command{
	Use:   "sync [PREFIX]",
	Short: "Synchronize the target backend with the configured one",
	Long: `Compares the keys under PREFIX on the configured backend (source) and on
the --to-backend/--to-endpoint backend (destination), then copies missing or
different objects. With --delete, destination keys absent from the source are
removed.

Examples:
  # Report only
  objectfs sync --to-backend minio --to-endpoint http://localhost:9000/backup

  # Copy and delete with interactive confirmation
  objectfs sync assets/ --to-backend s3 --to-endpoint s3://backup --delete

  # Non-interactive
  objectfs sync --to-backend file --to-endpoint /mnt/backup --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	dst, err := openTarget(ctx, s)
	if err != nil {
		return err
	}
	if dst == nil {
		return fmt.Errorf("sync needs --to-backend or --to-endpoint")
	}
	defer dst.Close()
	if err := dst.CreateRoot(ctx); err != nil {
		return fmt.Errorf("failed to prepare destination: %w", err)
	}

	rcfg := s.cfg.Reconcile
	if cmd.Flags().Changed("check-mtime") {
		rcfg.CheckMtime = syncCheckMtime
	}
	workers := rcfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = syncWorkers
	}

	spec := &reconcile.Spec{
		Source:      s.engine,
		Destination: dst,
		Comparators: reconcile.ComparatorsFor(rcfg),
		CacheTTL:    time.Duration(rcfg.CacheTTLSeconds) * time.Second,
	}
	if len(args) == 1 {
		spec.Prefix = args[0]
	}
	opts := reconcile.Options{
		DryRun:   syncDryRun,
		DoDelete: syncDelete,
		Workers:  workers,
	}

	s.logger.Info("Planning synchronization",
		zap.String("source", s.engine.String()),
		zap.String("destination", dst.String()),
		zap.String("prefix", spec.Prefix))
	plan, err := reconcile.ReconcileWithPlan(ctx, spec, opts)
	if err != nil {
		return fmt.Errorf("failed to plan synchronization: %w", err)
	}
	printSyncReport(s.logger, plan)

	if len(plan.Actions) == 0 {
		s.logger.Info("Destination already in sync")
		return nil
	}
	if syncDryRun {
		s.logger.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirmDestructiveAction(cmd) {
		s.logger.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	opts.Confirmed = true

	s.logger.Info("Applying actions...")
	executed, err := reconcile.ApplyPlan(ctx, spec, plan, opts)
	if err != nil {
		return fmt.Errorf("failed to apply plan after %d actions: %w", executed, err)
	}
	s.logger.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printSyncReport logs the plan summary and a sample of actions.
func printSyncReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary
	l.Info("Synchronization report",
		zap.Int("total_keys", s.TotalKeys),
		zap.Int("missing_destination", s.MissingDestination),
		zap.Int("extra_destination", s.ExtraDestination),
		zap.Int("mismatches", s.Mismatches),
	)
	if len(plan.Actions) == 0 {
		return
	}

	l.Info("Planned actions",
		zap.Int("copy_actions", s.CopyActions),
		zap.Int("delete_actions", s.DeleteActions),
		zap.String("copy_bytes", utils.FormatBytes(s.CopyBytes)),
	)
	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(cmd *cobra.Command) bool {
	if syncYes {
		fmt.Fprintln(cmd.OutOrStdout(), "\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(cmd.OutOrStdout(), "\nType 'yes' to apply the planned actions: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

func init() {
	for _, c := range []*cobra.Command{cpCmd, syncCmd} {
		c.Flags().StringVar(&targetFlags.backend, "to-backend", "", "Target backend")
		c.Flags().StringVar(&targetFlags.endpoint, "to-endpoint", "", "Target endpoint")
		c.Flags().StringVar(&targetFlags.accessKey, "to-access-key", "", "Target access key (defaults to --access-key)")
		c.Flags().StringVar(&targetFlags.secretKey, "to-secret-key", "", "Target secret key (defaults to --secret-key)")
		c.Flags().StringVar(&targetFlags.token, "to-token", "", "Target session token")
	}

	syncCmd.Flags().BoolVar(&syncDelete, "delete", false, "Delete destination keys missing on the source")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	syncCmd.Flags().BoolVar(&syncYes, "yes", false, "Auto-confirm actions (non-interactive)")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 4, "Concurrent copies")
	syncCmd.Flags().BoolVar(&syncCheckMtime, "check-mtime", false, "Copy objects whose source is newer")

	RootCmd.AddCommand(cpCmd, syncCmd)
}
