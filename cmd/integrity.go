package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"objectfs/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag      bool
	dirsFlag     []string
	prefixFlag   string
	pageSizeFlag int64
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Probe the configured backend for contract violations",
	Long: `Runs every integrity check against the configured backend: structure,
round trip, pagination and, for SQL backends, the blob table schema.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd, "all")
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the storage root and directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd, "structure")
	},
}

// roundTripCmd represents the integrity roundtrip command
var roundTripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Write, read back and remove a probe object",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd, "roundtrip")
	},
}

// paginationCmd represents the integrity pagination command
var paginationCmd = &cobra.Command{
	Use:   "pagination",
	Short: "Compare paged and full listings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd, "pagination")
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the blob table of SQL backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd, "schema")
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, roundTripCmd, paginationCmd, schemaCmd)

	integrityCmd.PersistentFlags().StringSliceVar(&dirsFlag, "dirs", nil, "Directory keys that must exist")
	integrityCmd.PersistentFlags().StringVar(&prefixFlag, "prefix", "", "Prefix for the pagination check")
	integrityCmd.PersistentFlags().Int64Var(&pageSizeFlag, "page-size", 0, "Page size for the pagination check")
	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the root and missing directories")
}

func runIntegrity(cmd *cobra.Command, only string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	svc := integrity.NewService(s.engine, s.logger, false)
	out := cmd.OutOrStdout()
	failed := false

	run := func(name string, check func(context.Context) (any, bool, error)) {
		if only != "all" && only != name {
			return
		}
		report, ok, err := check(ctx)
		switch {
		case errors.Is(err, integrity.ErrSkipped):
			s.logger.Info("Check skipped", zap.String("check", name))
			return
		case err != nil:
			failed = true
			s.logger.Error("Check failed", zap.String("check", name), zap.Error(err))
			return
		case !ok:
			failed = true
			s.logger.Warn("Check found problems", zap.String("check", name))
		default:
			s.logger.Info("Check passed", zap.String("check", name))
		}
		printReport(out, name, report)
	}

	run("structure", func(ctx context.Context) (any, bool, error) {
		report, err := svc.CheckStructure(ctx, dirsFlag)
		if fixFlag && (err != nil || len(report.Missing) > 0) {
			if ferr := svc.FixStructure(ctx, report.Missing); ferr != nil {
				return nil, false, ferr
			}
			s.logger.Info("Structure fixed", zap.Strings("created", report.Missing))
			report, err = svc.CheckStructure(ctx, dirsFlag)
		}
		if err != nil {
			return nil, false, err
		}
		return report, len(report.Missing) == 0, nil
	})
	run("roundtrip", func(ctx context.Context) (any, bool, error) {
		report, err := svc.CheckRoundTrip(ctx)
		if err != nil {
			return nil, false, err
		}
		return report, report.Matched, nil
	})
	run("pagination", func(ctx context.Context) (any, bool, error) {
		report, err := svc.CheckPagination(ctx, prefixFlag, pageSizeFlag)
		if err != nil {
			return nil, false, err
		}
		return report, report.Matched, nil
	})
	run("schema", func(ctx context.Context) (any, bool, error) {
		report, err := svc.CheckSchema()
		if err != nil {
			return nil, false, err
		}
		return report, report.Matched, nil
	})

	if failed {
		return fmt.Errorf("integrity checks failed for %s", s.engine.String())
	}
	return nil
}

func printReport(out io.Writer, name string, report any) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", name, err)
		return
	}
	fmt.Fprintf(out, "=== %s ===\n%s\n", strings.ToUpper(name[:1])+name[1:], data)
}
