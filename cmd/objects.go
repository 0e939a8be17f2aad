package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"objectfs/core/storage"
	"objectfs/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	lsMarker  string
	lsLimit   int64
	lsAll     bool
	catOffset int64
	catLimit  int64
)

// describeCmd prints the bound backend.
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the configured backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Fprintln(cmd.OutOrStdout(), s.engine.String())
		return nil
	},
}

// mbCmd provisions the storage root.
var mbCmd = &cobra.Command{
	Use:   "mb",
	Short: "Create the storage root (directory, bucket or table)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.engine.CreateRoot(cmd.Context()); err != nil {
			return err
		}
		s.logger.Info("Storage root ready", zap.String("storage", s.engine.String()))
		return nil
	},
}

// statCmd prints the metadata of one key as JSON.
var statCmd = &cobra.Command{
	Use:   "stat KEY",
	Short: "Show object metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		obj, err := s.engine.Head(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// lsCmd lists one page, or everything with --all.
var lsCmd = &cobra.Command{
	Use:   "ls [PREFIX]",
	Short: "List objects",
	Long: `Lists objects under PREFIX in lexical order. One page of --limit entries
is printed; pass the printed marker to --marker to continue, or use --all.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		var page storage.Page
		if lsAll {
			page.Objects, err = s.engine.ListAll(cmd.Context(), prefix, lsMarker)
		} else {
			page, err = s.engine.List(cmd.Context(), prefix, lsMarker, lsLimit)
		}
		if err != nil {
			return err
		}

		printObjects(cmd.OutOrStdout(), page.Objects)
		if page.Truncated {
			fmt.Fprintf(cmd.OutOrStdout(), "\nmore entries follow, continue with --marker %q\n", page.NextMarker)
		}
		return nil
	},
}

func printObjects(out io.Writer, objs []storage.Object) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, o := range objs {
		size := utils.FormatBytes(o.Size)
		if o.IsDir() {
			size = "DIR"
		}
		mtime := ""
		if !o.Mtime.IsZero() {
			mtime = o.Mtime.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t %s\n", size, mtime, o.Key)
	}
	_ = w.Flush()
}

// catCmd streams an object to stdout.
var catCmd = &cobra.Command{
	Use:   "cat KEY",
	Short: "Print object content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.engine.Read(cmd.Context(), args[0], catOffset, catLimit)
		if err != nil {
			return err
		}
		defer r.Close()
		if _, err := io.CopyBuffer(cmd.OutOrStdout(), r, make([]byte, s.engine.Config().CopyChunkSize)); err != nil {
			return err
		}
		return r.Close()
	},
}

// putCmd uploads a file, or stdin when FILE is omitted or "-".
var putCmd = &cobra.Command{
	Use:   "put KEY [FILE]",
	Short: "Write an object from a file or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		var src io.Reader = io.NopCloser(cmd.InOrStdin())
		if len(args) == 2 && args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			src = f
		}

		// WriteReader closes src; stdin is shielded by the NopCloser.
		if err := s.engine.WriteReader(cmd.Context(), args[0], src); err != nil {
			return err
		}
		obj, err := s.engine.Head(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		s.logger.Info("Object written", zap.String("key", obj.Key), zap.String("size", utils.FormatBytes(obj.Size)))
		return nil
	},
}

// rmCmd removes one key.
var rmCmd = &cobra.Command{
	Use:   "rm KEY",
	Short: "Remove an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.engine.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		s.logger.Info("Object removed", zap.String("key", args[0]))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(describeCmd, mbCmd, statCmd, lsCmd, catCmd, putCmd, rmCmd)

	lsCmd.Flags().StringVar(&lsMarker, "marker", "", "List keys strictly after this key")
	lsCmd.Flags().Int64Var(&lsLimit, "limit", storage.DefaultListLimit, "Maximum entries per page")
	lsCmd.Flags().BoolVar(&lsAll, "all", false, "List every entry")

	catCmd.Flags().Int64Var(&catOffset, "offset", 0, "First byte to read")
	catCmd.Flags().Int64Var(&catLimit, "limit", -1, "Maximum bytes to read, -1 for the rest")
}
