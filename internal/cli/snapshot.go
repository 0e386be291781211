package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sceneforge/engine/internal/persist"
	"github.com/spf13/cobra"
)

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect stored snapshots",
	}
	cmd.AddCommand(newSnapshotListCommand(rootOpts))
	cmd.AddCommand(newSnapshotExportCommand(rootOpts))
	return cmd
}

func newSnapshotListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			store, err := persist.Open(cmd.Context(), cfg.Snapshot, log)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tENTITIES\tSAVED")
			for _, info := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Name, info.Entities, info.SavedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newSnapshotExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Write a snapshot as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			store, err := persist.Open(cmd.Context(), cfg.Snapshot, log)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := persist.Encode(st)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file (- for stdout)")
	return cmd
}
