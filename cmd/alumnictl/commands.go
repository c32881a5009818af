package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	appServices "github.com/yigit/alumnidesk/internal/app/services"
)

func newBackfillCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Copy graduation year and major onto attendance links that lack them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Ctrl-C stops between links; finished writes are kept
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return open(cmd, func(ctx context.Context, a *app) error {
				result, err := a.backfill().Run(ctx)
				if result != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d updated=%d skipped=%d cancelled=%t\n",
						result.Scanned, result.Updated, result.Skipped, result.Cancelled)
				}
				return err
			})
		},
	}
}

func newExportCommand(open openFunc) *cobra.Command {
	var out, search string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the alumni collection to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return open(cmd, func(ctx context.Context, a *app) error {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				rows, err := appServices.NewAlumniService(a.infra.Repos).Export(ctx, search, f)
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					_ = os.Remove(out)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d alumni to %s\n", rows, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "alumni_data.xlsx", "destination workbook")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only export alumni matching this text")
	return cmd
}

func newRosterCommand(open openFunc) *cobra.Command {
	roster := &cobra.Command{
		Use:   "roster",
		Short: "Manage the reference student roster",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Add student ids from a spreadsheet to the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return open(cmd, func(ctx context.Context, a *app) error {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", file, err)
				}
				defer f.Close()

				result, err := appServices.NewRosterService(a.infra.Repos, a.logger).Import(ctx, filepath.Base(file), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inserted=%d skipped=%d\n", result.Inserted, result.Skipped)
				return nil
			})
		},
	}
	importCmd.Flags().StringVarP(&file, "file", "f", "", "xlsx, xls or csv file with a Student ID column")
	_ = importCmd.MarkFlagRequired("file")

	roster.AddCommand(importCmd)
	return roster
}
