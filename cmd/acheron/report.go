package main

import (
	"context"
	"fmt"

	"github.com/aretw0/acheron/internal/cli"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the attack path report of the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := context.Background()

		if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
			engine, backend, err := cli.NewEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer backend.Close()
			fmt.Fprint(cmd.OutOrStdout(), engine.ExportReport())
			return nil
		}

		dir, _ := cmd.Flags().GetString("out")
		path, err := cli.ExportReport(ctx, cfg, logger, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("out", "o", ".", "Directory to write the report to")
	reportCmd.Flags().Bool("stdout", false, "Print the report instead of writing a file")
}
