package main

import (
	"context"
	"fmt"

	"github.com/aretw0/acheron/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear the saved session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.ShowSession(context.Background(), cfg, logger, cmd.OutOrStdout(), asJSON)
	},
}

var sessionClearCmd = &cobra.Command{
	Use:     "clear",
	Aliases: []string{"rm"},
	Short:   "Delete the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cli.ClearSession(context.Background(), cfg, logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %q cleared.\n", cfg.StateKey)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List keys held by the session store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		keys, err := cli.ListSessions(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd, sessionClearCmd, sessionListCmd)
	sessionShowCmd.Flags().Bool("json", false, "Print the raw record")
}
