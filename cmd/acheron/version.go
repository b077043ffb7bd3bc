package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/acheron"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of acheron",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "acheron version %s\n", strings.TrimSpace(acheron.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
