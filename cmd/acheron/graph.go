package main

import (
	"context"
	"fmt"

	"github.com/aretw0/acheron/internal/cli"
	"github.com/aretw0/acheron/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the scenario graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the active scenario.
With --overlay the saved session's path and current node are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		engine, backend, err := cli.NewEngine(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		sc, err := engine.Scenario()
		if err != nil {
			return err
		}
		var overlay *graph.GraphOverlay
		if on, _ := cmd.Flags().GetBool("overlay"); on {
			st := engine.State()
			overlay = &graph.GraphOverlay{VisitedNodes: st.History, CurrentNode: st.CurrentNodeID}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(sc, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("overlay", false, "Highlight the saved session path")
}
