package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/acheron/internal/cli"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [scenario]",
	Short: "Play the simulation in the terminal",
	Long: `Starts an interactive session. The session is saved after every move
and resumed on the next start unless --fresh is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 && !cmd.Flags().Changed("scenario") {
			cfg.Scenario = args[0]
		}
		headless, _ := cmd.Flags().GetBool("headless")
		fresh, _ := cmd.Flags().GetBool("fresh")
		watch, _ := cmd.Flags().GetBool("watch")
		exportDir, _ := cmd.Flags().GetString("export-dir")

		if watch && headless {
			return fmt.Errorf("--watch and --headless cannot be used together")
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Play(sigCtx, cli.PlayOptions{
			Config:    cfg,
			Headless:  headless,
			Fresh:     fresh,
			Watch:     watch,
			ExportDir: exportDir,
			Input:     os.Stdin,
			Output:    os.Stdout,
			Logger:    logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, prompts or briefing)")
	playCmd.Flags().Bool("fresh", false, "Discard the saved session and start over")
	playCmd.Flags().BoolP("watch", "w", false, "Reload the scenario when the file changes")
	playCmd.Flags().String("export-dir", ".", "Directory for exported reports")

	rootCmd.RunE = playCmd.RunE
	rootCmd.Flags().AddFlagSet(playCmd.Flags())
}
