package main

import (
	"fmt"

	"github.com/aretw0/acheron/internal/loader"
	"github.com/aretw0/acheron/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scenario]",
	Short: "Check every scenario of a document for consistency",
	Long: `Reports dangling targets, dead-end terminals, unreachable nodes and duplicate ids.
Problems are warnings; --strict turns them into a failing exit status.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Scenario
		if len(args) > 0 {
			path = args[0]
		}
		strict, _ := cmd.Flags().GetBool("strict")

		res, err := loader.LoadFile(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		total := 0
		for _, sc := range res.All {
			issues := validator.Validate(sc)
			total += len(issues)
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s: ok\n", sc.Title)
				continue
			}
			fmt.Fprintf(out, "%s: %d issues\n", sc.Title, len(issues))
			for _, issue := range issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
		}

		if total > 0 && strict {
			return fmt.Errorf("validation failed: %d issues", total)
		}
		if total == 0 {
			fmt.Fprintln(out, "Scenario is valid! ✅")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail when any issue is found")
}
