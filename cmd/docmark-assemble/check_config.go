package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/services/validation"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config <file>...",
	Short: "Validate docmark.toml files without starting anything",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheckConfig,
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	svc := validation.NewTOMLValidationService(common.GetLogger())

	failed := 0
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result := svc.ValidateTOML(cmd.Context(), string(content))
		if result.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			continue
		}
		failed++
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, result.Message)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d config files are invalid", failed, len(args))
	}
	return nil
}
