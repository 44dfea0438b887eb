package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/models"
	"github.com/ternarybob/docmark/internal/services/delivery"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble one document and write it to the output directory",
	RunE:  runAssemble,
}

var (
	assembleIn         string
	assemblePercentage string
	assembleTitle      string
	assembleOut        string
	assembleExtras     []string
)

func init() {
	assembleCmd.Flags().StringVarP(&assembleIn, "in", "i", "", "Input document (pdf, doc, docx)")
	assembleCmd.Flags().StringVarP(&assemblePercentage, "percentage", "p", "random", "Share of words to highlight: 0-100 or \"random\"")
	assembleCmd.Flags().StringVarP(&assembleTitle, "title", "t", "", "Cover title (defaults to the file name)")
	assembleCmd.Flags().StringVarP(&assembleOut, "out", "o", "", "Output directory (overrides delivery.output_dir)")
	assembleCmd.Flags().StringArrayVar(&assembleExtras, "percent", nil, "Extra cover percentage as name=value (repeatable)")
	_ = assembleCmd.MarkFlagRequired("in")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	percentage, err := models.ParsePercentage(assemblePercentage)
	if err != nil {
		return err
	}

	extras, err := parseExtras(assembleExtras)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(assembleIn)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", assembleIn, err)
	}

	application, logger, err := loadApp()
	if err != nil {
		return err
	}
	defer application.Close()

	doc, err := application.UploadValidator.Validate(filepath.Base(assembleIn), data)
	if err != nil {
		return err
	}

	artifact, err := application.AssemblyService.Assemble(cmd.Context(), models.AssembleRequest{
		RequestID:        common.NewRequestID(),
		Document:         doc,
		Title:            assembleTitle,
		Percentage:       percentage,
		ExtraPercentages: extras,
	})
	if err != nil {
		return err
	}

	outDir := assembleOut
	if outDir == "" {
		outDir = application.Config.Delivery.OutputDir
	}
	sink := delivery.NewFileSink(outDir, logger)
	if err := sink.Deliver(cmd.Context(), artifact); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages, highlight %s, %d of %d words)\n",
		sink.Path(artifact.Filename),
		artifact.PageCount,
		artifact.Highlight.Status,
		artifact.Selection.SelectedWords,
		artifact.Selection.TotalWords,
	)
	return nil
}

func parseExtras(values []string) (map[string]int, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]int, len(values))
	for _, v := range values {
		name, raw, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--percent expects name=value, got %q", v)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 || n > 100 {
			return nil, fmt.Errorf("--percent %s must be an integer between 0 and 100", name)
		}
		out[name] = n
	}
	return out, nil
}
