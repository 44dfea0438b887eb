// -----------------------------------------------------------------------
// Last Modified: Sunday, 18th October 2026 3:48:21 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/models"
	"github.com/ternarybob/docmark/internal/services/delivery"
	"github.com/ternarybob/docmark/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Assemble several documents concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var (
	batchPercentage string
	batchOut        string
	batchWorkers    int
)

func init() {
	batchCmd.Flags().StringVarP(&batchPercentage, "percentage", "p", "random", "Share of words to highlight: 0-100 or \"random\"")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Output directory (overrides delivery.output_dir)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "Documents assembled at the same time")
}

func runBatch(cmd *cobra.Command, args []string) error {
	percentage, err := models.ParsePercentage(batchPercentage)
	if err != nil {
		return err
	}

	application, logger, err := loadApp()
	if err != nil {
		return err
	}
	defer application.Close()

	outDir := batchOut
	if outDir == "" {
		outDir = application.Config.Delivery.OutputDir
	}
	sink := delivery.NewFileSink(outDir, logger)

	prefix, ext := application.Config.Delivery.FilenamePrefix, application.Config.Delivery.Extension
	names := outputNames(args, prefix, ext)
	for i, path := range args {
		if names[i] != delivery.OutputFilename(prefix, filepath.Base(path), ext) {
			logger.Warn().Str("input", path).Str("output", names[i]).Msg("Output name already used in this batch, writing under a new name")
		}
	}

	// each task writes only its own slot
	written := make([]string, len(args))

	tasks := make([]worker.Task, len(args))
	for i, path := range args {
		tasks[i] = worker.Task{
			ID: path,
			Run: func(ctx context.Context) error {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				doc, err := application.UploadValidator.Validate(filepath.Base(path), data)
				if err != nil {
					return err
				}
				artifact, err := application.AssemblyService.Assemble(ctx, models.AssembleRequest{
					RequestID:  common.NewRequestID(),
					Document:   doc,
					Percentage: percentage,
				})
				if err != nil {
					return err
				}
				artifact.Filename = names[i]
				if err := sink.Deliver(ctx, artifact); err != nil {
					return err
				}
				written[i] = sink.Path(artifact.Filename)
				return nil
			},
		}
	}

	results := worker.NewPool(logger, batchWorkers).Run(cmd.Context(), tasks)

	failed := 0
	out := cmd.OutOrStdout()
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", r.ID, r.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s -> %s (%s)\n", r.ID, written[i], r.Duration.Round(time.Millisecond))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

// outputNames gives every input its own output file. Inputs that would map to
// the same name (a/report.pdf and b/report.pdf, or report.pdf and report.docx)
// get numbered suffixes in argument order.
func outputNames(paths []string, prefix, ext string) []string {
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = delivery.OutputFilename(prefix, filepath.Base(path), ext)
	}
	return delivery.UniqueFilenames(names)
}
