package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ternarybob/docmark/internal/models"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Normalise a document and print its page structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	doc, err := models.NewSourceDocument(filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	application, _, err := loadApp()
	if err != nil {
		return err
	}
	defer application.Close()

	normalized, err := application.Engine.Normalize(cmd.Context(), doc)
	if err != nil {
		return err
	}
	info, err := application.Engine.Inspect(cmd.Context(), normalized.Data)
	if err != nil {
		return err
	}
	fragments, err := application.Engine.ExtractLayout(cmd.Context(), normalized.Data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:      %s (%s)\n", doc.Filename, doc.Kind)
	fmt.Fprintf(out, "reflowed:  %t\n", normalized.Reflowed)
	fmt.Fprintf(out, "pages:     %d\n", info.PageCount)
	fmt.Fprintf(out, "size:      %d bytes\n", info.FileSize)
	fmt.Fprintf(out, "encrypted: %t\n", info.IsEncrypted)
	fmt.Fprintf(out, "fragments: %d\n", len(fragments))
	fmt.Fprintf(out, "words:     %d\n", models.CountWords(models.JoinText(fragments)))
	for i, p := range info.Pages {
		fmt.Fprintf(out, "  page %d: %.0f x %.0f pt\n", i+1, p.Width, p.Height)
	}
	return nil
}
