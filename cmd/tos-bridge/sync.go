package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/No-Smoke/tos-bridge/internal/pattern"
)

var syncFile string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize knowledge patterns into both stores",
	Long: `Reads a JSON array of patterns from --file (or stdin) and mirrors
them into the vector index and the graph in batches.

Pattern shape:
  {"id": "...", "name": "...", "description": "...",
   "category": "...", "confidence": 0.8}`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	var reader io.Reader = cmd.InOrStdin()
	if syncFile != "" {
		f, err := os.Open(syncFile)
		if err != nil {
			return fmt.Errorf("opening patterns file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var patterns []patternInput
	if err := json.NewDecoder(reader).Decode(&patterns); err != nil {
		return fmt.Errorf("decoding patterns: %w", err)
	}

	input := make([]pattern.Pattern, len(patterns))
	for i, p := range patterns {
		input[i] = pattern.Pattern{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Confidence:  p.Confidence,
		}
	}

	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	result := svc.Syncer.Sync(ctx, input)
	if jsonOutput {
		return printJSON(result)
	}

	if result.Status != "success" {
		color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "sync failed: %s\n", result.Error)
		return nil
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "synced %d pattern(s) in %d batch(es)\n",
		result.Synced, result.Batches)
	if result.Failed > 0 {
		color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "%d pattern(s) failed\n", result.Failed)
	}
	return nil
}

type patternInput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
}

func init() {
	syncCmd.Flags().StringVarP(&syncFile, "file", "f", "", "Read patterns from a JSON file instead of stdin")
}
