package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/No-Smoke/tos-bridge/internal/bridge"
)

var storeFile string

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Store a document into both stores",
	Long: `Reads a store request as JSON from --file (or stdin) and persists it:
the text is embedded, upserted into the vector index, and mirrored as a
Document node with its entities and relationships in the graph.

Request shape:
  {
    "text": "...", "collection": "...", "title": "...",
    "entities": [{"name": "...", "type": "...", "importance": 0.9}],
    "relations": [{"target": "...", "type": "depends on", "context": "..."}]
  }`,
	RunE: runStore,
}

func runStore(cmd *cobra.Command, args []string) error {
	var reader io.Reader = cmd.InOrStdin()
	if storeFile != "" {
		f, err := os.Open(storeFile)
		if err != nil {
			return fmt.Errorf("opening request file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var req bridge.StoreRequest
	if err := json.NewDecoder(reader).Decode(&req); err != nil {
		return fmt.Errorf("decoding store request: %w", err)
	}

	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	result := svc.Writer.StoreDocument(ctx, req)
	if jsonOutput {
		return printJSON(result)
	}

	if result.Status != bridge.StatusSuccess {
		color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "store failed: %s\n", result.Error)
		return nil
	}

	green := color.New(color.FgGreen)
	green.Fprintf(cmd.OutOrStdout(), "stored %s\n", result.ExternalID)
	fmt.Fprintf(cmd.OutOrStdout(), "  collection:    %s\n", result.Collection)
	fmt.Fprintf(cmd.OutOrStdout(), "  graph node:    %s\n", result.GraphNodeID)
	fmt.Fprintf(cmd.OutOrStdout(), "  entities:      %d created, %d failed\n",
		result.EntitiesCreated, result.EntitiesFailed)
	fmt.Fprintf(cmd.OutOrStdout(), "  relationships: %d created, %d failed\n",
		result.RelationshipsCreated, result.RelationshipsFailed)
	if result.Partial {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "  partial: some graph enrichment failed")
	}
	return nil
}

func init() {
	storeCmd.Flags().StringVarP(&storeFile, "file", "f", "", "Read the store request from a JSON file instead of stdin")
}
