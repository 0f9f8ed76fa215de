package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/No-Smoke/tos-bridge/internal/bridge"
)

var (
	relatedDepth int
	relatedLimit int
	relatedTypes []string
	relatedPaths bool
)

var relatedCmd = &cobra.Command{
	Use:   "related <external-id>",
	Short: "Find documents related through the knowledge graph",
	Long: `Walks the graph from a stored document through shared entities and
typed relationships, up to --depth document hops away.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func runRelated(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	result := svc.Traverser.FindRelated(ctx, bridge.RelatedRequest{
		ExternalID:        args[0],
		RelationshipTypes: relatedTypes,
		MaxDepth:          relatedDepth,
		Limit:             relatedLimit,
		IncludePaths:      relatedPaths,
	})
	if jsonOutput {
		return printJSON(result)
	}

	if result.Status != bridge.StatusSuccess {
		color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "traversal failed: %s\n", result.Error)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d document(s) related to %s (depth %d)\n",
		result.Total, result.Source.ExternalID, result.MaxDepth)
	for _, doc := range result.Related {
		fmt.Fprintf(cmd.OutOrStdout(), "  d=%d  %s  %s\n", doc.Distance, doc.ExternalID, doc.Title)
		if len(doc.SharedEntities) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "       shared: %s\n", strings.Join(doc.SharedEntities, ", "))
		}
		if relatedPaths && len(doc.RelationshipTypes) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "       path:   %s\n", strings.Join(doc.RelationshipTypes, " -> "))
		}
	}
	return nil
}

func init() {
	relatedCmd.Flags().IntVarP(&relatedDepth, "depth", "d", 2, "Traversal depth in document hops (1-3)")
	relatedCmd.Flags().IntVarP(&relatedLimit, "limit", "n", 10, "Maximum number of related documents")
	relatedCmd.Flags().StringSliceVarP(&relatedTypes, "type", "t", nil, "Relationship types to traverse (repeatable)")
	relatedCmd.Flags().BoolVar(&relatedPaths, "paths", false, "Include traversed relationship paths")
}
