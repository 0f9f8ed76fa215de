package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/No-Smoke/tos-bridge/internal/bridge"
)

var (
	searchCollection string
	searchLimit      int
	searchBoost      float64
	searchNoContext  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Hybrid vector + graph search",
	Long: `Embeds the query, pulls the nearest documents from the vector index,
expands through shared entities in the graph, and prints one fused ranking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	req := svc.NewSearchRequest(args[0], searchCollection)
	if searchLimit > 0 {
		req.Limit = searchLimit
	}
	if cmd.Flags().Changed("boost") {
		req.RelationshipBoost = searchBoost
	}
	req.IncludeGraphContext = !searchNoContext

	result := svc.Searcher.Search(ctx, req)
	if jsonOutput {
		return printJSON(result)
	}

	if result.Status != bridge.StatusSuccess {
		color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "search failed: %s\n", result.Error)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d result(s) for %q in %s\n",
		result.Total, result.Query, result.Collection)
	for i, c := range result.Results {
		marker := " "
		if c.DiscoveredViaGraph {
			marker = color.New(color.FgCyan).Sprint("G")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%s] %.4f  %s  %s\n",
			i+1, marker, c.BoostedScore, c.ExternalID, c.Title)
		if len(c.ConnectedEntities) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "        entities: %s\n",
				strings.Join(c.ConnectedEntities, ", "))
		}
	}
	return nil
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "C", "documents", "Collection to search")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results")
	searchCmd.Flags().Float64Var(&searchBoost, "boost", 0.2, "Score boost for graph-connected documents")
	searchCmd.Flags().BoolVar(&searchNoContext, "no-context", false, "Omit connected entity names from results")
}
