package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of every upstream dependency",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	report := svc.Health.Check(ctx)
	if jsonOutput {
		return printJSON(report)
	}

	stateColor(report.Overall).Fprintf(cmd.OutOrStdout(), "overall: %s\n", report.Overall)

	names := make([]string, 0, len(report.Components))
	for name := range report.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		status := report.Components[name]
		stateColor(status.State).Fprintf(cmd.OutOrStdout(), "  %-10s %-10s", name, status.State)
		fmt.Fprintf(cmd.OutOrStdout(), " %8s  %s\n", status.Latency.Round(time.Millisecond), status.Message)
	}
	return nil
}

func stateColor(state types.HealthState) *color.Color {
	switch state {
	case types.HealthStateHealthy:
		return color.New(color.FgGreen)
	case types.HealthStateDegraded:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
