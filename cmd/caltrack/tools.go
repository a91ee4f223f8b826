package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
)

func NewToolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tools",
		Short:   "Inspect the equipment catalog",
		GroupID: gBasic,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all tool IDs in the catalog",
			RunE: func(c *cobra.Command, _ []string) error {
				ids, err := apiClient.GetToolIDs(c.Context())
				if err != nil {
					return fmt.Errorf("failed to list tools: %w", err)
				}
				for _, id := range ids {
					fmt.Println(id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <tool-id>",
			Short: "Show one tool's calibration requirements",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				resolver := catalog.NewResolver(apiClient, nil)
				spec, err := resolver.Resolve(c.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to resolve tool %s: %w", args[0], err)
				}
				printToolSpec(spec)
				return nil
			},
		},
	)

	return cmd
}

func printToolSpec(spec calibration.ToolSpec) {
	bold := color.New(color.Bold)
	fmt.Printf("Tool: %s\n", bold.Sprint(spec.ID))
	if spec.Name != "" {
		fmt.Printf("Name: %s\n", spec.Name)
	}
	if spec.ReferencePattern != "" {
		fmt.Printf("Reference pattern: %s\n", spec.ReferencePattern)
	}
	fmt.Printf("Cadence: every %d days\n", spec.CadenceDays)
	fmt.Printf("Dimensions: %d\n", spec.DimensionCount())
	for i, w := range spec.ToleranceWindows() {
		fmt.Printf("  %d: [%g, %g]\n", i+1, w.Min, w.Max)
	}
}
