package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/caltrack/caltrack/pkg/calibration"
)

func NewRecordsCommand() *cobra.Command {
	limit := 10

	cmd := &cobra.Command{
		Use:     "records <tool-id>",
		Short:   "List past calibration records of a tool, newest first",
		GroupID: gBasic,
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			recs, err := apiClient.ListRecords(c.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}
			if len(recs) == 0 {
				fmt.Println("No calibration records on file.")
				return nil
			}
			for _, rec := range recs {
				printRecord(rec)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", limit, "maximum number of records to show (0 for all)")

	return cmd
}

func printRecord(rec calibration.Record) {
	status := color.GreenString(string(rec.Estatus))
	if rec.Estatus != calibration.StatusOK {
		status = color.RedString(string(rec.Estatus))
	}
	fmt.Printf("%s  %s  by %s  next %s  [%s]\n",
		rec.Fecha, status, rec.Nomina, rec.SiguienteCalibracion,
		strings.Join(rec.Dimensiones, ", "))
	if rec.Comentarios != "" {
		fmt.Printf("  comments: %s\n", rec.Comentarios)
	}
}
