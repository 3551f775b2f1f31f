package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/landman/api/internal/services"
)

func (a *cli) exhibitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exhibit-a <file>",
		Short: "Parse an Exhibit-A party list (PDF or text)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readInput(args[0])
			if err != nil {
				return err
			}
			result, err := a.parser.ParseExhibitA(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}
}

func (a *cli) titleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "title <file>",
		Short: "Parse a title owner workbook (.csv or .xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readInput(args[0])
			if err != nil {
				return err
			}
			result, err := a.parser.ParseTitle(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}
}

func (a *cli) revenueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revenue <file>",
		Short: "Parse a revenue statement PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readInput(args[0])
			if err != nil {
				return err
			}
			result, err := a.parser.ParseRevenue(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}
}

// ResolveReport is what the resolve command prints.
type ResolveReport struct {
	JobID            string `json:"job_id"`
	Document         string `json:"document"`
	Records          int    `json:"records"`
	Created          int    `json:"created"`
	Matched          int    `json:"matched"`
	Skipped          int    `json:"skipped"`
	Relationships    int    `json:"relationships"`
	OwnershipRecords int    `json:"ownership_records"`
}

func (a *cli) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file>",
		Short: "Parse a party list or owner workbook and resolve it into an in-memory registry",
		Long: "Parses <file> and runs entity resolution over every record. CSV and XLSX\n" +
			"files are read as title owner workbooks; anything else as an Exhibit-A list.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := readInput(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			report := ResolveReport{Document: name}
			var summary *services.IngestSummary
			if isWorkbook(name) {
				result, err := a.parser.ParseTitle(ctx, name, data)
				if err != nil {
					return err
				}
				report.JobID, report.Records = result.JobID, result.Total
				summary, err = a.registry.IngestOwners(ctx, result.Owners, services.NewSource(services.ToolTitle, result.JobID, name))
				if err != nil {
					return fmt.Errorf("resolution failed: %w", err)
				}
			} else {
				result, err := a.parser.ParseExhibitA(ctx, name, data)
				if err != nil {
					return err
				}
				report.JobID, report.Records = result.JobID, result.Total
				summary, err = a.registry.IngestParties(ctx, result.Entries, services.NewSource(services.ToolExtract, result.JobID, name))
				if err != nil {
					return fmt.Errorf("resolution failed: %w", err)
				}
			}

			report.Created = summary.Created
			report.Matched = summary.Matched
			report.Skipped = summary.Skipped
			report.Relationships = summary.Relationships
			report.OwnershipRecords = summary.OwnershipRecords
			return a.print(report)
		},
	}
}
