package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentalsync/backend/internal/app"
	"github.com/rentalsync/backend/internal/storage/models"
)

func syncCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sync [tenant]",
		Short: "Import the calendar feeds of a tenant's housing units",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("choose either a tenant or --all")
			}
			if !all && len(args) != 1 {
				return fmt.Errorf("a tenant id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if all {
					reports, err := a.Orchestrator.SyncAllTenants(cmd.Context())
					if err != nil {
						return err
					}
					if outputJSON {
						return printJSON(reports)
					}
					for _, report := range reports {
						printReport(report)
					}
					return nil
				}

				report, err := a.Orchestrator.SyncAll(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(report)
				}
				printReport(*report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Sync every tenant with a feed configured")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <tenant> <unit>",
		Short: "Import the calendar feed of a single housing unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				report, err := a.Orchestrator.SyncUnit(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(report)
				}
				printReport(*report)
				return nil
			})
		},
	}
}

func printReport(report models.SyncReport) {
	fmt.Printf("Tenant %s: %d units, %d created, %d updated, %d skipped\n",
		report.TenantID, report.Units, report.Created, report.Updated, report.Skipped)
	if report.Message != "" {
		fmt.Println(report.Message)
	}
	if len(report.Errors) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT ID\tUNIT\tERROR")
	for _, e := range report.Errors {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.UnitID, e.Unit, e.Error)
	}
	w.Flush()
}
