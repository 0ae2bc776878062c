package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rentalsync/backend/internal/app"
	"github.com/rentalsync/backend/internal/auth"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <tenant>",
		Short: "Print the calendar feed URL of a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Feed.Secret == "" {
				return fmt.Errorf("feed secret is not configured")
			}

			tenantID := args[0]
			feedURL := app.FeedURL(cfg.Feed, tenantID)

			if outputJSON {
				return printJSON(map[string]string{
					"tenant_id": tenantID,
					"token":     auth.NewFeedSigner(cfg.Feed.Secret).Token(tenantID),
					"url":       feedURL,
				})
			}
			fmt.Println(feedURL)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <tenant>",
		Short: "Write a tenant's calendar feed as an .ics file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				doc, err := a.Exporter.Export(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = os.Stdout.Write(doc)
					return err
				}
				if err := os.WriteFile(output, doc, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", output, err)
				}
				fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(doc), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
