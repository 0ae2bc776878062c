// Command rentalsync runs calendar syncs and feed exports from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rentalsync/backend/internal/app"
	"github.com/rentalsync/backend/internal/config"
)

var (
	configPath string
	outputJSON bool
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "rentalsync",
		Short:        "Calendar sync tooling for RentalSync",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")

	rootCmd.AddCommand(
		syncCmd(),
		importCmd(),
		tokenCmd(),
		exportCmd(),
		migrateCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp loads the configuration, wires the services and hands them to fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
