package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	"github.com/Artt4/disc-golf-equipment-price-comparator/internal/scraper"
	"github.com/Artt4/disc-golf-equipment-price-comparator/logger"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/db"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/runner"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/secrets"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	root := &cobra.Command{
		Use:          "discscraper",
		Short:        "Scrapes disc golf product listings into the shared catalog table",
		SilenceUsage: true,
	}
	root.AddCommand(newRunAllCmd(), newRunCmd(), newMigrateCmd(), newListCmd())

	if err := root.Execute(); err != nil {
		logger.Default.Fatal().Err(err).Msg("Command failed")
	}
}

// build wires configuration, cache, scrapers and the database connector.
// Configuration and secret problems surface here, before any store runs.
func build() (*runner.Runner, *db.Connector, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, apperrors.NewConfiguration("invalid configuration", err)
	}
	helpers.SetFetchTimeout(cfg.FetchTimeout)

	cacheSvc := cache.NewMemcacheService(cfg.MemcacheAddr)
	scrapers := scraper.CreateScrapers(cfg, cacheSvc)

	connector := db.NewConnector(secrets.NewEnvProvider())
	if _, err := connector.DSN(); err != nil {
		return nil, nil, err
	}

	opener := runner.OpenerFunc(func(ctx context.Context) (runner.Gateway, error) {
		return connector.Open(ctx)
	})
	return runner.NewRunner(scrapers, opener), connector, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-all",
		Short: "Run every store scraper in sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := build()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			r.RunAll(ctx)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <store>...",
		Short: "Run the scrapers for the named stores only",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := build()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			return r.RunStores(ctx, args)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the product table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, connector, err := build()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			gateway, err := connector.Open(ctx)
			if err != nil {
				return err
			}
			defer gateway.Close(ctx)

			return gateway.EnsureSchema(ctx)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered stores in run order",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := build()
			if err != nil {
				return err
			}
			for _, name := range r.Stores() {
				cmd.Println(name)
			}
			return nil
		},
	}
}
