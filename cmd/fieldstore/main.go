package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"solarops/fieldstore/internal/api"
	"solarops/fieldstore/internal/config"
	"solarops/fieldstore/internal/db"
	"solarops/fieldstore/internal/logging"
	"solarops/fieldstore/internal/metrics"
	"solarops/fieldstore/internal/routes"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "fieldstore",
		Short: "Offline field-service data core for solar-site technicians",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	root.AddCommand(
		serveCmd(&configPath),
		seedCmd(&configPath),
		resetCmd(&configPath),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, initializes logging and brings the store to
// the current schema version, seeding when required.
func bootstrap(configPath string) (*config.Config, *api.Dependencies, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Init(cfg.Server.Environment); err != nil {
		return nil, nil, err
	}

	gdb, err := db.Open(cfg.Store.Path)
	if err != nil {
		logging.Error("Failed to open local store", "path", cfg.Store.Path, "error", err.Error())
		return nil, nil, err
	}

	ctx := context.Background()
	manager := db.NewManager(gdb, cfg.Store.DestructiveUpgrade)
	mustSeed, err := manager.EnsureSchema(ctx)
	if err != nil {
		logging.Error("Schema migration failed", "error", err.Error())
		return nil, nil, err
	}

	reg := metrics.NewMetricsRegistry()
	deps := api.InitDependencies(gdb, cfg, reg, nil)

	if mustSeed {
		if err := deps.Services.Seed.Run(ctx); err != nil {
			logging.Error("Seed pipeline failed", "error", err.Error())
			return nil, nil, err
		}
	}

	return cfg, deps, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local bridge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logging.Close()

			upSince := time.Now()
			router := routes.RegisterRoutes(deps.DB, deps, upSince)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.Handle("/", router)

			addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
			logging.Info("Bridge server starting",
				"addr", addr,
				"environment", cfg.Server.Environment,
				"store_path", cfg.Store.Path,
			)
			return http.ListenAndServe(addr, mux)
		},
	}
}

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Ensure the store is migrated and seeded, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logging.Close()
			return deps.Services.Seed.Run(context.Background())
		},
	}
}

func resetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the local store file; next start rebuilds and re-seeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Path == ":memory:" {
				return nil
			}
			if err := os.Remove(cfg.Store.Path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove store file: %w", err)
			}
			fmt.Printf("Removed %s\n", cfg.Store.Path)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fieldstore version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fieldstore %s (schema v%d)\n", version, db.SchemaVersion)
		},
	}
}
