// migrate aplica o revierte las migraciones embebidas del motor de conteos.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate steps -- -1
//	go run ./cmd/migrate version
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/conteo-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/conteo-inventario/pkg/config"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var databaseURL string
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Migraciones de base de datos del motor de conteos",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "connection string (por defecto DATABASE_URL / DB_*)")

	withMigrator := func(fn func(*postgres.Migrator, []string) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
			url := databaseURL
			if url == "" {
				url = cfg.DB.ConnectionString()
			}
			mg, err := postgres.NewMigrator(url, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := mg.Close(); err != nil {
					log.Warn().Err(err).Msg("cerrar migrador")
				}
			}()
			return fn(mg, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica todas las migraciones pendientes",
			RunE:  withMigrator(func(mg *postgres.Migrator, _ []string) error { return mg.Up() }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revierte todas las migraciones",
			RunE:  withMigrator(func(mg *postgres.Migrator, _ []string) error { return mg.Down() }),
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Aplica N migraciones (negativo = revierte)",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(mg *postgres.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("N debe ser entero: %w", err)
				}
				return mg.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Muestra la versión aplicada",
			RunE: withMigrator(func(mg *postgres.Migrator, _ []string) error {
				v, dirty, err := mg.Version()
				if err != nil {
					return err
				}
				fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
				return nil
			}),
		},
	)
	return root
}
