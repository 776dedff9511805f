package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-introspect/internal/store/pg"
	migrations "github.com/dropDatabas3/hellojohn-introspect/migrations/postgres"
)

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema Postgres embebido",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = envOr("STORAGE_DSN", "")
			}
			if dsn == "" {
				return errors.New("--dsn (o STORAGE_DSN) es requerido")
			}
			logger.Init(logger.Config{Env: "dev", Level: envOr("LOG_LEVEL", "info"), ServiceName: "introspectd"})

			ctx := cmd.Context()
			s, err := pg.New(ctx, dsn, pg.Options{MaxConns: 2})
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := pg.RunMigrations(ctx, s.Pool(), migrations.FS)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied: %d\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "DSN de Postgres (default: env STORAGE_DSN)")
	return cmd
}
