// Command introspectd sirve el endpoint de introspección OAuth 2.0 (RFC 7662)
// y trae utilidades de operación: verify, migrate y hash-secret.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-introspect/internal/app"
	"github.com/dropDatabas3/hellojohn-introspect/internal/config"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "introspectd",
		Short:         "OAuth 2.0 token introspection service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env es opcional; las variables ya definidas ganan.
			if flags.envFile != "" {
				if err := godotenv.Load(flags.envFile); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("dotenv %s: %w", flags.envFile, err)
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", envOr("CONFIG_PATH", "configs/config.yaml"), "Ruta del config YAML (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Archivo .env a cargar antes de leer la config")

	root.AddCommand(
		newServeCmd(flags),
		newVerifyCmd(flags),
		newMigrateCmd(),
		newHashSecretCmd(),
	)
	return root
}

// loadConfig lee la config e inicializa el logger con app.env y log.level.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	path := flags.configPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Sin archivo: defaults + env.
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	env := "dev"
	if cfg.App.Env == "prod" {
		env = "prod"
	}
	logger.Init(logger.Config{
		Env:         env,
		Level:       cfg.Log.Level,
		ServiceName: "introspectd",
		Version:     app.Version,
	})
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
