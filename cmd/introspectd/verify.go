package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-introspect/internal/app"
	dto "github.com/dropDatabas3/hellojohn-introspect/internal/http/dto/oauth"
)

func newVerifyCmd(flags *rootFlags) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Introspecta un token offline con el store y la clave configurados",
		Long:  "Imprime la respuesta de introspección (activa o {\"active\":false}). Con --token - lee el token de stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				token = strings.TrimSpace(string(b))
			}
			if token == "" {
				return errors.New("--token es requerido")
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			c, err := app.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Services.Introspect.Introspect(cmd.Context(), token)
			if err != nil {
				return fmt.Errorf("introspect: %w", err)
			}

			var out any = dto.Inactive()
			if resp != nil {
				out = resp
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&token, "token", os.Getenv("INTROSPECT_TOKEN"), "JWT a verificar (\"-\" lee de stdin)")
	return cmd
}
