package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-introspect/internal/security/secrethash"
)

// hash-secret genera el secret_hash de un client para el seed o la tabla oauth_clients.
func newHashSecretCmd() *cobra.Command {
	var alg string
	cmd := &cobra.Command{
		Use:   "hash-secret",
		Short: "Hashea un client secret leído de stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			secret := strings.TrimRight(string(b), "\r\n")
			if secret == "" {
				return errors.New("secret vacío")
			}
			hash, err := secrethash.Hash(secrethash.Algorithm(alg), secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&alg, "alg", string(secrethash.Bcrypt), "bcrypt | argon2id")
	return cmd
}
