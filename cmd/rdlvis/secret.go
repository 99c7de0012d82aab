// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/iso15926vis/rdlvis/internal/secrets"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/spf13/cobra"
)

// secretStoreFactory is swapped in tests.
var secretStoreFactory = func() secrets.Store { return secrets.NewKeyringStore() }

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage credentials in the OS keyring",
		Long: "Store, list and delete credentials kept in the OS keyring. Config values of the form " +
			secrets.Ref("<name>") + " are replaced with the stored secret at startup.",
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretListCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret; the value is read from --value or the first line of stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			value, _ := cmd.Flags().GetString("value")
			if !cmd.Flags().Changed("value") {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				value = strings.TrimRight(line, "\r\n")
				if value == "" && err != nil {
					return rdlerr.New(rdlerr.CodeCLIInputInvalid, "no secret value given on stdin or via --value")
				}
			}

			if err := secretStoreFactory().Store(secrets.ServiceName, name, value); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Secret %q stored. Reference it as %s\n", name, secrets.Ref(name))
			return err
		},
	}

	cmd.Flags().String("value", "", "secret value (visible in shell history; prefer stdin)")
	return cmd
}

func newSecretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored secret names",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := secretStoreFactory().List(secrets.ServiceName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				_, err := fmt.Fprintln(out, "No secrets stored.")
				return err
			}
			for _, k := range keys {
				if _, err := fmt.Fprintf(out, "%s\t%s\n", k, secrets.Ref(k)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secretStoreFactory().Delete(secrets.ServiceName, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Secret %q deleted.\n", args[0])
			return err
		},
	}
}
