// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after defaults, config file, environment and flags are applied. Credentials are redacted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfg := *a.cfg
			if cfg.Source.Password != "" {
				cfg.Source.Password = redacted
			}

			if used := a.v.ConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(out, "# loaded from %s\n", used)
			} else {
				_, _ = fmt.Fprintln(out, "# no config file; defaults and environment only")
			}

			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	return cmd
}
