// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"errors"
	"log/slog"
	"net"

	"github.com/iso15926vis/rdlvis/internal/config"
	"github.com/iso15926vis/rdlvis/internal/secrets"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state resolved once per invocation by the root command.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCmd creates the root rdlvis command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "rdlvis",
		Short:         "rdlvis: ISO 15926 reference data library browser",
		Long:          "rdlvis serves the class hierarchy of an ISO 15926 reference data library snapshot and manages the snapshot history.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	// Global flags map to viper keys via init.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCmd(a),
		newFetchCmd(a),
		newHistoryCmd(a),
		newReloadCmd(a),
		newStatusCmd(a),
		newInspectCmd(a),
		newConfigCmd(a),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// init sets up viper with defaults, env bindings, flag bindings and an
// optional config file so the standard precedence (flag > env > file >
// defaults) is handled uniformly, then decodes the config and installs the
// logger.
func (a *app) init(cmd *cobra.Command) error {
	if err := a.initViper(cmd); err != nil {
		return err
	}

	password := a.v.GetString("source.password")
	plaintextPassword := password != "" && !secrets.IsRef(password)

	// The secret commands must work while a reference is still unset.
	if !inSecretCmd(cmd) {
		if err := secrets.ResolveViperSecrets(a.v, secretStoreFactory()); err != nil {
			return err
		}
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	verbose := a.v.GetBool("verbose")
	slog.SetDefault(cfg.Logging.NewLogger(cmd.ErrOrStderr(), verbose))

	if used := a.v.ConfigFileUsed(); used != "" {
		config.WarnInsecurePermissions(used, plaintextPassword)
		slog.Debug("config loaded", "path", used)
	}
	return nil
}

func (a *app) initViper(cmd *cobra.Command) error {
	v := a.v

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return rdlerr.Errorf(rdlerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted: with it set, viper also tries the bare
		// name, which collides with an ./rdlvis binary.
		v.SetConfigName("rdlvis")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/rdlvis")
		v.AddConfigPath("/etc/rdlvis")
		// No config file is fine. Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return rdlerr.Errorf(rdlerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return rdlerr.Errorf(rdlerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("storage.data_dir", flags.Lookup("data-dir")); err != nil {
		return rdlerr.Errorf(rdlerr.CodeCLISetupFailure, "binding data-dir flag: %w", err)
	}
	if err := v.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		return rdlerr.Errorf(rdlerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

func inSecretCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "secret" && c.Parent() == cmd.Root() {
			return true
		}
	}
	return false
}

// serverAddress returns the --address flag, or a dialable form of the
// configured listen address.
func (a *app) serverAddress(cmd *cobra.Command) string {
	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		return addr
	}
	return dialAddress(a.cfg.Networking.Listen)
}

// dialAddress maps wildcard listen hosts to loopback.
func dialAddress(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func addAddressFlag(cmd *cobra.Command) {
	cmd.Flags().String("address", "", "server address (default: networking.listen)")
}
