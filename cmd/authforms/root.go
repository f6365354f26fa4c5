// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/authforms/authforms/internal/config"
	"github.com/authforms/authforms/internal/logging"
	"github.com/authforms/authforms/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// serviceName is stamped on every log record.
const serviceName = "authforms"

// NewRootCmd creates the root command for the authforms CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authforms",
		Short: "AuthForms - validated authentication form submission",
		Long: `AuthForms validates and submits login, registration and password-reset
forms against an in-memory authentication backend, either one form at a
time from the command line or over HTTP.`,
		SilenceUsage: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/authforms/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	// Add subcommands
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewRegisterCmd())
	cmd.AddCommand(NewForgotPasswordCmd())
	cmd.AddCommand(NewResetPasswordCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// loadConfig loads configuration for cmd. Without --config the XDG default
// file is used if it exists.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	optional := false
	if path == "" {
		optional = true
		if p, err := xdg.ConfigFile(); err == nil {
			path = p
		}
	}
	return config.Load(path, optional, cmd.Flags())
}

// setupLogging installs the default logger for cfg.
func setupLogging(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	}), nil
}
