// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/authforms/authforms/internal/config"
	"github.com/authforms/authforms/internal/xdg"
)

// NewConfigCmd creates the config subcommand and its children.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigSchemaCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Long: `Write the default configuration, seeded with the demo accounts
user@example.com and test@example.com, to --config, or to
$XDG_CONFIG_HOME/authforms/config.yaml when --config is not given.
An existing file is left alone unless --force is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configFile
			if path == "" {
				p, err := xdg.ConfigFile()
				if err != nil {
					return err
				}
				path = p
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return oops.Code(config.CodeInvalid).With("path", path).Errorf("config file already exists")
				} else if !errors.Is(err, fs.ErrNotExist) {
					return oops.Code(config.CodeLoadFailed).With("path", path).Wrap(err)
				}
			}

			data, err := yaml.Marshal(config.Sample())
			if err != nil {
				return oops.Code(config.CodeInvalid).Wrap(err)
			}
			if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return oops.Code(config.CodeLoadFailed).With("path", path).Wrap(err)
			}

			cmd.Printf("Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long:  `Load the configuration the way every other command does and report whether it is valid.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			cmd.Println("Configuration is valid")
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}
