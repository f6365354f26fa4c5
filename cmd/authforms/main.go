// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package main is the entry point for the authforms CLI and server.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = formatVersion(version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// formatVersion renders the --version string.
func formatVersion(v, c, d string) string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
