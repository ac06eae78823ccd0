// Copyright 2025 The docdecoupler Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command docdecoupler compares two documents line by line and separates their shared content
// from the content that is unique to either of them.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/l"
	"github.com/spf13/cobra"
)

var version = "dev"

// app holds the state shared by all commands.
type app struct {
	stdout, stderr io.Writer
	configPath     string
	cfg            config
	logger         l.Logger
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docdecoupler",
		Short:         "Separate shared from unique content of two documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Close()
			}
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path of a YAML configuration file")
	root.AddCommand(a.compareCmd(), a.overrideCmd(), a.serveCmd(), a.mcpCmd())
	return root
}

func (a *app) setup() error {
	a.cfg = defaults()
	if a.configPath != "" {
		cfg, err := loadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if err := a.cfg.validate(); err != nil {
		return err
	}
	logger, err := newLogger(a.cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}
