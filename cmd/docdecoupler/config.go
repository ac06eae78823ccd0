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

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/baditaflorin/l"
	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/internal/server"
	"github.com/draphael123/docdecoupler/report"
	"github.com/goccy/go-yaml"
)

// config is the content of the configuration file. Command line flags take precedence.
type config struct {
	Threshold float64      `yaml:"threshold"`
	Format    string       `yaml:"format"`
	Server    serverConfig `yaml:"server"`
	Log       logConfig    `yaml:"log"`
}

type serverConfig struct {
	Addr     string `yaml:"addr"`
	MaxBody  int    `yaml:"max_body"`
	Sessions int    `yaml:"sessions"`
}

type logConfig struct {
	JSON bool   `yaml:"json"`
	File string `yaml:"file"`
}

func defaults() config {
	return config{
		Threshold: decouple.DefaultThreshold,
		Format:    "summary",
		Server: serverConfig{
			Addr:     server.DefaultAddr,
			MaxBody:  server.DefaultMaxBody,
			Sessions: 20,
		},
	}
}

// loadConfig reads the configuration file at path on top of the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
		return config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("config: threshold %v is not in [0, 1]", c.Threshold)
	}
	if _, err := parseOutputFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is empty")
	}
	if c.Server.MaxBody <= 0 {
		return errors.New("config: server.max_body must be > 0")
	}
	if c.Server.Sessions <= 0 {
		return errors.New("config: server.sessions must be > 0")
	}
	return nil
}

// outputFormat is a format of the compare and override commands: either an export format, the
// raw result, a terminal summary or a generated document.
type outputFormat struct {
	export   report.Format
	isExport bool
	name     string
}

func parseOutputFormat(s string) (outputFormat, error) {
	switch s {
	case "summary", "result", "document":
		return outputFormat{name: s}, nil
	}
	f, err := report.ParseFormat(s)
	if err != nil {
		return outputFormat{}, fmt.Errorf("unknown format %q, want summary, result, document, json, yaml, csv or markdown", s)
	}
	return outputFormat{export: f, isExport: true, name: f.String()}, nil
}

func newLogger(cfg logConfig, stderr io.Writer) (l.Logger, error) {
	output := stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
	}
	logger, err := l.NewStandardFactory().CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  cfg.JSON,
		AsyncWrite:  false,
		MaxFileSize: 100 * 1024 * 1024,
		MaxBackups:  5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
