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

// Package config provides shared configuration mechanisms for packages this module.
//
// This package is an implementation detail, the configuration surface for users is provided via
// decouple.Option.
package config

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold is the default minimum similarity for fuzzy matches.
const DefaultThreshold = 0.65

// ErrThreshold is returned by [Config.Validate] for a threshold outside of [0, 1].
var ErrThreshold = errors.New("invalid threshold")

// Config collects all configurable parameters for comparison functions in this module.
type Config struct {
	// Threshold is the minimum similarity for fuzzy matches.
	Threshold float64

	// If set, Progress is called with the current stage, the overall progress in [0, 1] and a
	// human readable message.
	Progress func(stage int, fraction float64, msg string)
}

// Default is the default configuration.
var Default = Config{
	Threshold: DefaultThreshold,
	Progress:  nil,
}

// Validate reports whether the configuration can be used for a comparison.
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: %v is not in [0, 1]", ErrThreshold, c.Threshold)
	}
	return nil
}

// Flag describes a single config entry. This is used to detect if configurations are being set
// that are not supported by a function.
type Flag int

const (
	Threshold Flag = 1 << iota
	Progress
)

// Option is the mechanism used to expose the configuration to users.
type Option func(*Config) Flag

// FromOptions creates a configuration from a set of options.
func FromOptions(opts []Option, allowed Flag) Config {
	cfg := Default
	for _, opt := range opts {
		flag := opt(&cfg)
		if flag & ^allowed != 0 {
			panic("Option " + printFlag(flag) + " not allowed here")
		}
	}
	return cfg
}

func printFlag(flag Flag) string {
	switch flag {
	case Threshold:
		return "decouple.Threshold"
	case Progress:
		return "decouple.Observer"
	default:
		panic("never reached")
	}
}

// ColorConfig holds the ANSI escape sequences used to color terminal reports. An empty sequence
// disables coloring for that element.
type ColorConfig struct {
	Header  string
	Shared  string
	UniqueA string
	UniqueB string
	Fuzzy   string
}

// Reset is the escape sequence that ends a colored span.
const Reset = "\033[0m"

// Wrap colors s with code, if code is not empty.
func (cc ColorConfig) Wrap(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + Reset
}
