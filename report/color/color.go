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

// Package color configures the colors of terminal reports.
package color

import (
	"fmt"
	"strings"

	"github.com/draphael123/docdecoupler/internal/config"
)

// A Option makes it possible to configure custom colors in [report.Summary].
type Option func(*config.ColorConfig)

// Terminal enables the default colors. Options after it override individual colors.
func Terminal() Option {
	return func(cc *config.ColorConfig) {
		cc.Header = format([]int{1})
		cc.Shared = format([]int{32})
		cc.UniqueA = format([]int{31})
		cc.UniqueB = format([]int{34})
		cc.Fuzzy = format([]int{33})
	}
}

// Headers colors section headers.
func Headers(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.Header = code
	}
}

// Shared colors shared lines and counts.
func Shared(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.Shared = code
	}
}

// UniqueA colors lines that only exist in document A.
func UniqueA(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.UniqueA = code
	}
}

// UniqueB colors lines that only exist in document B.
func UniqueB(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.UniqueB = code
	}
}

// Fuzzy colors fuzzy match counts and confidences.
func Fuzzy(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.Fuzzy = code
	}
}

// Config returns the color configuration for opts.
func Config(opts ...Option) config.ColorConfig {
	var cc config.ColorConfig
	for _, opt := range opts {
		opt(&cc)
	}
	return cc
}

func format(params []int) string {
	if len(params) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\033[")
	for i, v := range params {
		if i > 0 {
			sb.WriteRune(';')
		}
		fmt.Fprint(&sb, v)
	}
	sb.WriteRune('m')
	return sb.String()
}
