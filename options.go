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

package decouple

import "github.com/draphael123/docdecoupler/internal/config"

// Option configures the behavior of comparison functions.
type Option = config.Option

// DefaultThreshold is the default minimum similarity for fuzzy matches.
const DefaultThreshold = config.DefaultThreshold

// Threshold sets the minimum similarity in [0, 1] for two lines to be considered a fuzzy match.
// The default is [DefaultThreshold].
//
// A threshold outside of [0, 1] is rejected by [Compare] with [ErrInvalidThreshold].
func Threshold(t float64) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Threshold = t
		return config.Threshold
	}
}

// Observer installs a progress observer that is called while [Compare] is running.
//
// Progress reports are advisory, they are coarse and there are no guarantees about their number.
// The observer is called synchronously from the goroutine running the comparison and it has no
// influence on the result.
func Observer(fn func(Progress)) Option {
	return func(cfg *config.Config) config.Flag {
		if fn == nil {
			cfg.Progress = nil
		} else {
			cfg.Progress = func(stage int, fraction float64, msg string) {
				fn(Progress{Stage: Stage(stage), Fraction: fraction, Message: msg})
			}
		}
		return config.Progress
	}
}

// Progress describes the progress of a running comparison.
type Progress struct {
	Stage    Stage
	Fraction float64 // Overall progress in [0, 1].
	Message  string
}

// Stage describes a stage of the matching pipeline. Stages are run in the order they are declared
// in, none of them is skipped.
//
//go:generate go tool golang.org/x/tools/cmd/stringer -type=Stage -linecomment
type Stage int

const (
	Idle          Stage = iota // idle
	ExactMatching              // exact-matching
	FuzzyMatching              // fuzzy-matching
	Partitioning               // partitioning
	Done                       // done
)
