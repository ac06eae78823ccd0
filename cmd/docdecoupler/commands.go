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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/extract"
	"github.com/draphael123/docdecoupler/internal/mcptool"
	"github.com/draphael123/docdecoupler/internal/server"
	"github.com/draphael123/docdecoupler/report"
	"github.com/draphael123/docdecoupler/report/color"
	"github.com/draphael123/docdecoupler/session"
	"github.com/goccy/go-yaml"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// outputOptions are the flags that control how results are written.
type outputOptions struct {
	format        string
	output        string
	color         bool
	title         string
	sections      []string
	pageNumbers   bool
	minConfidence float64
}

func (o *outputOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.format, "format", "summary", "output format: summary, result, document, json, yaml, csv or markdown")
	f.StringVarP(&o.output, "output", "o", "", "write the output to this file instead of stdout")
	f.BoolVar(&o.color, "color", false, "color the summary for terminals")
	f.StringVar(&o.title, "title", "", "title of a generated document")
	f.StringSliceVar(&o.sections, "sections", []string{"shared", "a", "b"}, "sections of a generated document: shared, a, b")
	f.BoolVar(&o.pageNumbers, "page-numbers", false, "prefix the lines of a generated document with their page")
	f.Float64Var(&o.minConfidence, "min-confidence", 0, "omit shared lines from matches with a lower confidence in a generated document")
}

func (o *outputOptions) selection() (report.Selection, error) {
	sel := report.Selection{
		Title:         o.title,
		PageNumbers:   o.pageNumbers,
		SourceInfo:    true,
		MinConfidence: o.minConfidence,
	}
	for _, s := range o.sections {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "shared":
			sel.Shared = true
		case "a":
			sel.UniqueA = true
		case "b":
			sel.UniqueB = true
		default:
			return report.Selection{}, fmt.Errorf("unknown section %q, want shared, a or b", s)
		}
	}
	return sel, nil
}

func (a *app) compareCmd() *cobra.Command {
	var (
		threshold     float64
		overridesPath string
		out           outputOptions
	)
	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Compare two documents",
		Long: "Compare two documents line by line. Documents are plain text files (.txt, .md), " +
			"pages separated by form feeds, or PDF files (.pdf).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("threshold") {
				a.cfg.Threshold = threshold
			}
			if !cmd.Flags().Changed("format") {
				out.format = a.cfg.Format
			}
			format, err := parseOutputFormat(out.format)
			if err != nil {
				return err
			}
			var overrides map[string]decouple.Decision
			if overridesPath != "" {
				if overrides, err = readOverrides(overridesPath); err != nil {
					return err
				}
			}

			linesA, err := extract.File(decouple.DocA, args[0])
			if err != nil {
				return err
			}
			linesB, err := extract.File(decouple.DocB, args[1])
			if err != nil {
				return err
			}
			unitsA, unitsB := decouple.Units(linesA), decouple.Units(linesB)

			start := time.Now()
			a.logger.Info("Comparison started",
				"a", args[0],
				"b", args[1],
				"units_a", len(unitsA),
				"units_b", len(unitsB),
				"threshold", a.cfg.Threshold,
			)
			r, err := decouple.Compare(unitsA, unitsB,
				decouple.Threshold(a.cfg.Threshold),
				decouple.Observer(func(p decouple.Progress) {
					a.logger.Debug("Progress", "stage", p.Stage.String(), "fraction", p.Fraction, "message", p.Message)
				}),
			)
			if err != nil {
				return err
			}
			if r, err = decouple.ApplyOverrides(r, overrides); err != nil {
				return err
			}
			st := r.Stats()
			a.logger.Info("Comparison finished",
				"matches", st.Matches,
				"exact", st.Exact,
				"fuzzy", st.Fuzzy,
				"overridden", st.Overridden,
				"duration", time.Since(start),
			)

			names := report.Names{A: filepath.Base(args[0]), B: filepath.Base(args[1])}
			return a.write(r, names, format, &out)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", decouple.DefaultThreshold, "minimum token overlap in [0, 1] for fuzzy matches")
	cmd.Flags().StringVar(&overridesPath, "overrides", "", "YAML file mapping match IDs to decisions (shared or unique)")
	out.register(cmd)
	return cmd
}

func (a *app) overrideCmd() *cobra.Command {
	var (
		sets          []string
		overridesPath string
		nameA, nameB  string
		out           outputOptions
	)
	cmd := &cobra.Command{
		Use:   "override RESULT",
		Short: "Apply reviewer decisions to a result",
		Long: "Apply reviewer decisions to a result written by compare --format result. Decisions " +
			"already present in the result are kept unless they're replaced.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				out.format = a.cfg.Format
			}
			format, err := parseOutputFormat(out.format)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var r decouple.Result
			if err := json.Unmarshal(data, &r); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			overrides := make(map[string]decouple.Decision)
			for _, m := range r.Matches {
				if m.Override != decouple.Undecided {
					overrides[m.ID] = m.Override
				}
			}
			if overridesPath != "" {
				fromFile, err := readOverrides(overridesPath)
				if err != nil {
					return err
				}
				for id, d := range fromFile {
					overrides[id] = d
				}
			}
			for _, s := range sets {
				id, v, ok := strings.Cut(s, "=")
				if !ok {
					return fmt.Errorf("invalid override %q, want MATCH_ID=DECISION", s)
				}
				d, err := decouple.ParseDecision(v)
				if err != nil {
					return err
				}
				overrides[id] = d
			}

			if r, err = decouple.ApplyOverrides(r, overrides); err != nil {
				return err
			}
			a.logger.Info("Overrides applied", "result", args[0], "overrides", len(overrides), "shared", len(r.Shared))
			return a.write(r, report.Names{A: nameA, B: nameB}, format, &out)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "set a decision, MATCH_ID=shared|unique|none (repeatable)")
	cmd.Flags().StringVar(&overridesPath, "overrides", "", "YAML file mapping match IDs to decisions")
	cmd.Flags().StringVar(&nameA, "name-a", "Document A", "display name of document A")
	cmd.Flags().StringVar(&nameB, "name-b", "Document B", "display name of document B")
	out.register(cmd)
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:      a.cfg.Server.Addr,
				MaxBody:   a.cfg.Server.MaxBody,
				Threshold: &a.cfg.Threshold,
			}, session.NewStore(a.cfg.Server.Sessions), a.logger)

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Error during server shutdown", "error", err)
				return err
			}
			a.logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "address to listen on")
	return cmd
}

func (a *app) mcpCmd() *cobra.Command {
	var rootDir string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the compare_documents tool over MCP on stdin and stdout",
		Long: "Serve the compare_documents tool over MCP on stdin and stdout. Clients can pass " +
			"documents by path only if --root is set, and only files below it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var root *os.Root
			if rootDir != "" {
				var err error
				if root, err = os.OpenRoot(rootDir); err != nil {
					return err
				}
				defer root.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.logger.Info("MCP server started", "version", version, "root", rootDir)
			err := mcptool.NewServer(version, root).Run(ctx, &mcp.StdioTransport{})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&rootDir, "root", "", "directory clients may read documents from; without it only text is accepted")
	return cmd
}

// readOverrides reads a YAML file that maps match IDs to decisions.
func readOverrides(path string) (map[string]decouple.Decision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make(map[string]decouple.Decision, len(raw))
	for id, v := range raw {
		d, err := decouple.ParseDecision(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, id, err)
		}
		out[id] = d
	}
	return out, nil
}

// write writes r in the given format to the configured output.
func (a *app) write(r decouple.Result, names report.Names, format outputFormat, out *outputOptions) (err error) {
	var w io.Writer = a.stdout
	if out.output != "" {
		f, cerr := os.Create(out.output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if format.isExport {
		return report.Write(w, format.export, report.Export(r, names, time.Now()))
	}
	switch format.name {
	case "summary":
		var opts []color.Option
		if out.color {
			opts = append(opts, color.Terminal())
		}
		_, err = io.WriteString(w, report.Summary(r, names, opts...))
		return err
	case "result":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "document":
		sel, err := out.selection()
		if err != nil {
			return err
		}
		doc := report.Build(r, sel)
		doc.Generated = time.Now()
		_, err = io.WriteString(w, doc.Text())
		return err
	}
	panic("never reached")
}
