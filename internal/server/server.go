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

// Package server implements the HTTP API for reviewing comparisons.
package server

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/baditaflorin/l"
	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/extract"
	"github.com/draphael123/docdecoupler/report"
	"github.com/draphael123/docdecoupler/session"
	"github.com/valyala/fasthttp"
)

// Defaults for the zero fields of a [Config].
const (
	DefaultAddr         = ":8080"
	DefaultMaxBody      = 10 * 1024 * 1024 // Bytes.
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultWaitTimeout  = 60 * time.Second
)

// Config configures a [Server].
type Config struct {
	Addr         string
	MaxBody      int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	WaitTimeout  time.Duration // Maximum time a request waits for a comparison to finish.

	// Threshold for comparisons that don't specify one. If nil, [decouple.DefaultThreshold] is
	// used; zero is a valid threshold.
	Threshold *float64
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBody <= 0 {
		c.MaxBody = DefaultMaxBody
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.Threshold == nil {
		t := decouple.DefaultThreshold
		c.Threshold = &t
	}
}

// Server serves the review API.
type Server struct {
	cfg    Config
	store  *session.Store
	logger l.Logger
	srv    *fasthttp.Server
	now    func() time.Time
}

// New returns a server that keeps its sessions in store.
func New(cfg Config, store *session.Store, logger l.Logger) *Server {
	cfg.setDefaults()
	s := &Server{cfg: cfg, store: store, logger: logger, now: time.Now}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "docdecoupler",
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		MaxRequestBodySize: cfg.MaxBody,
		TCPKeepalive:       true,
	}
	return s
}

// ListenAndServe serves requests on the configured address until [Server.Shutdown] is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Server listening", "address", s.cfg.Addr)
	return s.srv.ListenAndServe(s.cfg.Addr)
}

// Serve serves requests from ln until [Server.Shutdown] is called.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Handler routes a request.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	ctx.Response.Header.Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "health":
		s.handleHealth(ctx)
	case len(parts) == 1 && parts[0] == "compare":
		s.handleCompare(ctx)
	case len(parts) == 1 && parts[0] == "sessions":
		s.handleList(ctx)
	case len(parts) == 2 && parts[0] == "sessions":
		s.withSession(ctx, parts[1], s.handleSession)
	case len(parts) == 3 && parts[0] == "sessions":
		switch parts[2] {
		case "overrides":
			s.withSession(ctx, parts[1], s.handleOverride)
		case "undo":
			s.withSession(ctx, parts[1], s.handleUndo)
		case "redo":
			s.withSession(ctx, parts[1], s.handleRedo)
		case "export":
			s.withSession(ctx, parts[1], s.handleExport)
		default:
			writeError(ctx, fasthttp.StatusNotFound, "Not found")
		}
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}

	s.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"duration", time.Since(start),
	)
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"status":   "ok",
		"time":     s.now().UTC().Format(time.RFC3339),
		"sessions": s.store.Len(),
	})
}

// CompareRequest is the body of a comparison request. The documents are plain text, pages are
// separated by form feeds.
type CompareRequest struct {
	AName     string   `json:"a_name"`
	BName     string   `json:"b_name"`
	A         string   `json:"a"`
	B         string   `json:"b"`
	Threshold *float64 `json:"threshold,omitempty"`
	Wait      bool     `json:"wait,omitempty"` // Respond after the comparison has finished.
}

func (s *Server) handleCompare(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req CompareRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	threshold := *s.cfg.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		writeError(ctx, fasthttp.StatusBadRequest, "Threshold must be in [0, 1]")
		return
	}
	a, err := textUnits(decouple.DocA, req.A)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid document A: "+err.Error())
		return
	}
	b, err := textUnits(decouple.DocB, req.B)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid document B: "+err.Error())
		return
	}

	names := report.Names{A: cmp.Or(req.AName, "Document A"), B: cmp.Or(req.BName, "Document B")}
	sess := s.store.Create(names)
	sess.Start(a, b, decouple.Threshold(threshold))
	s.logger.Info("Comparison started",
		"session", sess.ID,
		"units_a", len(a),
		"units_b", len(b),
		"threshold", threshold,
	)

	status := fasthttp.StatusAccepted
	if req.Wait {
		c, cancel := context.WithTimeout(context.Background(), s.cfg.WaitTimeout)
		defer cancel()
		r, err := sess.Wait(c)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("Comparison failed", "session", sess.ID, "error", err)
		}
		if err == nil {
			st := r.Stats()
			s.logger.Info("Comparison finished", "session", sess.ID, "matches", st.Matches, "exact", st.Exact, "fuzzy", st.Fuzzy)
			status = fasthttp.StatusCreated
		}
	}
	writeJSON(ctx, status, viewOf(sess))
}

func textUnits(doc decouple.DocID, text string) ([]decouple.TextUnit, error) {
	lines, err := extract.Text(doc, strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	return decouple.Units(lines), nil
}

func (s *Server) handleList(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	out := []SessionInfo{}
	for _, sess := range s.store.List() {
		out = append(out, infoOf(sess))
	}
	writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Server) withSession(ctx *fasthttp.RequestCtx, id string, handle func(*fasthttp.RequestCtx, *session.Session)) {
	sess, ok := s.store.Get(id)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, "Unknown session "+id)
		return
	}
	handle(ctx, sess)
}

func (s *Server) handleSession(ctx *fasthttp.RequestCtx, sess *session.Session) {
	switch {
	case ctx.IsGet():
		writeJSON(ctx, fasthttp.StatusOK, viewOf(sess))
	case ctx.IsDelete():
		s.store.Delete(sess.ID)
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	default:
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	}
}

// OverrideRequest toggles the decision for a match.
type OverrideRequest struct {
	MatchID  string            `json:"match_id"`
	Decision decouple.Decision `json:"decision"`
}

func (s *Server) handleOverride(ctx *fasthttp.RequestCtx, sess *session.Session) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req OverrideRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if _, err := sess.Toggle(req.MatchID, req.Decision); err != nil {
		writeSessionError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, viewOf(sess))
}

func (s *Server) handleUndo(ctx *fasthttp.RequestCtx, sess *session.Session) {
	s.handleHistory(ctx, sess, sess.Undo)
}

func (s *Server) handleRedo(ctx *fasthttp.RequestCtx, sess *session.Session) {
	s.handleHistory(ctx, sess, sess.Redo)
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx, sess *session.Session, op func() (decouple.Result, error)) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if _, err := op(); err != nil {
		writeSessionError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, viewOf(sess))
}

func (s *Server) handleExport(ctx *fasthttp.RequestCtx, sess *session.Session) {
	if !ctx.IsGet() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	format := report.JSON
	if arg := ctx.QueryArgs().Peek("format"); len(arg) > 0 {
		var err error
		if format, err = report.ParseFormat(string(arg)); err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
	}
	r, err := sess.Result()
	if err != nil {
		writeSessionError(ctx, err)
		return
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format, report.Export(r, sess.Names, s.now())); err != nil {
		s.logger.Error("Export failed", "session", sess.ID, "format", format.String(), "error", err)
		writeError(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType(format.ContentType())
	ctx.SetBody(buf.Bytes())
}

// SessionInfo describes a session without its result.
type SessionInfo struct {
	ID      string    `json:"id"`
	AName   string    `json:"a_name"`
	BName   string    `json:"b_name"`
	Created time.Time `json:"created"`
}

// SessionView is the state of a session.
type SessionView struct {
	SessionInfo
	Generation uint64            `json:"generation"`
	Running    bool              `json:"running"`
	Stage      string            `json:"stage"`
	Fraction   float64           `json:"fraction"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	CanUndo    bool              `json:"can_undo"`
	CanRedo    bool              `json:"can_redo"`
	Overrides  session.Overrides `json:"overrides"`
	Stats      *decouple.Stats   `json:"stats,omitempty"`
	Result     *decouple.Result  `json:"result,omitempty"`
}

func infoOf(sess *session.Session) SessionInfo {
	return SessionInfo{ID: sess.ID, AName: sess.Names.A, BName: sess.Names.B, Created: sess.Created.UTC()}
}

func viewOf(sess *session.Session) SessionView {
	snap := sess.Snapshot()
	v := SessionView{
		SessionInfo: infoOf(sess),
		Generation:  snap.Generation,
		Running:     snap.Running,
		Stage:       snap.Progress.Stage.String(),
		Fraction:    snap.Progress.Fraction,
		Message:     snap.Progress.Message,
		CanUndo:     snap.CanUndo,
		CanRedo:     snap.CanRedo,
		Overrides:   snap.Overrides,
	}
	if v.Overrides == nil {
		v.Overrides = session.Overrides{}
	}
	if snap.Err != nil {
		v.Error = snap.Err.Error()
	}
	if snap.HasResult {
		stats := snap.Result.Stats()
		v.Stats, v.Result = &stats, &snap.Result
	}
	return v
}

func writeSessionError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownMatch):
		writeError(ctx, fasthttp.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNoResult):
		writeError(ctx, fasthttp.StatusConflict, err.Error())
	case errors.Is(err, decouple.ErrInvalidInput), errors.Is(err, decouple.ErrInvalidThreshold):
		writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
	default:
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// ErrorResponse is the body of all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	body, err := json.Marshal(ErrorResponse{Error: msg})
	if err != nil {
		body = []byte(`{"error":"Internal server error"}`)
		status = fasthttp.StatusInternalServerError
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
