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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/baditaflorin/l"
	"github.com/draphael123/docdecoupler"
	"github.com/draphael123/docdecoupler/report"
	"github.com/draphael123/docdecoupler/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerConfig(t, Config{})
}

func newTestServerConfig(t *testing.T, cfg Config) *Server {
	t.Helper()
	logger, err := l.NewStandardFactory().CreateLogger(l.Config{Output: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	s := New(cfg, session.NewStore(0), logger)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func do(s *Server, method, uri string, body any) (int, []byte) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		ctx.Request.SetBody(b)
	}
	s.Handler(&ctx)
	return ctx.Response.StatusCode(), bytes.Clone(ctx.Response.Body())
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body: %s", body)
	return v
}

var compareRequest = CompareRequest{
	AName: "a.txt",
	BName: "b.txt",
	A:     "The quick fox\nHello world\nOnly in A\n",
	B:     "Hello world\nThe quick fox\nOnly in B!\n",
	Wait:  true,
}

func compare(t *testing.T, s *Server) SessionView {
	t.Helper()
	status, body := do(s, "POST", "/compare", compareRequest)
	require.Equal(t, fasthttp.StatusCreated, status, "body: %s", body)
	return decode[SessionView](t, body)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := do(s, "GET", "/health", nil)
	assert.Equal(t, fasthttp.StatusOK, status)
	got := decode[map[string]any](t, body)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["time"])
}

func TestCompare(t *testing.T) {
	s := newTestServer(t)
	v := compare(t, s)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "a.txt", v.AName)
	assert.False(t, v.Running)
	assert.Equal(t, "done", v.Stage)
	assert.Equal(t, 1.0, v.Fraction)
	require.NotNil(t, v.Result)
	require.NotNil(t, v.Stats)
	assert.Equal(t, decouple.Stats{Matches: 2, Exact: 2, Shared: 4, UniqueA: 1, UniqueB: 1}, *v.Stats)
	assert.Len(t, v.Result.Matches, 2)
	assert.Equal(t, "A-p1-l0", v.Result.Matches[0].A.ID)
	assert.Equal(t, "B-p1-l1", v.Result.Matches[0].B.ID)
	assert.Empty(t, v.Overrides)

	status, body := do(s, "GET", "/sessions/"+v.ID, nil)
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, v.ID, decode[SessionView](t, body).ID)

	status, body = do(s, "GET", "/sessions", nil)
	require.Equal(t, fasthttp.StatusOK, status)
	list := decode[[]SessionInfo](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, v.ID, list[0].ID)
}

func TestCompareThreshold(t *testing.T) {
	req := CompareRequest{A: "apples pears\n", B: "oranges plums\n", Wait: true}
	zero, half := 0.0, 0.5
	tests := []struct {
		name      string
		threshold *float64
		want      int
	}{
		{name: "default", threshold: nil, want: 0},
		{name: "zero", threshold: &zero, want: 1},
		{name: "half", threshold: &half, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServerConfig(t, Config{Threshold: tt.threshold})
			status, body := do(s, "POST", "/compare", req)
			require.Equal(t, fasthttp.StatusCreated, status, "body: %s", body)
			v := decode[SessionView](t, body)
			require.NotNil(t, v.Stats)
			assert.Equal(t, tt.want, v.Stats.Fuzzy)
		})
	}
}

func TestCompareAsync(t *testing.T) {
	s := newTestServer(t)
	req := compareRequest
	req.Wait = false
	status, body := do(s, "POST", "/compare", req)
	require.Equal(t, fasthttp.StatusAccepted, status)
	v := decode[SessionView](t, body)

	sess, ok := s.store.Get(v.ID)
	require.True(t, ok)
	_, err := sess.Wait(context.Background())
	require.NoError(t, err)

	status, body = do(s, "GET", "/sessions/"+v.ID, nil)
	require.Equal(t, fasthttp.StatusOK, status)
	assert.NotNil(t, decode[SessionView](t, body).Result)
}

func TestCompareErrors(t *testing.T) {
	s := newTestServer(t)
	threshold := 1.5
	tests := []struct {
		name   string
		method string
		body   any
		want   int
	}{
		{name: "get", method: "GET", want: fasthttp.StatusMethodNotAllowed},
		{name: "invalid-json", method: "POST", body: json.RawMessage(`"nope"`), want: fasthttp.StatusBadRequest},
		{name: "invalid-threshold", method: "POST", body: CompareRequest{Threshold: &threshold}, want: fasthttp.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(s, tt.method, "/compare", tt.body)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, decode[ErrorResponse](t, body).Error)
		})
	}
	assert.Equal(t, 0, s.store.Len())
}

func TestOverrides(t *testing.T) {
	s := newTestServer(t)
	v := compare(t, s)
	matchID := v.Result.Matches[0].ID
	base := "/sessions/" + v.ID

	status, body := do(s, "POST", base+"/overrides", map[string]string{"match_id": matchID, "decision": "unique"})
	require.Equal(t, fasthttp.StatusOK, status, "body: %s", body)
	v = decode[SessionView](t, body)
	assert.Equal(t, session.Overrides{matchID: decouple.Unique}, v.Overrides)
	assert.Equal(t, 2, v.Stats.Shared)
	assert.Equal(t, 1, v.Stats.Overridden)
	assert.True(t, v.CanUndo)

	status, body = do(s, "POST", base+"/undo", nil)
	require.Equal(t, fasthttp.StatusOK, status)
	v = decode[SessionView](t, body)
	assert.Equal(t, 4, v.Stats.Shared)
	assert.True(t, v.CanRedo)

	status, body = do(s, "POST", base+"/redo", nil)
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, 2, decode[SessionView](t, body).Stats.Shared)

	// Setting the same decision again clears it.
	status, body = do(s, "POST", base+"/overrides", map[string]string{"match_id": matchID, "decision": "unique"})
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Empty(t, decode[SessionView](t, body).Overrides)

	status, _ = do(s, "POST", base+"/overrides", map[string]string{"match_id": "match-nope", "decision": "unique"})
	assert.Equal(t, fasthttp.StatusNotFound, status)

	status, _ = do(s, "POST", base+"/overrides", map[string]string{"match_id": matchID, "decision": "maybe"})
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _ = do(s, "GET", base+"/undo", nil)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, status)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	v := compare(t, s)
	base := "/sessions/" + v.ID + "/export"

	tests := []struct {
		query       string
		contentType string
		contains    string
	}{
		{"", "application/json", `"docAName": "a.txt"`},
		{"?format=json", "application/json", `"canonicalShared"`},
		{"?format=yaml", "application/yaml", "docBName: b.txt"},
		{"?format=csv", "text/csv; charset=utf-8", "Match ID,Type,Confidence"},
		{"?format=markdown", "text/markdown; charset=utf-8", "# Document Comparison Report"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var ctx fasthttp.RequestCtx
			ctx.Request.Header.SetMethod("GET")
			ctx.Request.SetRequestURI(base + tt.query)
			s.Handler(&ctx)
			require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
			assert.Equal(t, tt.contentType, string(ctx.Response.Header.ContentType()))
			assert.Contains(t, string(ctx.Response.Body()), tt.contains)
		})
	}

	status, _ := do(s, "GET", base+"?format=docx", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestSessionErrors(t *testing.T) {
	s := newTestServer(t)
	v := compare(t, s)

	tests := []struct {
		method, uri string
		want        int
	}{
		{"GET", "/sessions/nope", fasthttp.StatusNotFound},
		{"POST", "/sessions/nope/undo", fasthttp.StatusNotFound},
		{"GET", "/sessions/" + v.ID + "/nope", fasthttp.StatusNotFound},
		{"GET", "/nope", fasthttp.StatusNotFound},
		{"PUT", "/sessions/" + v.ID, fasthttp.StatusMethodNotAllowed},
		{"POST", "/sessions/" + v.ID + "/export", fasthttp.StatusMethodNotAllowed},
		{"POST", "/sessions", fasthttp.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		status, _ := do(s, tt.method, tt.uri, nil)
		assert.Equal(t, tt.want, status, "%s %s", tt.method, tt.uri)
	}

	status, _ := do(s, "DELETE", "/sessions/"+v.ID, nil)
	assert.Equal(t, fasthttp.StatusNoContent, status)
	status, _ = do(s, "GET", "/sessions/"+v.ID, nil)
	assert.Equal(t, fasthttp.StatusNotFound, status)
}

func TestPendingSession(t *testing.T) {
	s := newTestServer(t)
	sess := s.store.Create(report.Names{A: "a.txt", B: "b.txt"})

	status, body := do(s, "GET", "/sessions/"+sess.ID+"/export", nil)
	assert.Equal(t, fasthttp.StatusConflict, status, "body: %s", body)
	status, _ = do(s, "POST", "/sessions/"+sess.ID+"/undo", nil)
	assert.Equal(t, fasthttp.StatusConflict, status)

	status, body = do(s, "GET", "/sessions/"+sess.ID, nil)
	require.Equal(t, fasthttp.StatusOK, status)
	v := decode[SessionView](t, body)
	assert.Nil(t, v.Result)
	assert.Equal(t, "idle", v.Stage)
}

func TestServe(t *testing.T) {
	s := newTestServer(t)
	ln := fasthttputil.NewInmemoryListener()
	go s.Serve(ln) //nolint:errcheck
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx) //nolint:errcheck
	})

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
	}
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	body, err := json.Marshal(compareRequest)
	require.NoError(t, err)
	req.SetRequestURI("http://docdecoupler/compare")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetBody(body)
	require.NoError(t, client.Do(req, resp))
	require.Equal(t, fasthttp.StatusCreated, resp.StatusCode())
	v := decode[SessionView](t, resp.Body())

	req.Reset()
	resp.Reset()
	req.SetRequestURI("http://docdecoupler/sessions/" + v.ID + "/export?format=csv")
	require.NoError(t, client.Do(req, resp))
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.True(t, strings.HasPrefix(string(resp.Body()), "Match ID,"))
}
