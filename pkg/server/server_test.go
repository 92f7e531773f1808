package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout/layouttest"
	"github.com/matzehuels/hsticky/pkg/observability"
)

func newTestServer(t *testing.T, cfg engine.Config, opts ...Option) (*Server, *engine.Engine) {
	t.Helper()
	col := layouttest.TwoSections()
	e := engine.New(cfg, engine.WithDataSource(col), engine.WithDelegate(col))
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return New(e, opts...), e
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("json.Unmarshal(%s) error = %v", rec.Body.String(), err)
	}
	return v
}

func TestExtent(t *testing.T) {
	s, _ := newTestServer(t, engine.Config{})
	rec := do(t, s, http.MethodGet, "/extent", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode[geom.Size](t, rec); got != (geom.Size{Width: 270, Height: 100}) {
		t.Errorf("extent = %v, want {270 100}", got)
	}
}

func TestElements(t *testing.T) {
	s, _ := newTestServer(t, engine.Config{})

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"default viewport", "/elements", 6},
		{"query rect", "/elements?x=100&w=100", 4},
		{"nothing", "/elements?x=1000", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := decode[[]elementResponse](t, rec); len(got) != tt.want {
				t.Errorf("len(elements) = %d, want %d", len(got), tt.want)
			}
		})
	}

	rec := do(t, s, http.MethodGet, "/elements?x=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error != "INVALID_INPUT" {
		t.Errorf("error = %q, want INVALID_INPUT", got.Error)
	}
}

func TestPosition(t *testing.T) {
	s, _ := newTestServer(t, engine.Config{})

	rec := do(t, s, http.MethodGet, "/positions/cell/0/2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	el := decode[elementResponse](t, rec)
	if el.Frame != geom.NewRect(120, 20, 50, 40) || el.Target == nil || *el.Target != el.Frame {
		t.Errorf("cell 0.2 = %+v", el)
	}
	if el.Label != "cell 0.2" {
		t.Errorf("Label = %q", el.Label)
	}

	rec = do(t, s, http.MethodGet, "/positions/header/1/9", "")
	if el := decode[elementResponse](t, rec); el.Kind != "header" || el.Frame.X != 170 {
		t.Errorf("header 1 = %+v", el)
	}

	for _, target := range []string{"/positions/cell/5/0", "/positions/tile/0/0", "/positions/cell/x/0"} {
		rec := do(t, s, http.MethodGet, target, "")
		want := http.StatusBadRequest
		if target == "/positions/cell/5/0" {
			want = http.StatusNotFound
		}
		if rec.Code != want {
			t.Errorf("GET %s status = %d, want %d", target, rec.Code, want)
		}
	}
}

func TestViewportAndTick(t *testing.T) {
	s, e := newTestServer(t, engine.Config{})

	rec := do(t, s, http.MethodPost, "/viewport", `{"x":100,"y":0,"width":300,"height":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[map[string]bool](t, rec); got["relayout"] {
		t.Error("relayout = true, want false")
	}

	headers := decode[[]headerResponse](t, do(t, s, http.MethodGet, "/headers", ""))
	if len(headers) != 2 || headers[0].Frame.X != 90 || headers[0].Left != 100 || headers[0].Right != 90 {
		t.Errorf("headers = %+v", headers)
	}
	if headers[0].Pinned {
		t.Error("header 0 pinned while pushed by its section's end")
	}

	rec = do(t, s, http.MethodPost, "/tick?n=10000", "")
	got := decode[map[string]any](t, rec)
	if got["moving"] != false {
		t.Errorf("tick response = %v, want settled", got)
	}
	if f, _ := e.PositionOf(attach.HeaderKey(0)); f.X != 90 {
		t.Errorf("header 0 x = %v, want 90", f.X)
	}

	for _, body := range []string{`{"x":"a"}`, `{"x":1,"colour":2}`, `{"x":1,"y":0,"width":-1,"height":1}`} {
		if rec := do(t, s, http.MethodPost, "/viewport", body); rec.Code != http.StatusBadRequest {
			t.Errorf("POST /viewport %s status = %d, want 400", body, rec.Code)
		}
	}
	if rec := do(t, s, http.MethodPost, "/tick?n=0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("POST /tick?n=0 status = %d, want 400", rec.Code)
	}
}

func TestSettle(t *testing.T) {
	s, e := newTestServer(t, engine.Config{})
	e.ViewportChanged(geom.NewRect(40, 0, 300, 100))

	if rec := do(t, s, http.MethodPost, "/settle", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !e.Settled() {
		t.Error("engine not settled")
	}
}

func TestFocus(t *testing.T) {
	s, e := newTestServer(t, engine.Config{PopOut: true})

	if rec := do(t, s, http.MethodPost, "/focus", `{"section":0,"item":0,"scale":1.2}`); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	headers := decode[[]headerResponse](t, do(t, s, http.MethodGet, "/headers", ""))
	if !headers[0].Popped || headers[0].Frame.Y != -20 {
		t.Errorf("header 0 = %+v, want popped", headers[0])
	}

	if rec := do(t, s, http.MethodPost, "/focus", `{"section":7,"item":0}`); rec.Code != http.StatusNotFound {
		t.Errorf("focus out of range status = %d, want 404", rec.Code)
	}

	if rec := do(t, s, http.MethodDelete, "/focus", ""); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE /focus status = %d", rec.Code)
	}
	if _, _, ok := e.Focused(); ok {
		t.Error("focus not cleared")
	}
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestServer(t, engine.Config{}, WithName("shelf"))

	tests := []struct {
		format string
		ctype  string
		status int
	}{
		{"", "application/json", http.StatusOK},
		{"svg", "image/svg+xml", http.StatusOK},
		{"png", "image/png", http.StatusOK},
		{"gif", "application/json", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/snapshot?format="+tt.format, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.ctype {
				t.Errorf("Content-Type = %q, want %q", got, tt.ctype)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t, engine.Config{})

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if id := rec.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Errorf("generated request id = %q", id)
	}

	const given = "0b7a2c5e-9f1d-4c3a-8e6b-1d2f3a4b5c6d"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, given)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != given {
		t.Errorf("request id = %q, want %q", got, given)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	statuses []int
}

func (r *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	r.statuses = append(r.statuses, status)
}

func TestHooksAndLogging(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	s, _ := newTestServer(t, engine.Config{}, WithLogger(logger))

	do(t, s, http.MethodGet, "/extent", "")
	do(t, s, http.MethodGet, "/positions/cell/9/9", "")

	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 404 {
		t.Errorf("statuses = %v, want [200 404]", hooks.statuses)
	}
	if !strings.Contains(buf.String(), "path=/extent") {
		t.Errorf("request not logged:\n%s", buf.String())
	}
}

func TestAnimate(t *testing.T) {
	s, e := newTestServer(t, engine.Config{Spring: engine.DefaultConfig().Spring})
	e.ViewportChanged(geom.NewRect(40, 0, 300, 100))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Animate(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		s.mu.Lock()
		settled := e.Settled()
		s.mu.Unlock()
		if settled {
			break
		}
		select {
		case <-deadline:
			cancel()
			t.Fatal("Animate() did not settle the engine")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Animate() error = %v", err)
	}
}
