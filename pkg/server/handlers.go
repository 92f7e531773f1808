package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/render"
	"github.com/matzehuels/hsticky/pkg/render/sink"
)

const (
	maxBodyBytes = 1 << 16
	maxTicks     = 10_000
)

type elementResponse struct {
	Kind    string     `json:"kind"`
	Section int        `json:"section"`
	Item    int        `json:"item"`
	Label   string     `json:"label,omitempty"`
	Frame   geom.Rect  `json:"frame"`
	Target  *geom.Rect `json:"target,omitempty"`
}

type headerResponse struct {
	Section int       `json:"section"`
	Label   string    `json:"label,omitempty"`
	Frame   geom.Rect `json:"frame"`
	Left    float64   `json:"left"`
	Right   float64   `json:"right"`
	Pinned  bool      `json:"pinned"`
	Popped  bool      `json:"popped"`
}

type focusRequest struct {
	Section int     `json:"section"`
	Item    int     `json:"item"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleExtent(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	extent := s.eng.ContentExtent()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, extent)
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rect, err := rectQuery(r, s.eng.Bounds())
	if err != nil {
		writeError(w, err)
		return
	}
	els := s.eng.ElementsInRect(rect)
	out := make([]elementResponse, 0, len(els))
	for _, el := range els {
		out = append(out, s.element(el.Key, el.Frame, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	key, err := keyParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	frame, ok := s.eng.PositionOf(key)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "%s is not attached", key))
		return
	}
	target, _ := s.eng.TargetOf(key)
	writeJSON(w, http.StatusOK, s.element(key, frame, &target))
}

func (s *Server) handleHeaders(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := s.eng.HeaderTargets()
	out := make([]headerResponse, 0, len(targets))
	for _, t := range targets {
		out = append(out, headerResponse{
			Section: t.Section,
			Label:   s.labeler(attach.HeaderKey(t.Section)),
			Frame:   t.Frame,
			Left:    t.Left,
			Right:   t.Right,
			Pinned:  t.Pinned(),
			Popped:  t.Popped,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := render.Capture(s.eng, render.WithName(s.name), render.WithLabeler(s.labeler))
	s.mu.Unlock()

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		data, err := sink.RenderJSON(snap, sink.WithJSONTargets())
		if err != nil {
			writeError(w, err)
			return
		}
		writeBytes(w, "application/json", data)
	case "svg":
		writeBytes(w, "image/svg+xml", sink.RenderSVG(snap, sink.WithTargets()))
	case "png":
		data, err := sink.RenderPNG(snap, sink.WithPNGTargets())
		if err != nil {
			writeError(w, err)
			return
		}
		writeBytes(w, "image/png", data)
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format))
	}
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var rect geom.Rect
	if err := decodeBody(w, r, &rect); err != nil {
		writeError(w, err)
		return
	}
	if !geom.IsFinite(rect.X, rect.Y, rect.Width, rect.Height) || rect.Width < 0 || rect.Height < 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "viewport must be finite with non-negative size"))
		return
	}

	s.mu.Lock()
	relayout := s.eng.ViewportChanged(rect)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"relayout": relayout})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	n := 1
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxTicks {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "n must be between 1 and %d", maxTicks))
			return
		}
		n = parsed
	}

	s.mu.Lock()
	moving := false
	ticked := 0
	for ticked < n {
		ticked++
		if moving = s.eng.Tick(); !moving {
			break
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"frames": ticked, "moving": moving})
}

func (s *Server) handleSettle(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.eng.Settle()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	path := layout.Path(req.Section, req.Item)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.eng.StaticFrame(path); !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no item at %s", path))
		return
	}
	s.eng.Focus(path, req.Scale)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearFocus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.eng.ClearFocus()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) element(key attach.ElementKey, frame geom.Rect, target *geom.Rect) elementResponse {
	return elementResponse{
		Kind:    key.Kind.String(),
		Section: key.Path.Section,
		Item:    key.Path.Item,
		Label:   s.labeler(key),
		Frame:   frame,
		Target:  target,
	}
}

// rectQuery reads x, y, w and h from the query string. Missing values are
// taken from def.
func rectQuery(r *http.Request, def geom.Rect) (geom.Rect, error) {
	q := r.URL.Query()
	out := def
	for name, dst := range map[string]*float64{"x": &out.X, "y": &out.Y, "w": &out.Width, "h": &out.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !geom.IsFinite(f) {
			return geom.Rect{}, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: invalid number %q", name, v)
		}
		*dst = f
	}
	return out, nil
}

func keyParams(r *http.Request) (attach.ElementKey, error) {
	kind, ok := attach.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		return attach.ElementKey{}, errors.New(errors.ErrCodeInvalidInput, "kind must be cell or header")
	}
	section, err := strconv.Atoi(chi.URLParam(r, "section"))
	if err != nil {
		return attach.ElementKey{}, errors.New(errors.ErrCodeInvalidInput, "section must be an integer")
	}
	item, err := strconv.Atoi(chi.URLParam(r, "item"))
	if err != nil {
		return attach.ElementKey{}, errors.New(errors.ErrCodeInvalidInput, "item must be an integer")
	}
	if kind == attach.KindHeader {
		return attach.HeaderKey(section), nil
	}
	return attach.CellKey(layout.Path(section, item)), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error:   string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
