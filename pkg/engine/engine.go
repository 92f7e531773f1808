// Package engine is the surface the rendering system talks to.
//
// An [Engine] owns the static layout cache, the header calculator and the
// attachment manager of one collection view. The rendering system drives it
// with two calls:
//
//   - [Engine.Prepare] on every data or size invalidation: rebuilds the static
//     cache and reconciles attachments.
//   - [Engine.ViewportChanged] on every scroll: recomputes sticky headers in
//     place and never asks for a full pass.
//
// Between frames it calls [Engine.Tick] to advance the springs and queries
// [Engine.ElementsInRect] / [Engine.PositionOf] for what to draw.
//
// Engines are single-threaded. All methods must be called from the same
// goroutine, or be serialised by the caller.
package engine

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/header"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/observability"
)

// Engine lays out and animates one horizontally scrolling collection.
type Engine struct {
	id     string
	cfg    Config
	logger *log.Logger

	source   layout.DataSource
	delegate layout.Delegate

	calc    *header.Calculator
	manager *attach.Manager
	cache   *layout.Cache
	bounds  geom.Rect
	focus   *focus
}

type focus struct {
	path  layout.IndexPath
	scale float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithDataSource attaches the data source.
func WithDataSource(ds layout.DataSource) Option { return func(e *Engine) { e.source = ds } }

// WithDelegate attaches the geometry delegate.
func WithDelegate(d layout.Delegate) Option { return func(e *Engine) { e.delegate = d } }

// WithLogger sets the logger used for pass and viewport diagnostics.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithPopPolicy replaces the pop-out policy. It takes precedence over
// Config.PopOut.
func WithPopPolicy(p header.PopPolicy) Option { return func(e *Engine) { e.calc.Pop = p } }

// New creates an engine. Collaborators may be supplied now or later; they
// must be present by the first Prepare.
func New(cfg Config, opts ...Option) *Engine {
	cfg.SetDefaults()
	e := &Engine{
		id:     uuid.NewString(),
		cfg:    cfg,
		logger: log.Default(),
		calc: &header.Calculator{
			ContentInset: cfg.ContentInset,
			PopOffset:    cfg.PopOffset,
		},
	}
	if cfg.PopOut {
		e.calc.Pop = header.FocusPop{Focus: e}
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	e.manager = attach.NewManager(e.calc, attach.Options{
		Visibility: cfg.Visibility,
		Spring:     cfg.Spring,
		Reflow:     cfg.Reflow,
	})
	e.logger = e.logger.With("engine", e.id[:8])
	return e
}

// ID returns the engine's unique identifier.
func (e *Engine) ID() string { return e.id }

// Config returns the configuration with defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// SetDataSource replaces the data source used by the next pass.
func (e *Engine) SetDataSource(ds layout.DataSource) { e.source = ds }

// SetDelegate replaces the delegate used by the next pass.
func (e *Engine) SetDelegate(d layout.Delegate) { e.delegate = d }

// Prepare runs a full layout pass for the visible rectangle bounds.
//
// A missing data source or delegate aborts the pass with a configuration
// error; the engine keeps whatever state it had before.
func (e *Engine) Prepare(bounds geom.Rect) error {
	start := time.Now()

	cache, err := e.build()
	if err != nil {
		observability.Engine().OnLayoutPass(e.id, 0, 0, 0, time.Since(start), err)
		e.logger.Error("layout pass failed", "err", err)
		return err
	}

	e.calc.Delegate = e.delegate
	e.cache = cache
	e.bounds = bounds
	st := e.manager.OnLayoutPass(cache, bounds)

	elapsed := time.Since(start)
	observability.Engine().OnLayoutPass(e.id, cache.Len(), st.Attached, st.Detached, elapsed, nil)
	e.logger.Debug("layout pass",
		"items", cache.Len(),
		"visible", st.Visible,
		"attached", st.Attached,
		"detached", st.Detached,
		"duration", elapsed)
	return nil
}

func (e *Engine) build() (*layout.Cache, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "invalid engine config")
	}
	return layout.Build(e.source, e.delegate, e.cfg.ContentInset)
}

// Prepared reports whether a layout pass has completed.
func (e *Engine) Prepared() bool { return e.cache != nil }

// ViewportChanged absorbs a scroll or resize and reports whether a full
// layout pass is required. It never is: headers are retargeted in place.
func (e *Engine) ViewportChanged(bounds geom.Rect) bool {
	e.bounds = bounds
	if e.cache == nil {
		return false
	}
	st := e.manager.ApplyBounds(bounds)
	observability.Engine().OnViewportChange(e.id, st.Retargeted)
	if st.Retargeted > 0 || st.Attached > 0 || st.Detached > 0 {
		e.logger.Debug("viewport changed",
			"x", bounds.X,
			"retargeted", st.Retargeted,
			"attached", st.Attached,
			"detached", st.Detached)
	}
	return false
}

// Bounds returns the current visible rectangle.
func (e *Engine) Bounds() geom.Rect { return e.bounds }

// ContentExtent returns the scrollable size. Height is the viewport height
// less the vertical content insets, and zero before the first Prepare.
func (e *Engine) ContentExtent() geom.Size {
	in := e.cfg.ContentInset
	width := in.Horizontal()
	if e.cache != nil {
		width = e.cache.ContentWidth()
	}
	return geom.Size{Width: width, Height: max(0, e.bounds.Height-in.Top-in.Bottom)}
}

// ElementsInRect returns the attached elements whose live frame intersects
// rect. Before the first pass it returns nil.
func (e *Engine) ElementsInRect(rect geom.Rect) []attach.Element {
	if e.cache == nil {
		return nil
	}
	return e.manager.PositionsInRect(rect)
}

// PositionOf returns the live frame of key; ok is false when the element is
// not attached.
func (e *Engine) PositionOf(key attach.ElementKey) (geom.Rect, bool) {
	return e.manager.PositionOf(key)
}

// TargetOf returns the frame key is animating toward.
func (e *Engine) TargetOf(key attach.ElementKey) (geom.Rect, bool) {
	return e.manager.Anchor(key)
}

// StaticFrame returns the scroll-independent frame of a cell.
func (e *Engine) StaticFrame(path layout.IndexPath) (geom.Rect, bool) {
	if e.cache == nil {
		return geom.Rect{}, false
	}
	return e.cache.Frame(path)
}

// StaticLayout returns the cache of the last pass, or nil.
func (e *Engine) StaticLayout() *layout.Cache { return e.cache }

// HeaderTargets computes the sticky target of every section header for the
// current bounds, whether or not the header is attached.
func (e *Engine) HeaderTargets() []header.Target {
	if e.cache == nil {
		return nil
	}
	return e.calc.Targets(e.cache, e.manager, e.bounds.X)
}

// AttachedKeys returns every attached element key, cells first.
func (e *Engine) AttachedKeys() []attach.ElementKey { return e.manager.Keys() }

// Tick advances all springs by one frame and reports whether anything is
// still moving.
func (e *Engine) Tick() bool { return e.manager.Step() }

// Settle jumps every element to its target.
func (e *Engine) Settle() { e.manager.Settle() }

// Settled reports whether every element is at rest.
func (e *Engine) Settled() bool { return e.manager.Settled() }

// Reset drops the cache and every attachment. The next Prepare starts from
// scratch, with no animation from previous positions.
func (e *Engine) Reset() {
	e.manager.Reset()
	e.cache = nil
}
