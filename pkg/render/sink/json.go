package sink

import (
	"encoding/json"

	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	targets bool
	compact bool
}

// WithJSONTargets includes each element's target frame.
func WithJSONTargets() JSONOption { return func(r *jsonRenderer) { r.targets = true } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Name     string            `json:"name,omitempty"`
	Frame    int               `json:"frame"`
	Viewport geom.Rect         `json:"viewport"`
	Extent   geom.Size         `json:"extent"`
	Settled  bool              `json:"settled"`
	Focus    *layout.IndexPath `json:"focus,omitempty"`
	Elements []jsonElement     `json:"elements"`
}

type jsonElement struct {
	Kind    string     `json:"kind"`
	Section int        `json:"section"`
	Item    int        `json:"item"`
	Label   string     `json:"label,omitempty"`
	Frame   geom.Rect  `json:"frame"`
	Target  *geom.Rect `json:"target,omitempty"`
	Focused bool       `json:"focused,omitempty"`
}

// RenderJSON encodes the snapshot.
func RenderJSON(s render.Snapshot, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Name:     s.Name,
		Frame:    s.Frame,
		Viewport: s.Viewport,
		Extent:   s.Extent,
		Settled:  s.Settled,
		Focus:    s.Focus,
		Elements: make([]jsonElement, 0, len(s.Elements)),
	}
	for _, el := range s.Elements {
		je := jsonElement{
			Kind:    el.Key.Kind.String(),
			Section: el.Key.Path.Section,
			Item:    el.Key.Path.Item,
			Label:   el.Label,
			Frame:   el.Frame,
			Focused: s.IsFocused(el),
		}
		if r.targets {
			target := el.Target
			je.Target = &target
		}
		out.Elements = append(out.Elements, je)
	}

	var (
		data []byte
		err  error
	)
	if r.compact {
		data, err = json.Marshal(out)
	} else {
		data, err = json.MarshalIndent(out, "", "  ")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode snapshot")
	}
	return data, nil
}
