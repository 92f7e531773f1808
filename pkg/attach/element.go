package attach

import (
	"cmp"
	"fmt"

	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
)

// Kind distinguishes cells from section headers.
type Kind int

const (
	KindCell Kind = iota
	KindHeader
)

// String returns "cell" or "header".
func (k Kind) String() string {
	if k == KindHeader {
		return "header"
	}
	return "cell"
}

// ParseKind converts "cell" or "header" to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "cell":
		return KindCell, true
	case "header":
		return KindHeader, true
	}
	return KindCell, false
}

// ElementKey identifies an element. Headers use item 0 of their section.
type ElementKey struct {
	Kind Kind
	Path layout.IndexPath
}

// CellKey returns the key of the cell at path.
func CellKey(path layout.IndexPath) ElementKey {
	return ElementKey{Kind: KindCell, Path: path}
}

// HeaderKey returns the key of a section's header.
func HeaderKey(section int) ElementKey {
	return ElementKey{Kind: KindHeader, Path: layout.Path(section, 0)}
}

// String returns e.g. "cell 0.2" or "header 1".
func (k ElementKey) String() string {
	if k.Kind == KindHeader {
		return fmt.Sprintf("header %d", k.Path.Section)
	}
	return fmt.Sprintf("cell %s", k.Path)
}

// Compare orders cells before headers, then by path.
func (k ElementKey) Compare(o ElementKey) int {
	if c := cmp.Compare(k.Kind, o.Kind); c != 0 {
		return c
	}
	return k.Path.Compare(o.Path)
}

// Element is an element key with its live frame.
type Element struct {
	Key   ElementKey
	Frame geom.Rect
}
