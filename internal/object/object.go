// Package object owns the live mathematical objects of a scene: their
// identity, kind parameters, style, paint order and change tracking.
package object

import (
	"encoding/json"

	"github.com/inamate/rim/internal/geom"
)

// ID identifies an object for the lifetime of the process. IDs are never
// reused, so a stale ID can only ever refer to nothing.
type ID uint64

// Placement is the object's animatable local transform. Its world-space
// geometry is mapped by Translate(Position) * Scale(Scale), and only the
// first Reveal fraction of each path is drawn.
type Placement struct {
	Position geom.Vec2 `json:"position"`
	Scale    float64   `json:"scale"`
	Reveal   float64   `json:"reveal"`
}

// DefaultPlacement is the identity placement with the full path revealed.
func DefaultPlacement() Placement {
	return Placement{Scale: 1, Reveal: 1}
}

// Matrix returns the local transform of p.
func (p Placement) Matrix() geom.Matrix2D {
	return geom.Placement(p.Position, p.Scale)
}

// Object is a snapshot of a registry entry. The registry owns the entry;
// callers receive copies.
type Object struct {
	ID        ID
	Tag       string
	Visible   bool
	Layer     int
	Kind      Kind
	Style     Style
	Placement Placement
}

type objectJSON struct {
	ID        ID              `json:"id"`
	Tag       string          `json:"tag"`
	Visible   bool            `json:"visible"`
	Layer     int             `json:"layer"`
	Kind      KindType        `json:"kind"`
	Params    json.RawMessage `json:"params"`
	Style     Style           `json:"style"`
	Placement Placement       `json:"placement"`
}

func (o Object) MarshalJSON() ([]byte, error) {
	params, err := json.Marshal(o.Kind)
	if err != nil {
		return nil, err
	}
	var kt KindType
	if o.Kind != nil {
		kt = o.Kind.Type()
	}
	return json.Marshal(objectJSON{
		ID:        o.ID,
		Tag:       o.Tag,
		Visible:   o.Visible,
		Layer:     o.Layer,
		Kind:      kt,
		Params:    params,
		Style:     o.Style,
		Placement: o.Placement,
	})
}
