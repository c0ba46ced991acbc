package engine

import (
	"encoding/json"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/geometry"
	"github.com/inamate/rim/internal/object"
)

// Batch is the renderable output of one frame. Items are in paint order:
// ascending layer, then creation order. A batch shares vertex slices with the
// engine's cache and must be treated as read-only.
type Batch struct {
	Frame   uint64           `json:"frame"`
	View    ViewState        `json:"view"`
	Items   []Item           `json:"items"`
	Labels  []geometry.Label `json:"labels,omitempty"`
	Created []object.ID      `json:"created,omitempty"` // objects created by this frame's commands
	Stats   Stats            `json:"stats"`
}

// Item is one primitive of one object.
type Item struct {
	Layer    int                    `json:"layer"`
	ObjectID object.ID              `json:"objectId"`
	Kind     geometry.PrimitiveKind `json:"kind"`
	Points   []geom.Vec2            `json:"points"`
	Stroke   geometry.Stroke        `json:"stroke"`
	Fill     *geometry.Fill         `json:"fill,omitempty"`
}

// ViewState describes the viewport a batch was generated for.
type ViewState struct {
	Scale    float64   `json:"scale"`
	Pan      geom.Vec2 `json:"pan"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Revision uint64    `json:"revision"`
}

// Stats counts the work done for a frame.
type Stats struct {
	Objects     int  `json:"objects"`
	Drawn       int  `json:"drawn"`
	Regenerated int  `json:"regenerated"`
	Vertices    int  `json:"vertices"`
	Tracks      int  `json:"tracks"`
	ViewChanged bool `json:"viewChanged"`
}

// JSON serializes the batch for the renderer.
func (b *Batch) JSON() ([]byte, error) {
	return json.Marshal(b)
}
