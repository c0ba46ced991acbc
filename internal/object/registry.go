package object

import (
	"slices"
	"sort"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/typeid"
)

// Registry is the single owner of a scene's objects. Entries live in an
// arena indexed by ID-1; removed slots stay nil so IDs are never handed out
// twice.
//
// Every call that actually changes an entry marks it changed. The frame loop
// reads Changed to decide what to regenerate and then calls ClearChanged.
// Calls naming an unknown or removed ID do nothing and report false.
//
// Registry is not safe for concurrent use.
type Registry struct {
	slots   []*Object
	live    int
	changed map[ID]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{changed: make(map[ID]struct{})}
}

// Create adds a visible object on layer 0 and returns its ID.
func (r *Registry) Create(kind Kind, style Style) ID {
	id := ID(len(r.slots) + 1)
	r.slots = append(r.slots, &Object{
		ID:        id,
		Tag:       typeid.New(kind.tagPrefix()),
		Visible:   true,
		Kind:      kind,
		Style:     style,
		Placement: DefaultPlacement(),
	})
	r.live++
	r.markChanged(id)
	return id
}

func (r *Registry) get(id ID) *Object {
	if id == 0 || int(id) > len(r.slots) {
		return nil
	}
	return r.slots[id-1]
}

func (r *Registry) markChanged(id ID) {
	r.changed[id] = struct{}{}
}

// Get returns a copy of the object with the given ID.
func (r *Registry) Get(id ID) (Object, bool) {
	o := r.get(id)
	if o == nil {
		return Object{}, false
	}
	return *o, true
}

// Len returns the number of live objects.
func (r *Registry) Len() int { return r.live }

// Remove deletes an object. Removing an absent object is a no-op.
func (r *Registry) Remove(id ID) bool {
	if r.get(id) == nil {
		return false
	}
	r.slots[id-1] = nil
	r.live--
	r.markChanged(id)
	return true
}

// ClearKind removes every object of kind t and returns how many were removed.
func (r *Registry) ClearKind(t KindType) int {
	n := 0
	for _, o := range r.slots {
		if o != nil && o.Kind.Type() == t {
			r.Remove(o.ID)
			n++
		}
	}
	return n
}

// Clear removes every object.
func (r *Registry) Clear() {
	for _, o := range r.slots {
		if o != nil {
			r.Remove(o.ID)
		}
	}
}

// SetVisible shows or hides an object.
func (r *Registry) SetVisible(id ID, visible bool) bool {
	o := r.get(id)
	if o == nil {
		return false
	}
	if o.Visible != visible {
		o.Visible = visible
		r.markChanged(id)
	}
	return true
}

// SetLayer moves an object to another paint layer.
func (r *Registry) SetLayer(id ID, layer int) bool {
	o := r.get(id)
	if o == nil {
		return false
	}
	if o.Layer != layer {
		o.Layer = layer
		r.markChanged(id)
	}
	return true
}

// UpdateStyle replaces an object's style.
func (r *Registry) UpdateStyle(id ID, style Style) bool {
	o := r.get(id)
	if o == nil {
		return false
	}
	if !o.Style.Equal(style) {
		o.Style = style
		r.markChanged(id)
	}
	return true
}

// UpdateKind replaces an object's kind parameters. The new parameters must be
// of the same kind as the old ones; an object never changes kind.
func (r *Registry) UpdateKind(id ID, kind Kind) bool {
	o := r.get(id)
	if o == nil || kind == nil || o.Kind.Type() != kind.Type() {
		return false
	}
	if o.Kind != kind {
		o.Kind = kind
		r.markChanged(id)
	}
	return true
}

// Placement returns an object's current placement.
func (r *Registry) Placement(id ID) (Placement, bool) {
	o := r.get(id)
	if o == nil {
		return Placement{}, false
	}
	return o.Placement, true
}

// SetPosition sets the placement translation.
func (r *Registry) SetPosition(id ID, p geom.Vec2) bool {
	o := r.get(id)
	if o == nil || !p.IsFinite() {
		return false
	}
	if o.Placement.Position != p {
		o.Placement.Position = p
		r.markChanged(id)
	}
	return true
}

// SetScale sets the placement scale factor.
func (r *Registry) SetScale(id ID, s float64) bool {
	return r.setScalar(id, s, func(o *Object) *float64 { return &o.Placement.Scale })
}

// SetReveal sets the drawn fraction of the object's paths. Values outside
// [0, 1] are stored as given; geometry generation clamps them.
func (r *Registry) SetReveal(id ID, f float64) bool {
	return r.setScalar(id, f, func(o *Object) *float64 { return &o.Placement.Reveal })
}

// SetOpacity sets the style opacity. Values outside [0, 1] are stored as
// given so eased overshoot survives; geometry generation clamps them.
func (r *Registry) SetOpacity(id ID, a float64) bool {
	return r.setScalar(id, a, func(o *Object) *float64 { return &o.Style.Opacity })
}

func (r *Registry) setScalar(id ID, v float64, field func(*Object) *float64) bool {
	o := r.get(id)
	if o == nil || !geom.IsFinite(v) {
		return false
	}
	if f := field(o); *f != v {
		*f = v
		r.markChanged(id)
	}
	return true
}

// Changed returns, in ascending order, the IDs of objects created, mutated or
// removed since the last ClearChanged.
func (r *Registry) Changed() []ID {
	ids := make([]ID, 0, len(r.changed))
	for id := range r.changed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsChanged reports whether id is pending in the change set.
func (r *Registry) IsChanged(id ID) bool {
	_, ok := r.changed[id]
	return ok
}

// ClearChanged empties the change set.
func (r *Registry) ClearChanged() {
	clear(r.changed)
}

// MarkAllChanged puts every live object in the change set.
func (r *Registry) MarkAllChanged() {
	for _, o := range r.slots {
		if o != nil {
			r.markChanged(o.ID)
		}
	}
}

// Ordered returns the live objects in paint order: ascending layer, ties
// broken by creation order.
func (r *Registry) Ordered() []Object {
	out := make([]Object, 0, r.live)
	for _, o := range r.slots {
		if o != nil {
			out = append(out, *o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Layer < out[j].Layer
	})
	return out
}
