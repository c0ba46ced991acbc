// Package preset loads scenes described in TOML and applies them to an
// engine.
//
//	name = "unit circle"
//
//	[[objects]]
//	kind = "circle"
//	layer = 1
//	params = { radius = 1 }
//	style = { stroke = "#33cc33", fill = "#33cc3340" }
//
//	[[objects.animate]]
//	target = "reveal"
//	duration = 1.5
//	from = 0
//	to = 1
package preset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/inamate/rim/internal/animation"
	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

//go:embed default.toml
var defaultScene []byte

var ErrInvalidPreset = errors.New("invalid preset")

// Preset is a scene description.
type Preset struct {
	Name    string   `toml:"name"`
	Paused  bool     `toml:"paused"`
	Objects []Object `toml:"objects"`
}

// Object describes one object of a preset. Params and Style are decoded over
// the kind's and the default style's values.
type Object struct {
	Kind    object.KindType `toml:"kind"`
	Layer   int             `toml:"layer"`
	Hidden  bool            `toml:"hidden"`
	Params  map[string]any  `toml:"params"`
	Style   map[string]any  `toml:"style"`
	Animate []Animation     `toml:"animate"`
}

// Animation is a track started when the preset is applied. From and To are a
// number for scalar targets or a two-element array for position.
type Animation struct {
	Target   animation.Target `toml:"target"`
	Duration float64          `toml:"duration"`
	Easing   animation.Easing `toml:"easing"`
	Loop     bool             `toml:"loop"`
	From     any              `toml:"from"`
	To       any              `toml:"to"`
}

// Scene is a decoded preset ready to apply.
type Scene struct {
	Name    string
	Paused  bool
	Objects []SceneObject
}

type SceneObject struct {
	Kind   object.Kind
	Style  object.Style
	Layer  int
	Hidden bool
	Tracks []animation.TrackSpec
}

// Parse decodes a TOML preset.
func Parse(data []byte) (*Scene, error) {
	var p Preset
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}

	sc := &Scene{Name: p.Name, Paused: p.Paused}
	for i, o := range p.Objects {
		so, err := o.decode()
		if err != nil {
			return nil, fmt.Errorf("%w: objects[%d]: %w", ErrInvalidPreset, i, err)
		}
		sc.Objects = append(sc.Objects, so)
	}
	return sc, nil
}

// Load reads and parses a preset file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in scene.
func Default() *Scene {
	sc, err := Parse(defaultScene)
	if err != nil {
		panic(fmt.Sprintf("built-in preset: %v", err))
	}
	return sc
}

func (o Object) decode() (SceneObject, error) {
	kind, err := object.DecodeKindFunc(o.Kind, func(v any) error { return retable(o.Params, v) })
	if err != nil {
		return SceneObject{}, err
	}
	style := object.DefaultStyle()
	if err := retable(o.Style, &style); err != nil {
		return SceneObject{}, fmt.Errorf("style: %w", err)
	}

	so := SceneObject{Kind: kind, Style: style, Layer: o.Layer, Hidden: o.Hidden}
	for j, a := range o.Animate {
		spec, err := a.spec()
		if err != nil {
			return SceneObject{}, fmt.Errorf("animate[%d]: %w", j, err)
		}
		so.Tracks = append(so.Tracks, spec)
	}
	return so, nil
}

// retable decodes a generic TOML table into v, leaving fields the table does
// not mention untouched.
func retable(table map[string]any, v any) error {
	if len(table) == 0 {
		return nil
	}
	data, err := toml.Marshal(table)
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, v)
}

func (a Animation) spec() (animation.TrackSpec, error) {
	spec := animation.TrackSpec{
		Target:   a.Target,
		Duration: a.Duration,
		Easing:   a.Easing,
		Loop:     a.Loop,
	}
	if a.Target == "" {
		return spec, errors.New("missing target")
	}
	to, err := value(a.To)
	if err != nil {
		return spec, fmt.Errorf("to: %w", err)
	}
	spec.To = to
	if a.From != nil {
		from, err := value(a.From)
		if err != nil {
			return spec, fmt.Errorf("from: %w", err)
		}
		spec.From = &from
	}
	return spec, nil
}

func value(v any) (animation.Value, error) {
	switch x := v.(type) {
	case int64:
		return animation.Scalar(float64(x)), nil
	case float64:
		return animation.Scalar(x), nil
	case []any:
		if len(x) != 2 {
			return animation.Value{}, fmt.Errorf("want 2 components, got %d", len(x))
		}
		var c [2]float64
		for i, e := range x {
			f, err := value(e)
			if err != nil {
				return animation.Value{}, err
			}
			c[i] = f.X
		}
		return animation.Value(geom.V(c[0], c[1])), nil
	case nil:
		return animation.Value{}, errors.New("missing value")
	}
	return animation.Value{}, fmt.Errorf("unsupported value %v", v)
}

// Apply replaces the engine's scene with sc and returns the IDs of the
// created objects in preset order.
func (sc *Scene) Apply(e *engine.Engine) []object.ID {
	e.Clear()
	e.SetPlaying(!sc.Paused)
	ids := make([]object.ID, 0, len(sc.Objects))
	for _, o := range sc.Objects {
		id := e.CreateObject(o.Kind, o.Style, o.Layer)
		if o.Hidden {
			e.SetVisible(id, false)
		}
		for _, spec := range o.Tracks {
			e.PlayAnimation(id, spec)
		}
		ids = append(ids, id)
	}
	return ids
}
