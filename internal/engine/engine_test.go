package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/inamate/rim/internal/animation"
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/geometry"
	"github.com/inamate/rim/internal/object"
	"github.com/inamate/rim/internal/viewport"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	vp, err := viewport.New(viewport.DefaultOptions())
	if err != nil {
		t.Fatalf("viewport.New: %v", err)
	}
	return New(vp, DefaultOptions())
}

func itemsOf(b *Batch, id object.ID) []Item {
	var out []Item
	for _, it := range b.Items {
		if it.ObjectID == id {
			out = append(out, it)
		}
	}
	return out
}

func TestTickCreatesGeometry(t *testing.T) {
	e := newEngine(t)
	b := e.Tick(1.0/60, []Command{CreateObject{Kind: object.Circle{Radius: 1}}})

	if len(b.Created) != 1 {
		t.Fatalf("created\nhave %v\nwant one id", b.Created)
	}
	id := b.Created[0]
	items := itemsOf(b, id)
	if len(items) != 1 || items[0].Kind != geometry.Polygon {
		t.Fatalf("items\nhave %+v\nwant one polygon", items)
	}
	if b.Stats.Regenerated != 1 || b.Stats.Drawn != 1 || b.Stats.Objects != 1 {
		t.Fatalf("stats\nhave %+v", b.Stats)
	}
	if b.Frame != 0 || e.Frame() != 1 {
		t.Fatalf("frame\nhave batch %d engine %d\nwant 0 and 1", b.Frame, e.Frame())
	}
}

func TestTickRegeneratesOnlyChanged(t *testing.T) {
	e := newEngine(t)
	a := e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle(), 0)
	e.CreateObject(object.Line{End: geom.V(1, 1)}, object.DefaultStyle(), 0)
	e.Tick(0, nil)

	b := e.Tick(0, nil)
	if b.Stats.Regenerated != 0 {
		t.Fatalf("idle frame regenerated %d objects", b.Stats.Regenerated)
	}
	if b.Stats.Drawn != 2 {
		t.Fatalf("drawn\nhave %d\nwant 2", b.Stats.Drawn)
	}

	b = e.Tick(0, []Command{UpdateParams{ID: a, Kind: object.Circle{Radius: 2}}})
	if b.Stats.Regenerated != 1 {
		t.Fatalf("regenerated after one edit\nhave %d\nwant 1", b.Stats.Regenerated)
	}

	// Same value again: no change, no work.
	b = e.Tick(0, []Command{UpdateParams{ID: a, Kind: object.Circle{Radius: 2}}})
	if b.Stats.Regenerated != 0 {
		t.Fatalf("regenerated after no-op edit\nhave %d\nwant 0", b.Stats.Regenerated)
	}

	b = e.Tick(0, []Command{Zoom{Delta: 1}})
	if !b.Stats.ViewChanged || b.Stats.Regenerated != 2 {
		t.Fatalf("after zoom\nhave %+v\nwant every object regenerated", b.Stats)
	}
}

func TestZoomScenario(t *testing.T) {
	e := newEngine(t)
	id := e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle(), 0)
	before := itemsOf(e.Tick(0, nil), id)[0]

	scale := e.Viewport().Scale() * 4
	e.Viewport().ZoomTo(scale, e.Viewport().Center())
	after := itemsOf(e.Tick(0, nil), id)[0]

	c := e.Viewport().WorldToScreen(geom.Vec2{})
	for _, p := range after.Points {
		if d := p.Dist(c) - scale; d > 1e-9 || d < -1e-9 {
			t.Fatalf("screen radius off by %v", d)
		}
	}
	if len(after.Points) < len(before.Points) {
		t.Fatalf("segments\nhave %d\nwant at least %d", len(after.Points), len(before.Points))
	}
}

func TestPaintOrder(t *testing.T) {
	e := newEngine(t)
	style := object.DefaultStyle()
	circle := e.CreateObject(object.Circle{Radius: 1}, style, 0)
	axes := e.CreateObject(object.DefaultAxes(), style, -1)
	grid := e.CreateObject(object.DefaultGrid(), style, -2)
	b := e.Tick(0, nil)

	var order []object.ID
	for _, it := range b.Items {
		if len(order) == 0 || order[len(order)-1] != it.ObjectID {
			order = append(order, it.ObjectID)
		}
	}
	want := []object.ID{grid, axes, circle}
	if len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Fatalf("paint order\nhave %v\nwant %v", order, want)
	}
	if len(b.Labels) == 0 {
		t.Fatal("axes produced no labels")
	}
}

func TestRemoveAndVisibility(t *testing.T) {
	e := newEngine(t)
	id := e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle(), 0)
	e.Tick(0, nil)

	b := e.Tick(0, []Command{SetVisible{ID: id, Visible: false}})
	if len(b.Items) != 0 {
		t.Fatalf("hidden object drawn: %+v", b.Items)
	}
	b = e.Tick(0, []Command{SetVisible{ID: id, Visible: true}})
	if len(itemsOf(b, id)) != 1 {
		t.Fatal("object not drawn after showing it again")
	}

	b = e.Tick(0, []Command{RemoveObject{ID: id}, RemoveObject{ID: id}, SetVisible{ID: id, Visible: true}})
	if len(b.Items) != 0 || b.Stats.Objects != 0 {
		t.Fatalf("removed object still present: %+v", b.Stats)
	}
	if next := e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle(), 0); next == id {
		t.Fatalf("id %d reused", id)
	}
}

func TestAnimationThroughTick(t *testing.T) {
	e := newEngine(t)
	id := e.CreateObject(object.Circle{Radius: 1, Resolution: 16}, object.DefaultStyle(), 0)
	e.Tick(0, nil)

	spec := animation.TrackSpec{Target: animation.TargetPosition, Duration: 2, To: animation.Value{X: 10}}
	b := e.Tick(1, []Command{PlayAnimation{ID: id, Spec: spec}})
	obj, _ := e.Object(id)
	if obj.Placement.Position != geom.V(5, 0) {
		t.Fatalf("position after 1s\nhave %v\nwant {5 0}", obj.Placement.Position)
	}
	if b.Stats.Regenerated != 1 || b.Stats.Tracks != 1 {
		t.Fatalf("stats\nhave %+v\nwant one regeneration and one track", b.Stats)
	}
	// The same frame's geometry reflects the animated position.
	center := e.Viewport().WorldToScreen(geom.V(5, 0))
	bounds, _ := geom.Bounds(itemsOf(b, id)[0].Points)
	if c := bounds.Center(); c.Dist(center) > 1e-6 {
		t.Fatalf("circle center\nhave %v\nwant %v", c, center)
	}

	e.Tick(5, []Command{SetPlayback{Playing: false}})
	obj, _ = e.Object(id)
	if obj.Placement.Position != geom.V(5, 0) {
		t.Fatalf("paused animation advanced to %v", obj.Placement.Position)
	}

	e.Tick(5, []Command{TogglePlayback{}})
	obj, _ = e.Object(id)
	if obj.Placement.Position != geom.V(10, 0) {
		t.Fatalf("position after resume\nhave %v\nwant {10 0}", obj.Placement.Position)
	}
}

func TestRemoveStopsAnimation(t *testing.T) {
	e := newEngine(t)
	id := e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle(), 0)
	e.PlayAnimation(id, animation.TrackSpec{Target: animation.TargetScale, Duration: 1, To: animation.Scalar(2)})
	e.Tick(0, []Command{RemoveObject{ID: id}})
	if n := len(e.Animations()); n != 0 {
		t.Fatalf("tracks after remove\nhave %d\nwant 0", n)
	}

	a := e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle(), 0)
	e.PlayAnimation(a, animation.TrackSpec{Target: animation.TargetScale, Duration: 1, To: animation.Scalar(2)})
	if n := e.ClearKind(object.KindCircle); n != 1 {
		t.Fatalf("ClearKind\nhave %d\nwant 1", n)
	}
	if n := len(e.Animations()); n != 0 {
		t.Fatalf("tracks after ClearKind\nhave %d\nwant 0", n)
	}
}

func TestHitTest(t *testing.T) {
	e := newEngine(t)
	id := e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle(), 0)
	top := e.CreateObject(object.Rectangle{Width: 1, Height: 1}, object.DefaultStyle(), 1)
	e.Tick(0, nil)

	if got, ok := e.HitTest(600, 400); !ok || got != top {
		t.Fatalf("HitTest(600, 400)\nhave %d %v\nwant %d", got, ok, top)
	}
	if got, ok := e.HitTest(600, 360); !ok || got != id {
		t.Fatalf("HitTest(600, 360)\nhave %d %v\nwant %d", got, ok, id)
	}
	if _, ok := e.HitTest(10, 10); ok {
		t.Fatal("HitTest(10, 10) hit something")
	}
}

func TestPatchParams(t *testing.T) {
	e := newEngine(t)
	id := e.CreateObject(object.Circle{Center: geom.V(1, 1), Radius: 1}, object.DefaultStyle(), 0)
	cmd, err := DecodeCommand([]byte(`{"type":"object.params","id":1,"params":{"radius":3}}`))
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	e.Tick(0, []Command{cmd})
	obj, _ := e.Object(id)
	if want := (object.Circle{Center: geom.V(1, 1), Radius: 3}); obj.Kind != want {
		t.Fatalf("kind\nhave %+v\nwant %+v", obj.Kind, want)
	}

	if e.PatchParams(id, json.RawMessage(`{"radius":"big"}`)) {
		t.Fatal("malformed params applied")
	}
}

func TestDecodeCommand(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{`{"type":"object.remove","id":3}`, RemoveObject{ID: 3}},
		{`{"type":"object.visible","id":3,"visible":false}`, SetVisible{ID: 3}},
		{`{"type":"object.layer","id":3,"layer":-2}`, SetLayer{ID: 3, Layer: -2}},
		{`{"type":"object.clearKind","kind":"grid"}`, ClearKind{Kind: object.KindGrid}},
		{`{"type":"view.zoom","delta":-1}`, Zoom{Delta: -1}},
		{`{"type":"view.pan","offset":{"x":5,"y":-5}}`, Pan{Offset: geom.V(5, -5)}},
		{`{"type":"view.reset"}`, ResetView{}},
		{`{"type":"view.resize","width":800,"height":600}`, Resize{Width: 800, Height: 600}},
		{`{"type":"anim.stop","id":2}`, StopAnimation{ID: 2}},
		{`{"type":"playback.toggle"}`, TogglePlayback{}},
		{`{"type":"playback.set","playing":true}`, SetPlayback{Playing: true}},
	}
	for _, c := range cases {
		have, err := DecodeCommand([]byte(c.in))
		if err != nil {
			t.Fatalf("DecodeCommand(%s): %v", c.in, err)
		}
		if have != c.want {
			t.Fatalf("DecodeCommand(%s)\nhave %#v\nwant %#v", c.in, have, c.want)
		}
	}
}

func TestDecodeCreate(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{
		"type": "object.create",
		"kind": "circle",
		"params": {"center": {"x": 1, "y": 2}, "radius": 3},
		"style": {"stroke": "#ff0000", "fill": "#00ff0080"},
		"layer": 4
	}`))
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	c, ok := cmd.(CreateObject)
	if !ok {
		t.Fatalf("have %T, want CreateObject", cmd)
	}
	if want := (object.Circle{Center: geom.V(1, 2), Radius: 3}); c.Kind != want {
		t.Fatalf("kind\nhave %+v\nwant %+v", c.Kind, want)
	}
	if c.Layer != 4 || c.Style == nil || c.Style.Stroke != (object.Color{R: 1, A: 1}) || c.Style.Fill == nil {
		t.Fatalf("create\nhave %+v", c)
	}
	// Omitted style fields keep their defaults.
	if c.Style.StrokeWidth != 2 || c.Style.Opacity != 1 {
		t.Fatalf("style defaults lost: %+v", *c.Style)
	}

	cmd, err = DecodeCommand([]byte(`{"type":"anim.play","id":1,"track":{"target":"reveal","duration":2,"easing":"easeOut","to":1}}`))
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	play := cmd.(PlayAnimation)
	if play.Spec.Target != animation.TargetReveal || play.Spec.To != animation.Scalar(1) {
		t.Fatalf("track\nhave %+v", play.Spec)
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	cases := map[string]error{
		`{"type":"object.explode"}`:        ErrUnknownCommand,
		`{"type":"object.visible","id":1}`: ErrMissingField,
		`{"type":"object.layer","id":1}`:   ErrMissingField,
		`{"type":"anim.play","id":1}`:      ErrMissingField,
		`{"type":"playback.set"}`:          ErrMissingField,
		`{"type":"object.params","id":1}`:  ErrMissingField,
		`{"type":"object.style","id":1}`:   ErrMissingField,
	}
	for in, want := range cases {
		if _, err := DecodeCommand([]byte(in)); !errors.Is(err, want) {
			t.Fatalf("DecodeCommand(%s)\nhave %v\nwant %v", in, err, want)
		}
	}
	for _, in := range []string{
		`not json`,
		`{"type":"object.create","kind":"hexagon"}`,
		`{"type":"object.create","kind":"circle","style":{"stroke":"red"}}`,
		`{"type":"anim.play","id":1,"track":{"target":"spin"}}`,
	} {
		if _, err := DecodeCommand([]byte(in)); err == nil {
			t.Fatalf("DecodeCommand(%s) accepted invalid input", in)
		}
	}
}

func TestBatchJSON(t *testing.T) {
	e := newEngine(t)
	e.CreateObject(object.Circle{Radius: 1}, object.DefaultStyle().WithFill(object.Green), 0)
	data, err := e.Tick(0, nil).JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	for _, want := range []string{`"items"`, `"kind":"polygon"`, `"fill":{"color":"#33cc33ff"`, `"view":{"scale":50`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("batch JSON missing %s:\n%s", want, data)
		}
	}

	state, err := json.Marshal(e.State())
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !strings.Contains(string(state), `"kind":"circle"`) {
		t.Fatalf("state JSON missing object: %s", state)
	}
}

func TestDecodeCommands(t *testing.T) {
	for _, tc := range []struct {
		payload string
		want    int
		err     bool
	}{
		{`{"type": "view.reset"}`, 1, false},
		{`[{"type": "view.reset"}, {"type": "playback.toggle"}]`, 2, false},
		{`[]`, 0, false},
		{`{"type": "nope"}`, 0, true},
		{`[{"type": "view.reset"}, {"type": "object.visible", "id": 1}]`, 0, true},
	} {
		cmds, err := DecodeCommands([]byte(tc.payload))
		if (err != nil) != tc.err {
			t.Fatalf("DecodeCommands(%s) error\nhave %v\nwant error %t", tc.payload, err, tc.err)
		}
		if len(cmds) != tc.want {
			t.Fatalf("DecodeCommands(%s)\nhave %d commands\nwant %d", tc.payload, len(cmds), tc.want)
		}
	}
}
