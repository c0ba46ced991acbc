package object

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/typeid"
)

func TestCreateDefaults(t *testing.T) {
	r := NewRegistry()
	id := r.Create(Circle{Radius: 1}, DefaultStyle())
	o, ok := r.Get(id)
	if !ok {
		t.Fatalf("Get(%d): missing", id)
	}
	if !o.Visible || o.Layer != 0 {
		t.Fatalf("new object\nhave visible=%v layer=%d\nwant visible=true layer=0", o.Visible, o.Layer)
	}
	if o.Placement != DefaultPlacement() {
		t.Fatalf("Placement\nhave %v\nwant %v", o.Placement, DefaultPlacement())
	}
	if err := typeid.Validate(o.Tag, typeid.PrefixCircle); err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if !r.IsChanged(id) {
		t.Fatal("new object not marked changed")
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	r := NewRegistry()
	seen := make(map[ID]bool)
	for i := 0; i < 10; i++ {
		id := r.Create(Line{}, DefaultStyle())
		if seen[id] {
			t.Fatalf("id %d reused", id)
		}
		seen[id] = true
		if i%2 == 0 {
			r.Remove(id)
		}
	}
	if r.Len() != 5 {
		t.Fatalf("Len\nhave %d\nwant 5", r.Len())
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	id := r.Create(Circle{Radius: 1}, DefaultStyle())
	if !r.Remove(id) {
		t.Fatal("first Remove: want true")
	}
	if r.Remove(id) {
		t.Fatal("second Remove: want false")
	}
	if r.SetVisible(id, true) {
		t.Fatal("SetVisible on removed id: want no-op")
	}
	if r.UpdateStyle(id, DefaultStyle()) || r.SetPosition(id, geom.V(1, 1)) {
		t.Fatal("mutation on removed id: want no-op")
	}
	if _, ok := r.Get(id); ok {
		t.Fatal("Get on removed id: want missing")
	}
	if r.Remove(0) || r.Remove(999) {
		t.Fatal("Remove of never-created id: want false")
	}
}

func TestChangeTracking(t *testing.T) {
	r := NewRegistry()
	a := r.Create(Circle{Radius: 1}, DefaultStyle())
	b := r.Create(Line{End: geom.V(1, 0)}, DefaultStyle())
	c := r.Create(Rectangle{Width: 1, Height: 1}, DefaultStyle())
	if have := r.Changed(); !slices.Equal(have, []ID{a, b, c}) {
		t.Fatalf("Changed after create\nhave %v\nwant %v", have, []ID{a, b, c})
	}
	r.ClearChanged()
	if have := r.Changed(); len(have) != 0 {
		t.Fatalf("Changed after clear\nhave %v\nwant []", have)
	}

	// Writes that do not change anything leave the set empty.
	r.SetVisible(a, true)
	r.SetLayer(b, 0)
	r.UpdateStyle(c, DefaultStyle())
	r.SetScale(a, 1)
	if have := r.Changed(); len(have) != 0 {
		t.Fatalf("Changed after no-op writes\nhave %v\nwant []", have)
	}

	r.SetVisible(c, false)
	r.SetOpacity(a, 0.5)
	r.Remove(b)
	if have := r.Changed(); !slices.Equal(have, []ID{a, b, c}) {
		t.Fatalf("Changed after edits\nhave %v\nwant %v", have, []ID{a, b, c})
	}
}

func TestUpdateKindRequiresSameKind(t *testing.T) {
	r := NewRegistry()
	id := r.Create(Circle{Radius: 1}, DefaultStyle())
	r.ClearChanged()
	if r.UpdateKind(id, Line{}) {
		t.Fatal("UpdateKind with another kind: want false")
	}
	if r.UpdateKind(id, nil) {
		t.Fatal("UpdateKind(nil): want false")
	}
	if !r.UpdateKind(id, Circle{Radius: 3}) {
		t.Fatal("UpdateKind with same kind: want true")
	}
	o, _ := r.Get(id)
	if o.Kind.(Circle).Radius != 3 {
		t.Fatalf("Radius\nhave %v\nwant 3", o.Kind.(Circle).Radius)
	}
	if !r.IsChanged(id) {
		t.Fatal("UpdateKind did not mark changed")
	}
}

func TestClearKind(t *testing.T) {
	r := NewRegistry()
	r.Create(DefaultGrid(), DefaultStyle())
	c1 := r.Create(Circle{Radius: 1}, DefaultStyle())
	c2 := r.Create(Circle{Radius: 2}, DefaultStyle())
	r.Create(DefaultAxes(), DefaultStyle())

	if n := r.ClearKind(KindCircle); n != 2 {
		t.Fatalf("ClearKind\nhave %d\nwant 2", n)
	}
	if _, ok := r.Get(c1); ok {
		t.Fatal("circle survived ClearKind")
	}
	if _, ok := r.Get(c2); ok {
		t.Fatal("circle survived ClearKind")
	}
	if r.Len() != 2 {
		t.Fatalf("Len\nhave %d\nwant 2", r.Len())
	}
	if n := r.ClearKind(KindCircle); n != 0 {
		t.Fatalf("second ClearKind\nhave %d\nwant 0", n)
	}
}

func TestOrdered(t *testing.T) {
	r := NewRegistry()
	a := r.Create(Circle{Radius: 1}, DefaultStyle())
	grid := r.Create(DefaultGrid(), DefaultStyle())
	b := r.Create(Circle{Radius: 1}, DefaultStyle())
	axes := r.Create(DefaultAxes(), DefaultStyle())
	r.SetLayer(grid, -2)
	r.SetLayer(axes, -1)

	var have []ID
	for _, o := range r.Ordered() {
		have = append(have, o.ID)
	}
	if want := []ID{grid, axes, a, b}; !slices.Equal(have, want) {
		t.Fatalf("Ordered\nhave %v\nwant %v", have, want)
	}
}

func TestScalarSettersRejectNonFinite(t *testing.T) {
	r := NewRegistry()
	id := r.Create(Circle{Radius: 1}, DefaultStyle())
	if r.SetOpacity(id, math.NaN()) || r.SetScale(id, math.Inf(1)) || r.SetPosition(id, geom.V(math.NaN(), 0)) {
		t.Fatal("non-finite write accepted")
	}
	// Overshoot outside [0, 1] is stored unchanged.
	if !r.SetOpacity(id, 1.2) {
		t.Fatal("SetOpacity(1.2): want true")
	}
	if o, _ := r.Get(id); o.Style.Opacity != 1.2 {
		t.Fatalf("Opacity\nhave %v\nwant 1.2", o.Style.Opacity)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	id := r.Create(Circle{Radius: 1}, DefaultStyle())
	o, _ := r.Get(id)
	o.Visible = false
	o.Layer = 7
	if again, _ := r.Get(id); !again.Visible || again.Layer != 0 {
		t.Fatal("mutating a snapshot changed the registry")
	}
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c.Hex() != "#ff8000ff" {
		t.Fatalf("Hex\nhave %s\nwant #ff8000ff", c.Hex())
	}
	short, err := ParseColor("#fff")
	if err != nil || short != White {
		t.Fatalf("ParseColor(#fff)\nhave %v, %v\nwant %v", short, err, White)
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Fatal("ParseColor(#12): want error")
	}
	if _, err := ParseColor("#zzzzzz"); err == nil {
		t.Fatal("ParseColor(#zzzzzz): want error")
	}
}

func TestStyleEqual(t *testing.T) {
	a := DefaultStyle().WithFill(Green)
	b := DefaultStyle().WithFill(Green)
	if !a.Equal(b) {
		t.Fatal("styles with equal fills reported different")
	}
	if a.Equal(DefaultStyle()) {
		t.Fatal("filled and unfilled styles reported equal")
	}
}

func TestDecodeKind(t *testing.T) {
	k, err := DecodeKind(KindCircle, json.RawMessage(`{"center":{"x":1,"y":2},"radius":3}`))
	if err != nil {
		t.Fatalf("DecodeKind: %v", err)
	}
	if c := k.(Circle); c.Center != geom.V(1, 2) || c.Radius != 3 || c.Resolution != 0 {
		t.Fatalf("DecodeKind circle\nhave %+v", c)
	}

	k, err = DecodeKind(KindAxes, json.RawMessage(`{"x":{"min":-2,"max":2}}`))
	if err != nil {
		t.Fatalf("DecodeKind: %v", err)
	}
	if a := k.(Axes); a.X != (Range{-2, 2}) || a.Y != DefaultAxes().Y || !a.ShowTicks {
		t.Fatalf("DecodeKind axes defaults\nhave %+v", a)
	}

	if _, err := DecodeKind("hexagon", nil); err == nil || !strings.Contains(err.Error(), "unknown object kind") {
		t.Fatalf("DecodeKind(hexagon)\nhave %v\nwant unknown kind error", err)
	}
	if _, err := DecodeKind(KindLine, json.RawMessage(`{"start":1}`)); err == nil {
		t.Fatal("DecodeKind with bad params: want error")
	}
}

func TestFunctionEval(t *testing.T) {
	cases := []struct {
		f    Function
		x    float64
		want float64
	}{
		{Function{Name: FuncSin}, math.Pi / 2, 1},
		{Function{Name: FuncCos}, 0, 1},
		{Function{Name: FuncExp}, 0, 1},
		{Function{Name: FuncLn}, math.E, 1},
		{Function{Name: FuncLinear, A: 2, B: 1}, 3, 7},
		{Function{Name: FuncQuadratic, A: 1, B: -2, C: 1}, 1, 0},
	}
	for _, c := range cases {
		if have := c.f.Eval(c.x); math.Abs(have-c.want) > 1e-12 {
			t.Fatalf("%s(%v)\nhave %v\nwant %v", c.f.Name, c.x, have, c.want)
		}
	}
	if !math.IsNaN((Function{Name: FuncLn}).Eval(-1)) {
		t.Fatal("ln(-1): want NaN")
	}
	if !math.IsNaN((Function{Name: "tan"}).Eval(1)) {
		t.Fatal("unknown function: want NaN")
	}
}

func TestObjectJSON(t *testing.T) {
	r := NewRegistry()
	id := r.Create(Circle{Radius: 2}, DefaultStyle())
	o, _ := r.Get(id)
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded struct {
		Kind   KindType        `json:"kind"`
		Params json.RawMessage `json:"params"`
		Style  Style           `json:"style"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Kind != KindCircle {
		t.Fatalf("kind\nhave %q\nwant %q", decoded.Kind, KindCircle)
	}
	k, err := DecodeKind(decoded.Kind, decoded.Params)
	if err != nil || k != o.Kind {
		t.Fatalf("params round trip\nhave %+v, %v\nwant %+v", k, err, o.Kind)
	}
	if !decoded.Style.Equal(o.Style) {
		t.Fatalf("style round trip\nhave %+v\nwant %+v", decoded.Style, o.Style)
	}
}

func TestMergeParams(t *testing.T) {
	k, err := MergeParams(Circle{Center: geom.V(1, 2), Radius: 3}, json.RawMessage(`{"radius": 5}`))
	if err != nil {
		t.Fatalf("MergeParams: %v", err)
	}
	want := Circle{Center: geom.V(1, 2), Radius: 5}
	if k != want {
		t.Fatalf("merged\nhave %+v\nwant %+v", k, want)
	}
	if _, err := MergeParams(Line{}, json.RawMessage(`{"start": 1}`)); err == nil {
		t.Fatal("malformed params accepted")
	}
}
