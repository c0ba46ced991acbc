package preset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inamate/rim/internal/animation"
	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
	"github.com/inamate/rim/internal/viewport"
)

const circlePreset = `
name = "unit circle"
paused = true

[[objects]]
kind = "circle"
layer = 1
params = { center = { x = 1, y = -1 }, radius = 2 }
style = { stroke = "#33cc33", fill = "#33cc3340" }

[[objects.animate]]
target = "reveal"
duration = 1.5
easing = "easeOut"
from = 0
to = 1

[[objects.animate]]
target = "position"
duration = 2
to = [3, 4]

[[objects]]
kind = "function"
hidden = true
params = { func = { name = "quadratic", a = 1, c = -2 }, samples = 50 }
`

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	vp, err := viewport.New(viewport.DefaultOptions())
	if err != nil {
		t.Fatalf("viewport.New: %v", err)
	}
	return engine.New(vp, engine.DefaultOptions())
}

func TestDefault(t *testing.T) {
	sc := Default()
	if sc.Name != "default" || len(sc.Objects) != 2 {
		t.Fatalf("default scene\nhave %q with %d objects\nwant default with 2", sc.Name, len(sc.Objects))
	}
	grid, axes := sc.Objects[0], sc.Objects[1]
	if grid.Kind.Type() != object.KindGrid || grid.Layer != -2 {
		t.Fatalf("first object\nhave %s on layer %d\nwant grid on -2", grid.Kind.Type(), grid.Layer)
	}
	if grid.Style.Stroke.Hex() != "#4d4d4dff" || grid.Style.StrokeWidth != 1 {
		t.Fatalf("grid style\nhave %+v", grid.Style)
	}
	// Unset fields keep the kind defaults.
	if g := grid.Kind.(object.Grid); g.Subdivisions != 5 || !g.ShowMinor {
		t.Fatalf("grid params\nhave %+v", g)
	}
	a := axes.Kind.(object.Axes)
	if a.X != (object.Range{Min: -10, Max: 10}) || a.Y != (object.Range{Min: -8, Max: 8}) || !a.ShowTicks {
		t.Fatalf("axes params\nhave %+v", a)
	}
}

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(circlePreset))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !sc.Paused || len(sc.Objects) != 2 {
		t.Fatalf("scene\nhave %+v", sc)
	}

	c := sc.Objects[0]
	if want := (object.Circle{Center: geom.V(1, -1), Radius: 2}); c.Kind != want {
		t.Fatalf("circle\nhave %+v\nwant %+v", c.Kind, want)
	}
	if c.Style.Fill == nil || c.Style.Fill.A != 0x40/255.0 || c.Style.StrokeWidth != 2 {
		t.Fatalf("style\nhave %+v", c.Style)
	}
	if len(c.Tracks) != 2 {
		t.Fatalf("tracks\nhave %d\nwant 2", len(c.Tracks))
	}
	reveal, move := c.Tracks[0], c.Tracks[1]
	if reveal.Target != animation.TargetReveal || reveal.Easing != animation.EaseOut || reveal.From == nil || *reveal.From != animation.Scalar(0) {
		t.Fatalf("reveal track\nhave %+v", reveal)
	}
	if move.From != nil || move.To != animation.Value(geom.V(3, 4)) {
		t.Fatalf("move track\nhave %+v", move)
	}

	f := sc.Objects[1]
	want := object.FunctionGraph{
		Func:    object.Function{Name: object.FuncQuadratic, A: 1, C: -2},
		Domain:  object.Range{Min: -5, Max: 5},
		Samples: 50,
	}
	if f.Kind != want || !f.Hidden {
		t.Fatalf("function\nhave %+v hidden=%v\nwant %+v hidden", f.Kind, f.Hidden, want)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":         `name = `,
		"unknown kind":   "[[objects]]\nkind = \"hexagon\"",
		"bad colour":     "[[objects]]\nkind = \"line\"\nstyle = { stroke = \"green\" }",
		"bad target":     "[[objects]]\nkind = \"line\"\n[[objects.animate]]\ntarget = \"spin\"\nto = 1",
		"missing to":     "[[objects]]\nkind = \"line\"\n[[objects.animate]]\ntarget = \"scale\"",
		"short position": "[[objects]]\nkind = \"line\"\n[[objects.animate]]\ntarget = \"position\"\nto = [1]",
	}
	for name, in := range cases {
		if _, err := Parse([]byte(in)); !errors.Is(err, ErrInvalidPreset) {
			t.Fatalf("%s: have %v, want ErrInvalidPreset", name, err)
		}
	}
}

func TestApply(t *testing.T) {
	e := newEngine(t)
	e.CreateObject(object.Line{End: geom.V(1, 0)}, object.DefaultStyle(), 0)

	sc, err := Parse([]byte(circlePreset))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ids := sc.Apply(e)
	if len(ids) != 2 || len(e.Objects()) != 2 {
		t.Fatalf("objects after apply\nhave %d (ids %v)\nwant 2", len(e.Objects()), ids)
	}
	if e.Playing() {
		t.Fatal("paused preset left playback running")
	}
	if n := len(e.Animations()); n != 2 {
		t.Fatalf("tracks\nhave %d\nwant 2", n)
	}
	if o, _ := e.Object(ids[1]); o.Visible {
		t.Fatal("hidden object is visible")
	}
}

// watchScene starts Watch on path and returns the names of reloaded scenes.
func watchScene(t *testing.T, path string) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(sc *Scene) {
			select {
			case got <- sc.Name:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	})
	return got
}

// expectReload keeps calling change until the watcher, which starts
// asynchronously, reports the scene named want. Reloads left over from
// earlier changes are skipped.
func expectReload(t *testing.T, got <-chan string, want string, change func()) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case name := <-got:
			if name == want {
				return
			}
		case <-tick.C:
			change()
		case <-deadline:
			t.Fatalf("no reload of %q within 5s", want)
		}
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	if err := os.WriteFile(path, []byte(`name = "one"`), 0o644); err != nil {
		t.Fatal(err)
	}

	got := watchScene(t, path)
	expectReload(t, got, "two", func() {
		if err := os.WriteFile(path, []byte(`name = "two"`), 0o644); err != nil {
			t.Fatal(err)
		}
	})
}

func TestWatchFollowsRenames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	if err := os.WriteFile(path, []byte(`name = "one"`), 0o644); err != nil {
		t.Fatal(err)
	}
	got := watchScene(t, path)

	// Save by writing a temporary file and moving it over the preset.
	tmp := filepath.Join(dir, "scene.toml.tmp")
	expectReload(t, got, "two", func() {
		if err := os.WriteFile(tmp, []byte(`name = "two"`), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
	})

	// Moving the preset away reloads nothing; the watcher keeps going.
	if err := os.Rename(path, filepath.Join(dir, "old.toml")); err != nil {
		t.Fatal(err)
	}
	expectReload(t, got, "three", func() {
		if err := os.WriteFile(path, []byte(`name = "three"`), 0o644); err != nil {
			t.Fatal(err)
		}
	})
}
