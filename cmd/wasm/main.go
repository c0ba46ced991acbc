//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/preset"
	"github.com/inamate/rim/internal/viewport"
)

var (
	eng     *engine.Engine
	pending []engine.Command
)

func main() {
	view, err := viewport.New(viewport.DefaultOptions())
	if err != nil {
		panic(err)
	}
	eng = engine.New(view, engine.DefaultOptions())
	preset.Default().Apply(eng)

	// Create the engine API object
	rimEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	rimEngine.Set("command", js.FuncOf(command))
	rimEngine.Set("loadPreset", js.FuncOf(loadPreset))
	rimEngine.Set("loadDefaultScene", js.FuncOf(loadDefaultScene))
	rimEngine.Set("play", js.FuncOf(play))
	rimEngine.Set("pause", js.FuncOf(pause))
	rimEngine.Set("togglePlay", js.FuncOf(togglePlay))
	rimEngine.Set("zoom", js.FuncOf(zoom))
	rimEngine.Set("pan", js.FuncOf(pan))
	rimEngine.Set("resetView", js.FuncOf(resetView))
	rimEngine.Set("resize", js.FuncOf(resize))
	rimEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	rimEngine.Set("hitTest", js.FuncOf(hitTest))
	rimEngine.Set("screenToWorld", js.FuncOf(screenToWorld))
	rimEngine.Set("getState", js.FuncOf(getState))
	rimEngine.Set("getFrame", js.FuncOf(getFrame))
	rimEngine.Set("isPlaying", js.FuncOf(isPlaying))

	// Register on global scope
	js.Global().Set("rimEngine", rimEngine)

	// Signal that WASM is ready
	js.Global().Set("rimWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okValue() js.Value {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

// command queues one JSON command, or an array of them, for the next tick.
func command(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing command JSON"})
	}
	cmds, err := engine.DecodeCommands([]byte(args[0].String()))
	if err != nil {
		return errorValue(err)
	}
	pending = append(pending, cmds...)
	return okValue()
}

func loadPreset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing preset TOML"})
	}
	sc, err := preset.Parse([]byte(args[0].String()))
	if err != nil {
		return errorValue(err)
	}
	pending = nil
	sc.Apply(eng)
	return okValue()
}

func loadDefaultScene(this js.Value, args []js.Value) interface{} {
	pending = nil
	preset.Default().Apply(eng)
	return okValue()
}

func play(this js.Value, args []js.Value) interface{} {
	eng.SetPlaying(true)
	return nil
}

func pause(this js.Value, args []js.Value) interface{} {
	eng.SetPlaying(false)
	return nil
}

func togglePlay(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.TogglePlaying())
}

// zoom(delta, x, y) zooms around the screen point (x, y), or the center
// when no point is given.
func zoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	c := engine.Zoom{Delta: args[0].Float()}
	if len(args) >= 3 {
		anchor := geom.V(args[1].Float(), args[2].Float())
		c.Anchor = &anchor
	}
	pending = append(pending, c)
	return nil
}

func pan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	pending = append(pending, engine.Pan{Offset: geom.V(args[0].Float(), args[1].Float())})
	return nil
}

func resetView(this js.Value, args []js.Value) interface{} {
	pending = append(pending, engine.ResetView{})
	return nil
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	pending = append(pending, engine.Resize{Width: args[0].Float(), Height: args[1].Float()})
	return nil
}

// tick(dt) runs a frame with the queued commands and returns the batch JSON.
func tick(this js.Value, args []js.Value) interface{} {
	dt := 0.0
	if len(args) > 0 {
		dt = args[0].Float()
	}
	cmds := pending
	pending = nil
	data, err := eng.Tick(dt, cmds).JSON()
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}

// --- Query Handlers ---

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(0)
	}
	id, ok := eng.HitTest(args[0].Float(), args[1].Float())
	if !ok {
		return js.ValueOf(0)
	}
	return js.ValueOf(float64(id))
}

func screenToWorld(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	p := eng.Viewport().ScreenToWorld(geom.V(args[0].Float(), args[1].Float()))
	return js.ValueOf(map[string]interface{}{"x": p.X, "y": p.Y})
}

func getState(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(eng.State())
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}

func getFrame(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(float64(eng.Frame()))
}

func isPlaying(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Playing())
}
