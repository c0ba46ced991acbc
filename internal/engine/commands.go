package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/rim/internal/animation"
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

// Command is an input applied at the start of a Tick. Commands naming
// unknown objects do nothing.
type Command interface {
	apply(e *Engine)
}

// Wire names of the commands.
const (
	TypeCreate     = "object.create"
	TypeRemove     = "object.remove"
	TypeVisible    = "object.visible"
	TypeLayer      = "object.layer"
	TypeStyle      = "object.style"
	TypeParams     = "object.params"
	TypeClearKind  = "object.clearKind"
	TypeZoom       = "view.zoom"
	TypePan        = "view.pan"
	TypeResetView  = "view.reset"
	TypeResize     = "view.resize"
	TypePlay       = "anim.play"
	TypeStop       = "anim.stop"
	TypeToggle     = "playback.toggle"
	TypeSetPlaying = "playback.set"
)

var (
	ErrUnknownCommand = errors.New("unknown command type")
	ErrMissingField   = errors.New("missing field")
)

// CreateObject adds an object. A nil Style uses the default style.
type CreateObject struct {
	Kind   object.Kind
	Style  *object.Style
	Layer  int
	Hidden bool
}

type RemoveObject struct{ ID object.ID }

type SetVisible struct {
	ID      object.ID
	Visible bool
}

type SetLayer struct {
	ID    object.ID
	Layer int
}

type UpdateStyle struct {
	ID    object.ID
	Style object.Style
}

// UpdateParams replaces an object's parameters with a kind of the same type.
type UpdateParams struct {
	ID   object.ID
	Kind object.Kind
}

// PatchParams merges JSON parameters into an object's current parameters.
type PatchParams struct {
	ID     object.ID
	Params json.RawMessage
}

type ClearKind struct{ Kind object.KindType }

// Zoom zooms by Delta steps around Anchor, or around the viewport center
// when Anchor is nil.
type Zoom struct {
	Delta  float64
	Anchor *geom.Vec2
}

type Pan struct{ Offset geom.Vec2 }

type ResetView struct{}

type Resize struct{ Width, Height float64 }

type PlayAnimation struct {
	ID   object.ID
	Spec animation.TrackSpec
}

type StopAnimation struct{ ID object.ID }

type TogglePlayback struct{}

type SetPlayback struct{ Playing bool }

func (c CreateObject) apply(e *Engine) {
	style := object.DefaultStyle()
	if c.Style != nil {
		style = *c.Style
	}
	id := e.CreateObject(c.Kind, style, c.Layer)
	if id == 0 {
		slog.Debug("engine: create without kind ignored")
		return
	}
	if c.Hidden {
		e.SetVisible(id, false)
	}
}

func (c RemoveObject) apply(e *Engine) { e.RemoveObject(c.ID) }

func (c SetVisible) apply(e *Engine) { ignored(e.SetVisible(c.ID, c.Visible), TypeVisible, c.ID) }

func (c SetLayer) apply(e *Engine) { ignored(e.SetLayer(c.ID, c.Layer), TypeLayer, c.ID) }

func (c UpdateStyle) apply(e *Engine) { ignored(e.UpdateStyle(c.ID, c.Style), TypeStyle, c.ID) }

func (c UpdateParams) apply(e *Engine) { ignored(e.UpdateParams(c.ID, c.Kind), TypeParams, c.ID) }

func (c PatchParams) apply(e *Engine) { ignored(e.PatchParams(c.ID, c.Params), TypeParams, c.ID) }

func (c ClearKind) apply(e *Engine) { e.ClearKind(c.Kind) }

func (c Zoom) apply(e *Engine) {
	anchor := e.view.Center()
	if c.Anchor != nil {
		anchor = *c.Anchor
	}
	e.Zoom(c.Delta, anchor)
}

func (c Pan) apply(e *Engine) { e.Pan(c.Offset) }

func (ResetView) apply(e *Engine) { e.ResetView() }

func (c Resize) apply(e *Engine) { e.Resize(c.Width, c.Height) }

func (c PlayAnimation) apply(e *Engine) {
	ignored(e.PlayAnimation(c.ID, c.Spec) != "", TypePlay, c.ID)
}

func (c StopAnimation) apply(e *Engine) { e.StopAnimation(c.ID) }

func (TogglePlayback) apply(e *Engine) { e.TogglePlaying() }

func (c SetPlayback) apply(e *Engine) { e.SetPlaying(c.Playing) }

func ignored(ok bool, typ string, id object.ID) {
	if !ok {
		slog.Debug("engine: command ignored", "type", typ, "object", id)
	}
}

// wireCommand is the JSON form of every command, discriminated by Type.
type wireCommand struct {
	Type    string               `json:"type"`
	ID      object.ID            `json:"id"`
	Kind    object.KindType      `json:"kind"`
	Params  json.RawMessage      `json:"params"`
	Style   json.RawMessage      `json:"style"`
	Layer   *int                 `json:"layer"`
	Visible *bool                `json:"visible"`
	Hidden  bool                 `json:"hidden"`
	Delta   float64              `json:"delta"`
	Anchor  *geom.Vec2           `json:"anchor"`
	Offset  geom.Vec2            `json:"offset"`
	Width   float64              `json:"width"`
	Height  float64              `json:"height"`
	Track   *animation.TrackSpec `json:"track"`
	Playing *bool                `json:"playing"`
}

// DecodeCommand parses the JSON form of a command:
//
//	{"type": "object.create", "kind": "circle", "params": {"radius": 2}}
//	{"type": "view.zoom", "delta": 1, "anchor": {"x": 600, "y": 400}}
func DecodeCommand(data []byte) (Command, error) {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}

	switch w.Type {
	case TypeCreate:
		kind, err := object.DecodeKind(w.Kind, w.Params)
		if err != nil {
			return nil, err
		}
		c := CreateObject{Kind: kind, Hidden: w.Hidden}
		if w.Style != nil {
			style, err := decodeStyle(w.Style)
			if err != nil {
				return nil, err
			}
			c.Style = &style
		}
		if w.Layer != nil {
			c.Layer = *w.Layer
		}
		return c, nil

	case TypeRemove:
		return RemoveObject{ID: w.ID}, nil

	case TypeVisible:
		if w.Visible == nil {
			return nil, fmt.Errorf("%s: %w: visible", w.Type, ErrMissingField)
		}
		return SetVisible{ID: w.ID, Visible: *w.Visible}, nil

	case TypeLayer:
		if w.Layer == nil {
			return nil, fmt.Errorf("%s: %w: layer", w.Type, ErrMissingField)
		}
		return SetLayer{ID: w.ID, Layer: *w.Layer}, nil

	case TypeStyle:
		if w.Style == nil {
			return nil, fmt.Errorf("%s: %w: style", w.Type, ErrMissingField)
		}
		style, err := decodeStyle(w.Style)
		if err != nil {
			return nil, err
		}
		return UpdateStyle{ID: w.ID, Style: style}, nil

	case TypeParams:
		if w.Params == nil {
			return nil, fmt.Errorf("%s: %w: params", w.Type, ErrMissingField)
		}
		return PatchParams{ID: w.ID, Params: w.Params}, nil

	case TypeClearKind:
		return ClearKind{Kind: w.Kind}, nil

	case TypeZoom:
		return Zoom{Delta: w.Delta, Anchor: w.Anchor}, nil

	case TypePan:
		return Pan{Offset: w.Offset}, nil

	case TypeResetView:
		return ResetView{}, nil

	case TypeResize:
		return Resize{Width: w.Width, Height: w.Height}, nil

	case TypePlay:
		if w.Track == nil {
			return nil, fmt.Errorf("%s: %w: track", w.Type, ErrMissingField)
		}
		return PlayAnimation{ID: w.ID, Spec: *w.Track}, nil

	case TypeStop:
		return StopAnimation{ID: w.ID}, nil

	case TypeToggle:
		return TogglePlayback{}, nil

	case TypeSetPlaying:
		if w.Playing == nil {
			return nil, fmt.Errorf("%s: %w: playing", w.Type, ErrMissingField)
		}
		return SetPlayback{Playing: *w.Playing}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, w.Type)
}

// DecodeCommands parses a single command object or a JSON array of them.
// Either all commands decode or none are returned.
func DecodeCommands(data []byte) ([]Command, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		raws = []json.RawMessage{data}
	}
	cmds := make([]Command, 0, len(raws))
	for _, raw := range raws {
		c, err := DecodeCommand(raw)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// decodeStyle decodes a style over the default style, so omitted fields keep
// their defaults.
func decodeStyle(raw json.RawMessage) (object.Style, error) {
	style := object.DefaultStyle()
	if err := json.Unmarshal(raw, &style); err != nil {
		return object.Style{}, fmt.Errorf("invalid style: %w", err)
	}
	return style, nil
}
