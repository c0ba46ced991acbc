package object

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/typeid"
)

// KindType names a member of the closed set of object kinds.
type KindType string

const (
	KindAxes            KindType = "axes"
	KindGrid            KindType = "grid"
	KindCircle          KindType = "circle"
	KindLine            KindType = "line"
	KindRectangle       KindType = "rectangle"
	KindFunctionGraph   KindType = "function"
	KindParametricCurve KindType = "parametric"
)

// Kind is the kind-specific parameter set of an object. The set of kinds is
// closed; consumers switch on the concrete type.
type Kind interface {
	Type() KindType
	tagPrefix() string
}

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Valid reports whether the range is finite and non-empty.
func (r Range) Valid() bool {
	return geom.IsFinite(r.Min) && geom.IsFinite(r.Max) && r.Max > r.Min
}

// Axes is a pair of coordinate axes with ticks, arrows and labels.
type Axes struct {
	X          Range   `json:"x" toml:"x"`
	Y          Range   `json:"y" toml:"y"`
	TickStep   float64 `json:"tickStep,omitempty" toml:"tick_step"` // 0 picks a nice step from the zoom level
	ShowTicks  bool    `json:"showTicks" toml:"show_ticks"`
	ShowArrows bool    `json:"showArrows" toml:"show_arrows"`
	ShowLabels bool    `json:"showLabels" toml:"show_labels"`
	XLabel     string  `json:"xLabel,omitempty" toml:"x_label"`
	YLabel     string  `json:"yLabel,omitempty" toml:"y_label"`
}

// DefaultAxes spans x in [-10, 10] and y in [-8, 8].
func DefaultAxes() Axes {
	return Axes{
		X:          Range{-10, 10},
		Y:          Range{-8, 8},
		ShowTicks:  true,
		ShowArrows: true,
		ShowLabels: true,
		XLabel:     "x",
		YLabel:     "y",
	}
}

// Grid is a background grid covering the visible area.
type Grid struct {
	Spacing      float64 `json:"spacing,omitempty" toml:"spacing"` // 0 follows the axis tick step
	Subdivisions int     `json:"subdivisions,omitempty" toml:"subdivisions"`
	ShowMinor    bool    `json:"showMinor" toml:"show_minor"`
	MinorOpacity float64 `json:"minorOpacity,omitempty" toml:"minor_opacity"`
}

// DefaultGrid has five minor subdivisions drawn at 30% opacity.
func DefaultGrid() Grid {
	return Grid{Subdivisions: 5, ShowMinor: true, MinorOpacity: 0.3}
}

// Circle is a circle approximated by a regular polygon.
type Circle struct {
	Center     geom.Vec2 `json:"center" toml:"center"`
	Radius     float64   `json:"radius" toml:"radius"`
	Resolution int       `json:"resolution,omitempty" toml:"resolution"` // 0 selects segments from the on-screen radius
}

// Line is a straight segment.
type Line struct {
	Start geom.Vec2 `json:"start" toml:"start"`
	End   geom.Vec2 `json:"end" toml:"end"`
}

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	Center geom.Vec2 `json:"center" toml:"center"`
	Width  float64   `json:"width" toml:"width"`
	Height float64   `json:"height" toml:"height"`
}

// FunctionGraph is the graph y = Func(x) over Domain.
type FunctionGraph struct {
	Func    Function `json:"func" toml:"func"`
	Domain  Range    `json:"domain" toml:"domain"`
	Samples int      `json:"samples,omitempty" toml:"samples"`
}

// ParametricCurve is the curve (X(t), Y(t)) for t in Param.
type ParametricCurve struct {
	X       Function `json:"x" toml:"x"`
	Y       Function `json:"y" toml:"y"`
	Param   Range    `json:"param" toml:"param"`
	Samples int      `json:"samples,omitempty" toml:"samples"`
}

func (Axes) Type() KindType            { return KindAxes }
func (Grid) Type() KindType            { return KindGrid }
func (Circle) Type() KindType          { return KindCircle }
func (Line) Type() KindType            { return KindLine }
func (Rectangle) Type() KindType       { return KindRectangle }
func (FunctionGraph) Type() KindType   { return KindFunctionGraph }
func (ParametricCurve) Type() KindType { return KindParametricCurve }

func (Axes) tagPrefix() string            { return typeid.PrefixAxes }
func (Grid) tagPrefix() string            { return typeid.PrefixGrid }
func (Circle) tagPrefix() string          { return typeid.PrefixCircle }
func (Line) tagPrefix() string            { return typeid.PrefixLine }
func (Rectangle) tagPrefix() string       { return typeid.PrefixRectangle }
func (FunctionGraph) tagPrefix() string   { return typeid.PrefixFunction }
func (ParametricCurve) tagPrefix() string { return typeid.PrefixCurve }

// FuncName selects a built-in function.
type FuncName string

const (
	FuncSin       FuncName = "sin"
	FuncCos       FuncName = "cos"
	FuncExp       FuncName = "exp"
	FuncLn        FuncName = "ln"
	FuncLinear    FuncName = "linear"    // A*x + B
	FuncQuadratic FuncName = "quadratic" // A*x^2 + B*x + C
)

// Function is a serialisable built-in function of one variable.
type Function struct {
	Name FuncName `json:"name" toml:"name"`
	A    float64  `json:"a,omitempty" toml:"a"`
	B    float64  `json:"b,omitempty" toml:"b"`
	C    float64  `json:"c,omitempty" toml:"c"`
}

// Eval evaluates f at x. Points outside the function's domain and unknown
// names yield NaN.
func (f Function) Eval(x float64) float64 {
	switch f.Name {
	case FuncSin:
		return math.Sin(x)
	case FuncCos:
		return math.Cos(x)
	case FuncExp:
		return math.Exp(x)
	case FuncLn:
		if x > 0 {
			return math.Log(x)
		}
		return math.NaN()
	case FuncLinear:
		return f.A*x + f.B
	case FuncQuadratic:
		return f.A*x*x + f.B*x + f.C
	default:
		return math.NaN()
	}
}

// DecodeKind decodes the JSON parameters of a kind of type t. Fields absent
// from params keep the kind's defaults.
func DecodeKind(t KindType, params json.RawMessage) (Kind, error) {
	return DecodeKindFunc(t, func(v any) error { return unmarshalParams(params, v) })
}

// DecodeKindFunc builds a kind of type t from its defaults and lets decode
// overwrite them. decode receives a pointer to the kind struct.
func DecodeKindFunc(t KindType, decode func(v any) error) (Kind, error) {
	var k Kind
	var err error
	switch t {
	case KindAxes:
		v := DefaultAxes()
		err = decode(&v)
		k = v
	case KindGrid:
		v := DefaultGrid()
		err = decode(&v)
		k = v
	case KindCircle:
		v := Circle{Radius: 1}
		err = decode(&v)
		k = v
	case KindLine:
		var v Line
		err = decode(&v)
		k = v
	case KindRectangle:
		v := Rectangle{Width: 2, Height: 1}
		err = decode(&v)
		k = v
	case KindFunctionGraph:
		v := FunctionGraph{Domain: Range{-5, 5}}
		err = decode(&v)
		k = v
	case KindParametricCurve:
		v := ParametricCurve{Param: Range{0, 1}}
		err = decode(&v)
		k = v
	default:
		return nil, fmt.Errorf("unknown object kind: %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s params: %w", t, err)
	}
	return k, nil
}

func unmarshalParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, v)
}

// MergeParams decodes params over the current parameters of k. Fields absent
// from params keep their current values; the kind type cannot change.
func MergeParams(k Kind, params json.RawMessage) (Kind, error) {
	var err error
	switch v := k.(type) {
	case Axes:
		err = unmarshalParams(params, &v)
		k = v
	case Grid:
		err = unmarshalParams(params, &v)
		k = v
	case Circle:
		err = unmarshalParams(params, &v)
		k = v
	case Line:
		err = unmarshalParams(params, &v)
		k = v
	case Rectangle:
		err = unmarshalParams(params, &v)
		k = v
	case FunctionGraph:
		err = unmarshalParams(params, &v)
		k = v
	case ParametricCurve:
		err = unmarshalParams(params, &v)
		k = v
	default:
		return nil, fmt.Errorf("unknown object kind %T", k)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s params: %w", k.Type(), err)
	}
	return k, nil
}
