package raidplan

import (
	"errors"
	"math"
)

// ErrInvariant is wrapped by every error that reports a caller bug: changing
// an entity's type, grouping entities without a common parent, reordering
// across containers that do not share a scene, and the like.
var ErrInvariant = errors.New("raidplan: invariant violation")

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// ColorWhite is the default stroke and tint color.
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API. Scene space has its origin at the stage center, with Y
// increasing downward.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Lerp interpolates between v and o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Rotate rotates v around the origin by angle radians.
func (v Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Rect is an axis-aligned box. X and Y name its minimum corner, which is the
// top-left one since Y grows downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies in r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return r.X <= x && x <= r.X+r.Width && r.Y <= y && y <= r.Y+r.Height
}

// Intersects reports whether r and o share at least one point, so boxes that
// only touch along an edge intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// Center returns the middle of r.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Union returns the smallest box containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	x1 := math.Max(r.X+r.Width, o.X+o.Width)
	y1 := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// BlendMode selects a compositing operation for a render command.
type BlendMode uint8

const (
	BlendNormal     BlendMode = iota // source-over (standard alpha blending)
	BlendDifference                  // inverts the destination under the source
)

// ShapeType distinguishes the two stage and entity outlines.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
)

// Shape is a rectangle (Width x Height) or a circle (Radius), centered on the
// owning entity's position or on the scene origin.
type Shape struct {
	Type   ShapeType `json:"type"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	Radius float64   `json:"radius,omitempty"`
}

// Rectangle returns a rectangle shape.
func Rectangle(w, h float64) Shape {
	return Shape{Type: ShapeRectangle, Width: w, Height: h}
}

// Circle returns a circle shape.
func Circle(r float64) Shape {
	return Shape{Type: ShapeCircle, Radius: r}
}

// Size returns the unrotated width and height of the shape.
func (s Shape) Size() (w, h float64) {
	if s.Type == ShapeCircle {
		return s.Radius * 2, s.Radius * 2
	}
	return s.Width, s.Height
}

// HitShape returns the shape's hit region in local, centered coordinates, or
// nil when the shape type has no precise test.
func (s Shape) HitShape() HitShape {
	switch s.Type {
	case ShapeCircle:
		return HitCircle{Radius: s.Radius}
	case ShapeRectangle:
		return HitRect{X: -s.Width / 2, Y: -s.Height / 2, Width: s.Width, Height: s.Height}
	}
	return nil
}

// MaterialType distinguishes fill materials.
type MaterialType string

const (
	MaterialColor MaterialType = "color"
	MaterialImage MaterialType = "image"
)

// Material is a solid color or an image fill clipped to the shape.
type Material struct {
	Type    MaterialType `json:"type"`
	Color   Color        `json:"color,omitzero"`
	Image   string       `json:"image,omitempty"`
	Opacity float64      `json:"opacity,omitempty"`
}

// SolidMaterial returns a solid color fill.
func SolidMaterial(c Color) *Material {
	return &Material{Type: MaterialColor, Color: c}
}

// ImageMaterial returns an image fill drawn at the given opacity.
func ImageMaterial(src string, opacity float64) *Material {
	return &Material{Type: MaterialImage, Image: src, Opacity: opacity}
}

// normalizeAngle maps a into (-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
