package raidplan

import "math"

// SceneView is the per-frame renderer input: which scene and step to show,
// the selection, the pan/zoom of the view and any live pointer interaction.
type SceneView struct {
	SceneID   string
	StepID    string
	Selection []string

	// Zoom is the number of screen pixels per scene unit. Zero means 1.
	Zoom float64
	// Center is the scene-space point shown at the viewport center.
	Center Vec2
	// Viewport is the screen-space rectangle the scene renders into.
	Viewport Rect

	// Drag is the in-progress pointer drag applied to the selection.
	Drag Drag
	// Drop, when non-nil, is the ghost of an entity being dropped.
	Drop *DropIndicator
}

// Drag is the live, uncommitted transform of the selection during a pointer
// drag. It is added on top of the resolved values and never interpolated.
// When Pivot is set, selected shapes orbit it by Rotation; otherwise each
// turns about its own center.
type Drag struct {
	Offset   Vec2
	Rotation float64
	Pivot    *Vec2
}

// DropIndicator marks where a dragged-in entity would land.
type DropIndicator struct {
	Position Vec2
	Shape    Shape
}

func (v SceneView) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// PixelScale returns the number of scene units covered by one screen pixel.
func (v SceneView) PixelScale() float64 {
	return 1 / v.zoom()
}

// ViewMatrix returns the scene-to-screen matrix:
//
//	Translate(viewport center) * Scale(zoom) * Translate(-Center)
func (v SceneView) ViewMatrix() [6]float64 {
	z := v.zoom()
	cx := v.Viewport.X + v.Viewport.Width/2
	cy := v.Viewport.Y + v.Viewport.Height/2
	return [6]float64{z, 0, 0, z, cx - z*v.Center.X, cy - z*v.Center.Y}
}

// SceneToScreen converts a scene-space point to screen space.
func (v SceneView) SceneToScreen(p Vec2) Vec2 {
	return TransformPoint(v.ViewMatrix(), p)
}

// ScreenToScene converts a screen-space point to scene space.
func (v SceneView) ScreenToScene(p Vec2) Vec2 {
	return TransformPoint(InvertAffine(v.ViewMatrix()), p)
}

// VisibleBounds returns the scene-space rectangle covered by the viewport.
func (v SceneView) VisibleBounds() Rect {
	inv := InvertAffine(v.ViewMatrix())
	x0, y0 := transformPoint(inv, v.Viewport.X, v.Viewport.Y)
	x1, y1 := transformPoint(inv, v.Viewport.X+v.Viewport.Width, v.Viewport.Y+v.Viewport.Height)
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

// FitZoom returns the zoom that fits a stage of the given shape inside the
// viewport with margin pixels on every side.
func FitZoom(stage Shape, viewport Rect, margin float64) float64 {
	w, h := stage.Size()
	if w <= 0 || h <= 0 {
		return 1
	}
	zx := (viewport.Width - 2*margin) / w
	zy := (viewport.Height - 2*margin) / h
	z := math.Min(zx, zy)
	if z <= 0 {
		return 1
	}
	return z
}
