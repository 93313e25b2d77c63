// Package ebitenraster draws raidplan display lists onto Ebitengine images.
//
// The rasterizer is deliberately thin: every command is turned into a vector
// path in screen space and submitted with DrawTriangles. Geometry, ordering
// and hit testing all live in the raidplan package.
package ebitenraster

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/raidplan"
)

// circleSegments is the polygon resolution used for circles.
const circleSegments = 48

// whiteSubImage is the 1x1 center of a 3x3 white image, which avoids
// sampling edge texels. Created lazily so the package can be imported
// without a graphics context.
var whiteSubImage *ebiten.Image

func ensureWhiteImage() *ebiten.Image {
	if whiteSubImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// Rasterizer submits display lists to a target image. It keeps vertex
// buffers between frames. Not safe for concurrent use.
type Rasterizer struct {
	// Images resolves image materials. Nil skips image fills.
	Images *ImageCache
	// Debug prints per-frame stats to stderr.
	Debug bool

	vertices []ebiten.Vertex
	indices  []uint16
	stats    Stats
}

// NewRasterizer returns a rasterizer backed by images.
func NewRasterizer(images *ImageCache) *Rasterizer {
	return &Rasterizer{Images: images}
}

// Stats returns the stats of the last Draw call.
func (r *Rasterizer) Stats() Stats { return r.stats }

// Draw rasterizes cmds, which are in scene space, through view onto dst.
func (r *Rasterizer) Draw(dst *ebiten.Image, cmds []raidplan.RenderCommand, view raidplan.SceneView) {
	start := time.Now()
	r.stats = Stats{Commands: len(cmds)}
	if r.Images != nil {
		r.Images.Poll()
	}
	viewM := view.ViewMatrix()

	for i := range cmds {
		cmd := &cmds[i]
		m := raidplan.MultiplyAffine(viewM, cmd.Transform)
		switch cmd.Type {
		case raidplan.CommandFill:
			r.fill(dst, shapePath(cmd.Shape, m), cmd.Color, cmd.BlendMode)
		case raidplan.CommandStroke:
			r.stroke(dst, shapePath(cmd.Shape, m), cmd.Color, cmd.Width, cmd.BlendMode)
		case raidplan.CommandLine:
			var p vector.Path
			from := raidplan.TransformPoint(viewM, cmd.From)
			to := raidplan.TransformPoint(viewM, cmd.To)
			p.MoveTo(float32(from.X), float32(from.Y))
			p.LineTo(float32(to.X), float32(to.Y))
			r.stroke(dst, &p, cmd.Color, cmd.Width, cmd.BlendMode)
		case raidplan.CommandImage:
			r.image(dst, cmd, m)
		}
	}
	r.stats.Elapsed = time.Since(start)
	r.debugLog()
}

func (r *Rasterizer) fill(dst *ebiten.Image, p *vector.Path, c raidplan.Color, blend raidplan.BlendMode) {
	r.vertices, r.indices = p.AppendVerticesAndIndicesForFilling(r.vertices[:0], r.indices[:0])
	r.submit(dst, ensureWhiteImage(), c, blend, ebiten.FillRuleNonZero)
}

func (r *Rasterizer) stroke(dst *ebiten.Image, p *vector.Path, c raidplan.Color, width float64, blend raidplan.BlendMode) {
	if width <= 0 {
		width = 1
	}
	opts := &vector.StrokeOptions{Width: float32(width), LineJoin: vector.LineJoinRound, LineCap: vector.LineCapRound}
	r.vertices, r.indices = p.AppendVerticesAndIndicesForStroke(r.vertices[:0], r.indices[:0], opts)
	r.submit(dst, ensureWhiteImage(), c, blend, ebiten.FillRuleFillAll)
}

// submit colors the buffered vertices and draws them with src.
func (r *Rasterizer) submit(dst, src *ebiten.Image, c raidplan.Color, blend raidplan.BlendMode, rule ebiten.FillRule) {
	if len(r.indices) == 0 {
		return
	}
	for i := range r.vertices {
		v := &r.vertices[i]
		if src == whiteSubImage {
			v.SrcX, v.SrcY = 1.5, 1.5
		}
		v.ColorR = float32(c.R * c.A)
		v.ColorG = float32(c.G * c.A)
		v.ColorB = float32(c.B * c.A)
		v.ColorA = float32(c.A)
	}
	op := &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
		FillRule:  rule,
		Blend:     ebitenBlend(blend),
	}
	dst.DrawTriangles(r.vertices, r.indices, src, op)
	r.stats.DrawCalls++
}

// image draws an image material clipped to the command's shape by mapping
// the shape's local bounds onto the image's pixels.
func (r *Rasterizer) image(dst *ebiten.Image, cmd *raidplan.RenderCommand, m [6]float64) {
	if r.Images == nil {
		return
	}
	img, ok := r.Images.Get(cmd.Image)
	if !ok {
		r.stats.PendingImages++
		return
	}
	p := shapePath(cmd.Shape, m)
	r.vertices, r.indices = p.AppendVerticesAndIndicesForFilling(r.vertices[:0], r.indices[:0])
	if len(r.indices) == 0 {
		return
	}
	inv := raidplan.InvertAffine(m)
	w, h := cmd.Shape.Size()
	b := img.Bounds()
	for i := range r.vertices {
		v := &r.vertices[i]
		l := raidplan.TransformPoint(inv, raidplan.Vec2{X: float64(v.DstX), Y: float64(v.DstY)})
		v.SrcX = float32(float64(b.Min.X) + (l.X/w+0.5)*float64(b.Dx()))
		v.SrcY = float32(float64(b.Min.Y) + (l.Y/h+0.5)*float64(b.Dy()))
	}
	opacity := cmd.Opacity
	if opacity <= 0 {
		opacity = 1
	}
	r.submit(dst, img, raidplan.Color{R: 1, G: 1, B: 1, A: opacity}, cmd.BlendMode, ebiten.FillRuleNonZero)
}

// shapePath builds the screen-space outline of shape under m.
func shapePath(shape raidplan.Shape, m [6]float64) *vector.Path {
	var p vector.Path
	at := func(x, y float64) (float32, float32) {
		q := raidplan.TransformPoint(m, raidplan.Vec2{X: x, Y: y})
		return float32(q.X), float32(q.Y)
	}
	switch shape.Type {
	case raidplan.ShapeCircle:
		p.MoveTo(at(shape.Radius, 0))
		for i := 1; i <= circleSegments; i++ {
			a := 2 * math.Pi * float64(i) / circleSegments
			p.LineTo(at(shape.Radius*math.Cos(a), shape.Radius*math.Sin(a)))
		}
		p.Close()
	default:
		hw, hh := shape.Width/2, shape.Height/2
		p.MoveTo(at(-hw, -hh))
		p.LineTo(at(hw, -hh))
		p.LineTo(at(hw, hh))
		p.LineTo(at(-hw, hh))
		p.Close()
	}
	return &p
}
