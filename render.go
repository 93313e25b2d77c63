package raidplan

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandFill   CommandType = iota // filled Shape under Transform
	CommandStroke                    // outlined Shape under Transform
	CommandImage                     // Image clipped to Shape under Transform
	CommandLine                      // segment From -> To in scene space
)

// Layer is a draw pass. Commands are emitted in layer order.
type Layer uint8

const (
	LayerBackground Layer = iota
	LayerGround
	LayerAboveGround
	LayerShapes
	LayerOverlay
	LayerSelection
	LayerDrop
)

// RenderCommand is a single draw instruction in scene space. Shapes are
// centered on the origin of their local space and Transform maps that space
// into the scene. Stroke widths are in screen pixels so outlines keep their
// weight at every zoom.
type RenderCommand struct {
	Type      CommandType
	Layer     Layer
	EntityID  string
	Shape     Shape
	Transform [6]float64
	Color     Color
	Width     float64
	Image     string
	Opacity   float64
	From, To  Vec2
	BlendMode BlendMode
}

// DisplayList collects render commands for one frame. Effects append to it
// through the draw helpers; the layer is set by the renderer for each pass.
type DisplayList struct {
	commands []RenderCommand
	layer    Layer
	entityID string
}

// Commands returns the collected commands in draw order.
func (dl *DisplayList) Commands() []RenderCommand { return dl.commands }

// Len returns the number of collected commands.
func (dl *DisplayList) Len() int { return len(dl.commands) }

func (dl *DisplayList) begin(layer Layer, entityID string) {
	dl.layer = layer
	dl.entityID = entityID
}

func (dl *DisplayList) push(cmd RenderCommand) {
	cmd.Layer = dl.layer
	if cmd.EntityID == "" {
		cmd.EntityID = dl.entityID
	}
	if cmd.Transform == ([6]float64{}) {
		cmd.Transform = identityTransform
	}
	dl.commands = append(dl.commands, cmd)
}

// Fill draws shape filled with c.
func (dl *DisplayList) Fill(shape Shape, transform [6]float64, c Color) {
	dl.push(RenderCommand{Type: CommandFill, Shape: shape, Transform: transform, Color: c})
}

// Stroke outlines shape with c at width pixels.
func (dl *DisplayList) Stroke(shape Shape, transform [6]float64, c Color, width float64) {
	dl.push(RenderCommand{Type: CommandStroke, Shape: shape, Transform: transform, Color: c, Width: width})
}

// Line draws a segment between two scene-space points.
func (dl *DisplayList) Line(from, to Vec2, c Color, width float64) {
	dl.push(RenderCommand{Type: CommandLine, From: from, To: to, Color: c, Width: width})
}

// Image draws src clipped to shape at the given opacity.
func (dl *DisplayList) Image(src string, shape Shape, transform [6]float64, opacity float64) {
	dl.push(RenderCommand{Type: CommandImage, Image: src, Shape: shape, Transform: transform, Opacity: opacity, Color: ColorWhite})
}

// material draws m over shape: a solid fill or a clipped image.
func (dl *DisplayList) material(m *Material, shape Shape, transform [6]float64) {
	if m == nil {
		return
	}
	switch m.Type {
	case MaterialImage:
		if m.Image != "" {
			dl.Image(m.Image, shape, transform, m.Opacity)
		}
	default:
		dl.Fill(shape, transform, m.Color)
	}
}
