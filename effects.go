package raidplan

import (
	"fmt"
	"slices"
)

// EffectContext is what an effect sees when asked to draw.
type EffectContext struct {
	// Properties are the instance's properties resolved at the current step.
	Properties ResolvedProperties
	EntityID   string
	Shape      Shape
	// Center and Rotation are the owning entity's interpolated pose.
	Center   Vec2
	Rotation float64
	// PixelScale is the number of scene units per screen pixel.
	PixelScale float64
	// EntityPosition looks up the current position of a shape in the same
	// scene by name.
	EntityPosition func(name string) (Vec2, bool)
}

// Transform returns the owning entity's local-to-scene matrix.
func (c EffectContext) Transform() [6]float64 {
	return entityTransform(c.Center, c.Rotation)
}

// GroundRenderer is implemented by effects that draw beneath every shape.
type GroundRenderer interface {
	DrawGround(dl *DisplayList, ctx EffectContext)
}

// AboveGroundRenderer is implemented by effects that draw after the ground
// pass but still beneath every shape.
type AboveGroundRenderer interface {
	DrawAboveGround(dl *DisplayList, ctx EffectContext)
}

// OverlayRenderer is implemented by effects that draw above every shape.
type OverlayRenderer interface {
	DrawOverlay(dl *DisplayList, ctx EffectContext)
}

// EffectFactory describes one kind of visual effect. Create returns a fresh
// instance, which may implement any of the renderer interfaces; the renderer
// keeps one instance per attached EffectInstance.
type EffectFactory struct {
	ID         string
	Name       string
	Properties []PropertySpec
	Create     func() any
}

// EffectRegistry maps factory ids to factories.
type EffectRegistry struct {
	factories map[string]EffectFactory
}

// NewEffectRegistry returns a registry holding factories. It panics on a
// duplicate id.
func NewEffectRegistry(factories ...EffectFactory) *EffectRegistry {
	r := &EffectRegistry{factories: map[string]EffectFactory{}}
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds f. It fails when the id is empty or already taken.
func (r *EffectRegistry) Register(f EffectFactory) error {
	if f.ID == "" || f.Create == nil {
		return fmt.Errorf("raidplan: effect factory needs an id and a Create func")
	}
	if _, ok := r.factories[f.ID]; ok {
		return fmt.Errorf("raidplan: effect factory %q already registered", f.ID)
	}
	r.factories[f.ID] = f
	return nil
}

// Lookup returns the factory registered under id.
func (r *EffectRegistry) Lookup(id string) (EffectFactory, bool) {
	if r == nil {
		return EffectFactory{}, false
	}
	f, ok := r.factories[id]
	return f, ok
}

// IDs returns the registered factory ids, sorted.
func (r *EffectRegistry) IDs() []string {
	return sortedKeys(r.factories)
}

// NewEffectInstance returns an instance of factoryID holding every declared
// default, unkeyed.
func (r *EffectRegistry) NewEffectInstance(factoryID string) (EffectInstance, bool) {
	f, ok := r.Lookup(factoryID)
	if !ok {
		return EffectInstance{}, false
	}
	return EffectInstance{FactoryID: f.ID, Properties: DefaultProperties(f.Properties)}, true
}

// BuiltinEffects returns the factories shipped with the package.
func BuiltinEffects() []EffectFactory {
	return []EffectFactory{TargetRingEffect(), TetherEffect()}
}

// TargetRingEffect draws a ring on the ground around a shape.
func TargetRingEffect() EffectFactory {
	return EffectFactory{
		ID:   "target-ring",
		Name: "Target ring",
		Properties: []PropertySpec{
			{Key: "color", Kind: KindColor, Default: Color{1, 0.3, 0.2, 1}, Keyable: true},
			{Key: "scale", Kind: KindNumber, Default: 1.25, Keyable: true},
			{Key: "width", Kind: KindNumber, Default: 3.0},
		},
		Create: func() any { return targetRing{} },
	}
}

type targetRing struct{}

func (targetRing) DrawGround(dl *DisplayList, ctx EffectContext) {
	w, h := ctx.Shape.Size()
	r := max(w, h) / 2 * ctx.Properties.Number("scale")
	if r <= 0 {
		return
	}
	dl.Stroke(Circle(r), ctx.Transform(), ctx.Properties.Color("color"), ctx.Properties.Number("width"))
}

// TetherEffect draws a line from a shape to another shape found by name.
func TetherEffect() EffectFactory {
	return EffectFactory{
		ID:   "tether",
		Name: "Tether",
		Properties: []PropertySpec{
			{Key: "target", Kind: KindString, Default: "", Keyable: true},
			{Key: "color", Kind: KindColor, Default: Color{0.4, 0.8, 1, 1}, Keyable: true},
			{Key: "width", Kind: KindNumber, Default: 2.0},
		},
		Create: func() any { return tether{} },
	}
}

type tether struct{}

func (tether) DrawOverlay(dl *DisplayList, ctx EffectContext) {
	name := ctx.Properties.String("target")
	if name == "" || ctx.EntityPosition == nil {
		return
	}
	to, ok := ctx.EntityPosition(name)
	if !ok {
		return
	}
	dl.Line(ctx.Center, to, ctx.Properties.Color("color"), ctx.Properties.Number("width"))
}

// effectSlot is the renderer's cached instance for one attached effect.
type effectSlot struct {
	instanceID string
	factory    EffectFactory
	effect     any
	props      ResolvedProperties
}

// reconcileEffects keeps one live effect per attached instance, creating new
// ones and dropping detached ones. Unknown factories are skipped.
func reconcileEffects(reg *EffectRegistry, prev []effectSlot, attached []EffectInstance, sceneStepIDs []string, stepID string) []effectSlot {
	out := make([]effectSlot, 0, len(attached))
	for _, inst := range attached {
		f, ok := reg.Lookup(inst.FactoryID)
		if !ok {
			continue
		}
		i := slices.IndexFunc(prev, func(s effectSlot) bool {
			return s.instanceID == inst.ID && s.factory.ID == inst.FactoryID
		})
		var slot effectSlot
		if i >= 0 {
			slot = prev[i]
		} else {
			slot = effectSlot{instanceID: inst.ID, factory: f, effect: f.Create()}
		}
		slot.props = ResolveProperties(f.Properties, inst.Properties, sceneStepIDs, stepID)
		out = append(out, slot)
	}
	return out
}
