package raidplan

import (
	"slices"
	"time"
)

// Default rotation-handle geometry, in screen pixels.
const (
	DefaultHandleDistance = 24.0
	DefaultHandleRadius   = 8.0
)

// RendererConfig configures a Renderer. Zero values select defaults.
type RendererConfig struct {
	// TransitionDuration is the step-change animation length.
	TransitionDuration time.Duration
	// HandleDistance is the gap between a shape's top edge and its rotation
	// handle, in pixels.
	HandleDistance float64
	// HandleRadius is the rotation handle's radius, in pixels.
	HandleRadius float64
	// Effects resolves EffectInstance factory ids. Nil disables effects.
	Effects *EffectRegistry
	// StageColor fills a scene that has no Fill of its own.
	StageColor Color
	// ShapeColor fills a shape that has no Fill of its own.
	ShapeColor Color
}

// renderRecord is the renderer's private, per-shape cache. It survives across
// frames so step transitions can start from what was on screen.
type renderRecord struct {
	entity  RaidEntity
	visible bool
	stepID  string

	target        Pose
	from          Pose
	start         time.Time
	transitioning bool

	effects []effectSlot
}

// Renderer turns a scene of the raid graph into a display list and answers
// hit tests. It reads state; it never writes it. Not safe for concurrent use.
type Renderer struct {
	cfg RendererConfig

	scene    RaidScene
	hasScene bool
	view     SceneView
	now      time.Time

	records  map[string]*renderRecord
	order    []string
	selected map[string]bool
	handles  map[string]bool
}

// NewRenderer returns a renderer with cfg, defaults filled in.
func NewRenderer(cfg RendererConfig) *Renderer {
	if cfg.TransitionDuration == 0 {
		cfg.TransitionDuration = DefaultTransitionDuration
	}
	if cfg.HandleDistance == 0 {
		cfg.HandleDistance = DefaultHandleDistance
	}
	if cfg.HandleRadius == 0 {
		cfg.HandleRadius = DefaultHandleRadius
	}
	if cfg.StageColor == (Color{}) {
		cfg.StageColor = Color{0.16, 0.17, 0.2, 1}
	}
	if cfg.ShapeColor == (Color{}) {
		cfg.ShapeColor = Color{0.6, 0.6, 0.65, 1}
	}
	return &Renderer{
		cfg:      cfg,
		records:  map[string]*renderRecord{},
		selected: map[string]bool{},
		handles:  map[string]bool{},
	}
}

// Update reconciles the render records with state for view at time now.
// Records are kept per shape id; a shape whose resolved step changed starts a
// transition from the pose it was showing. Records of shapes that left the
// scene are dropped, and switching scenes drops them all.
func (r *Renderer) Update(state RaidsState, view SceneView, now time.Time) {
	r.now = now
	r.view = view
	r.order = r.order[:0]
	clear(r.selected)
	clear(r.handles)

	sc, ok := state.Scene(view.SceneID)
	if !ok {
		r.hasScene = false
		clear(r.records)
		return
	}
	if !r.hasScene || r.scene.ID != sc.ID {
		clear(r.records)
	}
	r.scene, r.hasScene = sc, true

	stepID := view.StepID
	if !slices.Contains(sc.StepIDs, stepID) && len(sc.StepIDs) > 0 {
		stepID = sc.StepIDs[0]
	}
	r.view.StepID = stepID

	seen := map[string]bool{}
	var visit func(ids []string, hidden bool)
	visit = func(ids []string, hidden bool) {
		for _, id := range ids {
			e, ok := state.Entities[id]
			if !ok || seen[id] {
				continue
			}
			visible := !hidden && e.VisibleAt(sc.StepIDs, stepID)
			if e.IsGroup() {
				seen[id] = true
				visit(e.Properties.Children, !visible)
				continue
			}
			if !e.IsShape() {
				continue
			}
			seen[id] = true
			r.reconcile(e, visible, sc.StepIDs, stepID, now)
			if visible {
				r.order = append(r.order, id)
			}
		}
	}
	visit(sc.EntityIDs, false)

	for id := range r.records {
		if !seen[id] {
			delete(r.records, id)
		}
	}

	for _, e := range ShapeDescendants(state, view.Selection) {
		r.selected[e.ID] = true
	}
	for _, id := range view.Selection {
		if e, ok := state.Entities[id]; ok && e.IsShape() {
			r.handles[id] = true
		}
	}
}

func (r *Renderer) reconcile(e RaidEntity, visible bool, sceneStepIDs []string, stepID string, now time.Time) {
	target := resolvePose(e, sceneStepIDs, stepID)
	rec, ok := r.records[e.ID]
	switch {
	case !ok:
		rec = &renderRecord{from: target, stepID: stepID}
		r.records[e.ID] = rec
	case rec.stepID != stepID:
		rec.from = rec.current(now, r.cfg.TransitionDuration)
		rec.start = now
		rec.transitioning = true
		rec.stepID = stepID
	}
	rec.entity = e
	rec.visible = visible
	rec.target = target
	rec.effects = reconcileEffects(r.cfg.Effects, rec.effects, e.Properties.Effects, sceneStepIDs, stepID)
}

// current returns the interpolated pose at now, ending the transition once
// it completes.
func (rec *renderRecord) current(now time.Time, dur time.Duration) Pose {
	if !rec.transitioning {
		return rec.target
	}
	t, done := transitionProgress(rec.start, now, dur)
	if done {
		rec.transitioning = false
		return rec.target
	}
	return rec.from.lerp(rec.target, t)
}

// displayPose is the pose drawn and hit-tested: the interpolated pose plus
// the live drag on selected shapes.
func (r *Renderer) displayPose(id string, rec *renderRecord) Pose {
	p := rec.current(r.now, r.cfg.TransitionDuration)
	if r.selected[id] {
		d := r.view.Drag
		p = p.offset(d.Offset, d.Rotation, d.Pivot)
	}
	return p.withBounds(rec.entity.Properties.Shape)
}

// Pose returns the pose shape id is currently drawn at.
func (r *Renderer) Pose(id string) (Pose, bool) {
	rec, ok := r.records[id]
	if !ok || !rec.visible {
		return Pose{}, false
	}
	return r.displayPose(id, rec), true
}

// Animating reports whether any shape is mid-transition.
func (r *Renderer) Animating() bool {
	for _, rec := range r.records {
		if rec.transitioning {
			return true
		}
	}
	return false
}

// Len returns the number of live render records.
func (r *Renderer) Len() int { return len(r.records) }

// StepID returns the step the last Update resolved.
func (r *Renderer) StepID() string { return r.view.StepID }

// SelectionBounds returns the box enclosing every selected shape as it is
// currently drawn, or ok == false when no visible shape is selected.
func (r *Renderer) SelectionBounds() (Rect, bool) {
	var box Rect
	found := false
	for _, id := range r.order {
		if !r.selected[id] {
			continue
		}
		b := r.displayPose(id, r.records[id]).Bounds
		if found {
			box = box.Union(b)
		} else {
			box, found = b, true
		}
	}
	return box, found
}

// cullBounds returns the scene area the viewport shows. Without a viewport
// nothing is culled.
func (r *Renderer) cullBounds() (Rect, bool) {
	if r.view.Viewport.Width <= 0 || r.view.Viewport.Height <= 0 {
		return Rect{}, false
	}
	return r.view.VisibleBounds(), true
}

// Draw returns the display list for time now: stage, effect ground passes,
// shapes, effect overlays, selection outlines with rotation handles, and the
// drop indicator, in that order. Shapes and outlines outside the viewport
// are left out; effects are not culled.
func (r *Renderer) Draw(now time.Time) []RenderCommand {
	if !r.hasScene {
		return nil
	}
	r.now = now
	dl := &DisplayList{}
	poses := make(map[string]Pose, len(r.order))
	byName := make(map[string]Vec2, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		p := r.displayPose(id, rec)
		poses[id] = p
		if _, dup := byName[rec.entity.Name]; !dup {
			byName[rec.entity.Name] = p.Position
		}
	}
	lookup := func(name string) (Vec2, bool) {
		p, ok := byName[name]
		return p, ok
	}
	ps := r.view.PixelScale()

	dl.begin(LayerBackground, "")
	if r.scene.Fill != nil {
		dl.material(r.scene.Fill, r.scene.Shape, identityTransform)
	} else {
		dl.Fill(r.scene.Shape, identityTransform, r.cfg.StageColor)
	}

	r.drawEffects(dl, poses, lookup, ps, LayerGround)
	r.drawEffects(dl, poses, lookup, ps, LayerAboveGround)

	cull, culling := r.cullBounds()
	for _, id := range r.order {
		rec := r.records[id]
		if culling && !poses[id].Bounds.Intersects(cull) {
			continue
		}
		dl.begin(LayerShapes, id)
		shape := rec.entity.Properties.Shape
		if fill := rec.entity.Properties.Fill; fill != nil {
			dl.material(fill, shape, poses[id].Transform())
		} else {
			dl.Fill(shape, poses[id].Transform(), r.cfg.ShapeColor)
		}
	}

	r.drawEffects(dl, poses, lookup, ps, LayerOverlay)

	for _, id := range r.order {
		if !r.selected[id] || culling && !poses[id].Bounds.Intersects(cull) {
			continue
		}
		rec := r.records[id]
		pose := poses[id]
		shape := rec.entity.Properties.Shape
		dl.begin(LayerSelection, id)
		dl.push(RenderCommand{Type: CommandStroke, Shape: shape, Transform: pose.Transform(), Color: ColorWhite, Width: 2, BlendMode: BlendDifference})
		if !r.handles[id] {
			continue
		}
		h := handlePosition(shape, pose, r.cfg.HandleDistance, ps)
		top := handlePosition(shape, pose, 0, ps)
		dl.push(RenderCommand{Type: CommandLine, From: top, To: h, Color: ColorWhite, Width: 1, BlendMode: BlendDifference})
		dl.push(RenderCommand{
			Type:      CommandStroke,
			Shape:     Circle(r.cfg.HandleRadius * ps),
			Transform: entityTransform(h, pose.Rotation),
			Color:     ColorWhite,
			Width:     2,
			BlendMode: BlendDifference,
		})
	}

	if d := r.view.Drop; d != nil {
		dl.begin(LayerDrop, "")
		t := entityTransform(d.Position, 0)
		dl.Fill(d.Shape, t, Color{1, 1, 1, 0.25})
		dl.Stroke(d.Shape, t, ColorWhite, 1)
	}
	return dl.Commands()
}

func (r *Renderer) drawEffects(dl *DisplayList, poses map[string]Pose, lookup func(string) (Vec2, bool), ps float64, layer Layer) {
	for _, id := range r.order {
		rec := r.records[id]
		for _, slot := range rec.effects {
			ctx := EffectContext{
				Properties:     slot.props,
				EntityID:       id,
				Shape:          rec.entity.Properties.Shape,
				Center:         poses[id].Position,
				Rotation:       poses[id].Rotation,
				PixelScale:     ps,
				EntityPosition: lookup,
			}
			dl.begin(layer, id)
			switch layer {
			case LayerGround:
				if g, ok := slot.effect.(GroundRenderer); ok {
					g.DrawGround(dl, ctx)
				}
			case LayerAboveGround:
				if g, ok := slot.effect.(AboveGroundRenderer); ok {
					g.DrawAboveGround(dl, ctx)
				}
			case LayerOverlay:
				if g, ok := slot.effect.(OverlayRenderer); ok {
					g.DrawOverlay(dl, ctx)
				}
			}
		}
	}
}
