package raidplan

import "math"

// HitShape defines a hit-testable region in an entity's local, centered
// coordinate space.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitKind distinguishes hit-test results.
type HitKind uint8

const (
	HitEntity         HitKind = iota + 1 // the body of a shape
	HitRotationHandle                    // the rotation handle of a selected shape
)

func (k HitKind) String() string {
	switch k {
	case HitEntity:
		return "entity"
	case HitRotationHandle:
		return "rotation-handle"
	default:
		return "none"
	}
}

// Hit is the result of a successful hit test. Pivot is set for rotation
// handles and is the point the entity turns around.
type Hit struct {
	Kind     HitKind
	EntityID string
	Pivot    Vec2
}

// poseContains reports whether the scene point p lies on shape placed at
// pose. The point is inverse-transformed into local space; shapes without a
// precise test fall back to their enclosing bounds.
func poseContains(shape Shape, pose Pose, p Vec2) bool {
	hs := shape.HitShape()
	if hs == nil {
		return pose.Bounds.Contains(p.X, p.Y)
	}
	inv := InvertAffine(pose.Transform())
	lx, ly := transformPoint(inv, p.X, p.Y)
	return hs.Contains(lx, ly)
}

// handlePosition returns the scene position of the rotation handle of shape
// at pose: above the top edge, distance pixels away, turned with the shape.
func handlePosition(shape Shape, pose Pose, distance, pixelScale float64) Vec2 {
	_, h := shape.Size()
	d := h/2 + distance*pixelScale
	sin, cos := math.Sincos(pose.Rotation)
	return pose.Position.Add(Vec2{sin, -cos}.Scale(d))
}

// HitTest returns what lies under the scene point p, given the number of
// scene units per screen pixel. Rotation handles of selected shapes win over
// selected shapes, which win over every other shape; within each tier the
// topmost shape wins. Invisible shapes are never hit.
func (r *Renderer) HitTest(p Vec2, pixelScale float64) (Hit, bool) {
	if pixelScale <= 0 {
		pixelScale = 1
	}
	rad := r.cfg.HandleRadius * pixelScale
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		if !r.handles[id] {
			continue
		}
		rec := r.records[id]
		pose := r.displayPose(id, rec)
		h := handlePosition(rec.entity.Properties.Shape, pose, r.cfg.HandleDistance, pixelScale)
		d := p.Sub(h)
		if d.X*d.X+d.Y*d.Y <= rad*rad {
			return Hit{Kind: HitRotationHandle, EntityID: id, Pivot: pose.Position}, true
		}
	}
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		if !r.selected[id] {
			continue
		}
		rec := r.records[id]
		if poseContains(rec.entity.Properties.Shape, r.displayPose(id, rec), p) {
			return Hit{Kind: HitEntity, EntityID: id}, true
		}
	}
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		rec := r.records[id]
		if poseContains(rec.entity.Properties.Shape, r.displayPose(id, rec), p) {
			return Hit{Kind: HitEntity, EntityID: id}, true
		}
	}
	return Hit{}, false
}
