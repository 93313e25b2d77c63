package raidplan

import (
	"time"

	"github.com/tanema/gween"
)

// DefaultTransitionDuration is how long a shape takes to travel between the
// poses of two steps.
const DefaultTransitionDuration = 300 * time.Millisecond

// smoothstep eases t over d as t²(3-2t). It satisfies ease.TweenFunc.
func smoothstep(t, b, c, d float32) float32 {
	if d <= 0 {
		return b + c
	}
	x := t / d
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	return b + c*x*x*(3-2*x)
}

// transitionProgress returns the eased progress in [0, 1] of a transition
// that started at start and lasts dur.
func transitionProgress(start, now time.Time, dur time.Duration) (float64, bool) {
	if dur <= 0 {
		return 1, true
	}
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	tw := gween.New(0, 1, float32(dur.Seconds()), smoothstep)
	v, done := tw.Set(float32(elapsed.Seconds()))
	p := float64(v)
	if p < 0 {
		p = 0
	} else if p > 1 || done {
		p = 1
	}
	return p, p >= 1
}

// Pose is the resolved placement of a shape: position, rotation and the
// scene-space box enclosing the rotated shape.
type Pose struct {
	Position Vec2
	Rotation float64
	Bounds   Rect
}

// lerp interpolates position and rotation of p toward o by t. Bounds are
// left for withBounds.
func (p Pose) lerp(o Pose, t float64) Pose {
	return Pose{
		Position: p.Position.Lerp(o.Position, t),
		Rotation: p.Rotation + (o.Rotation-p.Rotation)*t,
	}
}

// offset returns p moved by d and turned by rot. With a pivot the position
// also orbits it by rot.
func (p Pose) offset(d Vec2, rot float64, pivot *Vec2) Pose {
	if pivot != nil && rot != 0 {
		p.Position = p.Position.Sub(*pivot).Rotate(rot).Add(*pivot)
	}
	p.Position = p.Position.Add(d)
	p.Rotation += rot
	return p
}

// withBounds sets p.Bounds to the box enclosing shape at p.
func (p Pose) withBounds(shape Shape) Pose {
	w, h := shape.Size()
	p.Bounds = worldAABB(p.Transform(), w, h)
	return p
}

// Transform returns the pose's local-to-scene matrix.
func (p Pose) Transform() [6]float64 {
	return entityTransform(p.Position, p.Rotation)
}

// resolvePose resolves e at stepID.
func resolvePose(e RaidEntity, sceneStepIDs []string, stepID string) Pose {
	p := Pose{
		Position: e.PositionAt(sceneStepIDs, stepID),
		Rotation: e.RotationAt(sceneStepIDs, stepID),
	}
	return p.withBounds(e.Properties.Shape)
}
