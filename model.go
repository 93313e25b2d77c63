package raidplan

import (
	"slices"
	"time"
)

// RaidMetadata is the top-level record of a raid. SceneIDs defines scene
// order.
type RaidMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	SceneIDs  []string  `json:"sceneIds"`
}

// RaidScene is a stage. StepIDs defines timeline order; EntityIDs lists the
// top-level entities in draw order (first is drawn at the bottom).
type RaidScene struct {
	ID        string    `json:"id"`
	RaidID    string    `json:"raidId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Shape     Shape     `json:"shape"`
	Fill      *Material `json:"fill,omitempty"`
	StepIDs   []string  `json:"stepIds"`
	EntityIDs []string  `json:"entityIds"`
}

// RaidStep is a point on a scene's timeline. RenderDuration is only consumed
// by exporters; the timeline logic ignores it.
type RaidStep struct {
	ID             string    `json:"id"`
	RaidID         string    `json:"raidId"`
	SceneID        string    `json:"sceneId"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
	RenderDuration *int      `json:"renderDuration,omitempty"`
}

// EntityType identifies the variant held by EntityProperties. It never
// changes after an entity is created.
type EntityType string

const (
	EntityGroup EntityType = "group"
	EntityShape EntityType = "shape"
)

// EffectInstance attaches a visual effect, produced by the factory registered
// under FactoryID, to a shape entity.
type EffectInstance struct {
	ID         string      `json:"id"`
	FactoryID  string      `json:"factoryId"`
	Properties PropertyBag `json:"properties,omitempty"`
}

// EntityProperties is the tagged union of group and shape data. Only the
// fields for Type are meaningful.
type EntityProperties struct {
	Type EntityType `json:"type"`

	// group
	Children []string `json:"children,omitempty"`

	// shape
	Shape    Shape             `json:"shape,omitzero"`
	Fill     *Material         `json:"fill,omitempty"`
	Rotation *Keyable[float64] `json:"rotation,omitempty"`
	Position Keyable[Vec2]     `json:"position,omitzero"`
	Effects  []EffectInstance  `json:"effects,omitempty"`
}

// GroupProperties returns group properties with the given children.
func GroupProperties(children ...string) EntityProperties {
	return EntityProperties{Type: EntityGroup, Children: children}
}

// ShapeProperties returns shape properties at an unkeyed position.
func ShapeProperties(shape Shape, position Vec2) EntityProperties {
	return EntityProperties{Type: EntityShape, Shape: shape, Position: Unkeyed(position)}
}

// RaidEntity is a placed object in a scene.
type RaidEntity struct {
	ID         string           `json:"id"`
	RaidID     string           `json:"raidId"`
	SceneID    string           `json:"sceneId"`
	Name       string           `json:"name"`
	CreatedAt  time.Time        `json:"createdAt"`
	Visible    *Keyable[bool]   `json:"visible,omitempty"`
	Properties EntityProperties `json:"properties"`
}

// IsGroup reports whether the entity is a group.
func (e RaidEntity) IsGroup() bool { return e.Properties.Type == EntityGroup }

// IsShape reports whether the entity is a shape.
func (e RaidEntity) IsShape() bool { return e.Properties.Type == EntityShape }

// VisibleAt resolves the entity's visibility at stepID. Defaults to true.
func (e RaidEntity) VisibleAt(sceneStepIDs []string, stepID string) bool {
	if e.Visible == nil {
		return true
	}
	return e.Visible.ValueAt(sceneStepIDs, stepID)
}

// RotationAt resolves the entity's rotation at stepID. Defaults to 0.
func (e RaidEntity) RotationAt(sceneStepIDs []string, stepID string) float64 {
	if e.Properties.Rotation == nil {
		return 0
	}
	return e.Properties.Rotation.ValueAt(sceneStepIDs, stepID)
}

// PositionAt resolves the entity's position at stepID.
func (e RaidEntity) PositionAt(sceneStepIDs []string, stepID string) Vec2 {
	return e.Properties.Position.ValueAt(sceneStepIDs, stepID)
}

// clone returns a copy of e whose slices and maps are not shared with e.
// Keyable step maps are treated as immutable and shared.
func (e RaidEntity) clone() RaidEntity {
	e.Properties.Children = slices.Clone(e.Properties.Children)
	if e.Properties.Effects != nil {
		effects := make([]EffectInstance, len(e.Properties.Effects))
		for i, fx := range e.Properties.Effects {
			fx.Properties = fx.Properties.clone()
			effects[i] = fx
		}
		e.Properties.Effects = effects
	}
	return e
}

// RaidsState is the normalized entity graph: four maps keyed by id that
// reference each other only by id. A RaidsState value is a snapshot; the
// engine never mutates a snapshot it has handed out.
type RaidsState struct {
	Metadata map[string]RaidMetadata
	Scenes   map[string]RaidScene
	Steps    map[string]RaidStep
	Entities map[string]RaidEntity
}

// NewRaidsState returns an empty state.
func NewRaidsState() RaidsState {
	return RaidsState{
		Metadata: map[string]RaidMetadata{},
		Scenes:   map[string]RaidScene{},
		Steps:    map[string]RaidStep{},
		Entities: map[string]RaidEntity{},
	}
}

// Raid returns the metadata for id.
func (s RaidsState) Raid(id string) (RaidMetadata, bool) {
	m, ok := s.Metadata[id]
	return m, ok
}

// Scene returns the scene for id.
func (s RaidsState) Scene(id string) (RaidScene, bool) {
	sc, ok := s.Scenes[id]
	return sc, ok
}

// Step returns the step for id.
func (s RaidsState) Step(id string) (RaidStep, bool) {
	st, ok := s.Steps[id]
	return st, ok
}

// Entity returns the entity for id.
func (s RaidsState) Entity(id string) (RaidEntity, bool) {
	e, ok := s.Entities[id]
	return e, ok
}
