// Package raidplan is the editing and rendering core of a raid-plan
// illustrator: scenes (stages) hold shapes and groups, and a timeline of steps
// lets every position, rotation, visibility and effect property change from
// step to step.
//
// # Data model
//
// [RaidsState] is a normalized graph of four id-keyed maps: raid metadata,
// scenes, steps and entities. Records reference each other only by id.
// Per-step values are [Keyable]: either a constant or an initial value plus
// explicit per-step entries, resolved by scanning the timeline backward from
// the current step.
//
// # Changing state
//
// Every change is a [BatchOperation]. [ApplyBatch] applies one to a snapshot
// and returns the exact inverse; the [Engine] owns the current snapshot.
// An [Editor] turns editing intents into batches and records their inverses
// on per-raid undo stacks kept in [Workspaces]:
//
//	ed := raidplan.NewEditor(raidplan.NewRaidsState(), raidplan.EditorConfig{})
//	raid := ed.CreateRaid("Boss")
//	scene := ed.CreateScene(raid, "Phase 1", raidplan.Rectangle(400, 300))
//	tank, _ := ed.CreateEntity(scene, "", "Tank",
//		raidplan.ShapeProperties(raidplan.Circle(10), raidplan.Vec2{}))
//	ed.MoveEntities(ed.CurrentStep(scene), []string{tank}, raidplan.Vec2{X: 40})
//	ed.Undo(raid)
//
// Actions that name missing ids do nothing. Actions that would break the
// graph's structure return an error wrapping [ErrInvariant].
//
// # Rendering
//
// A [Renderer] keeps one record per visible shape of the open scene, animates
// step changes with a smoothstep ease and emits a display list of
// [RenderCommand] values in scene space. [Renderer.HitTest] resolves a scene
// point to a shape or to the rotation handle of a selected shape. The
// ebitenraster package draws display lists with Ebitengine.
//
// Visual effects attach to shapes as [EffectInstance] values whose properties
// are validated against the [PropertySpec] list of their [EffectFactory].
package raidplan
