// Package viewer runs an interactive raid editor window on Ebitengine.
//
// The viewer owns no model state of its own: every gesture ends in an Editor
// action, and every frame is rebuilt from the editor's state and workspaces
// through a raidplan.Renderer.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/raidplan"
	"github.com/phanxgames/raidplan/ebitenraster"
)

// Config configures a Viewer. Zero values select defaults.
type Config struct {
	Title  string
	Width  int
	Height int

	Renderer raidplan.RendererConfig
	// Images resolves image materials. Nil uses files on disk.
	Images *ebitenraster.ImageCache

	// DragDeadZone is the distance in pixels a pointer must travel before a
	// press becomes a drag.
	DragDeadZone float64
	// FitMargin is the margin in pixels kept around the stage on fit.
	FitMargin float64

	// ScreenshotDir receives F12 and scripted screenshots.
	ScreenshotDir string
	// Script, when set, drives the viewer instead of the user.
	Script *Script
	// ExitWhenScriptDone quits once Script has finished.
	ExitWhenScriptDone bool

	// Save persists the raid. Nil disables saving.
	Save func(raidplan.PersistedRaid) error

	Logger *slog.Logger
	// Clock drives animation. Defaults to time.Now.
	Clock func() time.Time
}

// Viewer is an ebiten.Game editing one raid.
type Viewer struct {
	cfg    Config
	ed     *raidplan.Editor
	raidID string

	renderer *raidplan.Renderer
	raster   *ebitenraster.Rasterizer

	view    raidplan.SceneView
	hasView bool
	width   int
	height  int

	pointer pointerState
	inject  []pointerEvent
	script  *Script
	shots   []string
	debug   bool
	status  string

	log *slog.Logger
	now func() time.Time
}

// New returns a viewer for raidID. The first scene is opened when none is.
func New(ed *raidplan.Editor, raidID string, cfg Config) (*Viewer, error) {
	meta, ok := ed.State().Raid(raidID)
	if !ok {
		return nil, fmt.Errorf("viewer: raid %s not found", raidID)
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	if cfg.Title == "" {
		cfg.Title = "raidplan"
	}
	if cfg.DragDeadZone == 0 {
		cfg.DragDeadZone = 4
	}
	if cfg.FitMargin == 0 {
		cfg.FitMargin = 32
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	if cfg.Images == nil {
		cfg.Images = ebitenraster.NewImageCache(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	v := &Viewer{
		cfg:      cfg,
		ed:       ed,
		raidID:   raidID,
		renderer: raidplan.NewRenderer(cfg.Renderer),
		raster:   ebitenraster.NewRasterizer(cfg.Images),
		width:    cfg.Width,
		height:   cfg.Height,
		script:   cfg.Script,
		log:      cfg.Logger,
		now:      cfg.Clock,
	}

	ws := ed.Workspaces().Raid(raidID)
	if _, ok := ed.State().Scene(ws.OpenSceneID); !ok && len(meta.SceneIDs) > 0 {
		ed.OpenScene(raidID, meta.SceneIDs[0])
		v.fit()
	}
	v.refresh(v.now())
	return v, nil
}

// Run opens a window and blocks until it is closed.
func Run(v *Viewer) error {
	ebiten.SetWindowTitle(v.cfg.Title)
	ebiten.SetWindowSize(v.cfg.Width, v.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	var real *pointerEvent
	if v.script == nil {
		v.handleKeys()
		v.handleWheel()
		ev := readPointer()
		real = &ev
	}
	v.tick(v.now(), real)
	if v.script != nil && v.script.Done() && v.cfg.ExitWhenScriptDone && len(v.shots) == 0 {
		return ebiten.Termination
	}
	return nil
}

// tick advances one frame. Injected input takes priority over real input.
func (v *Viewer) tick(now time.Time, real *pointerEvent) {
	if v.script != nil {
		v.script.step(v)
	}
	v.refresh(now)
	if ev, ok := v.popInjected(); ok {
		v.processPointer(ev)
	} else if real != nil {
		v.processPointer(*real)
	}
	v.refresh(now)
}

// refresh rebuilds the view from the editor and feeds the renderer.
func (v *Viewer) refresh(now time.Time) {
	view, ok := v.ed.View(v.raidID)
	v.hasView = ok
	if !ok {
		return
	}
	view.Viewport = raidplan.Rect{Width: float64(v.width), Height: float64(v.height)}
	view.Drag = v.pointer.drag
	v.view = view
	v.renderer.Update(v.ed.State(), view, now)
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.hasView {
		v.raster.Draw(screen, v.renderer.Draw(v.now()), v.view)
	}
	if v.debug {
		v.raster.DrawOverlay(screen, v.statusLine())
	}
	for _, label := range v.shots {
		path, err := ebitenraster.SaveScreenshot(screen, v.cfg.ScreenshotDir, label)
		if err != nil {
			v.log.Error("screenshot failed", "label", label, "err", err)
			continue
		}
		v.log.Info("screenshot saved", "path", path)
	}
	v.shots = v.shots[:0]
}

// Layout implements ebiten.Game. The scene is drawn at window resolution.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width, v.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Screenshot queues a capture of the next drawn frame.
func (v *Viewer) Screenshot(label string) {
	v.shots = append(v.shots, label)
}

// View returns the view used for the last frame.
func (v *Viewer) View() (raidplan.SceneView, bool) { return v.view, v.hasView }

func (v *Viewer) statusLine() string {
	step := 0
	if sc, ok := v.ed.State().Scene(v.view.SceneID); ok {
		for i, id := range sc.StepIDs {
			if id == v.view.StepID {
				step = i + 1
			}
		}
	}
	line := fmt.Sprintf("step %d  selected %d  zoom %.2f", step, len(v.view.Selection), v.view.Zoom)
	if v.status != "" {
		line += "\n" + v.status
	}
	return line
}
