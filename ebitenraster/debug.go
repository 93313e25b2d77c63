package ebitenraster

import (
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Stats holds per-frame metrics of one Draw call.
type Stats struct {
	Commands      int
	DrawCalls     int
	PendingImages int
	Elapsed       time.Duration
}

// debugLog prints the last frame's stats to stderr.
func (r *Rasterizer) debugLog() {
	if !r.Debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[raidplan] commands: %d | draw calls: %d | pending images: %d | raster: %v\n",
		r.stats.Commands, r.stats.DrawCalls, r.stats.PendingImages, r.stats.Elapsed)
}

// DrawOverlay prints FPS, TPS and the last frame's stats in the top-left
// corner of dst.
func (r *Rasterizer) DrawOverlay(dst *ebiten.Image, extra string) {
	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\ncommands: %d  draws: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(), r.stats.Commands, r.stats.DrawCalls)
	if extra != "" {
		msg += "\n" + extra
	}
	ebitenutil.DebugPrint(dst, msg)
}
