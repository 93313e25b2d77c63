package ebitenraster

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/raidplan"
)

// blendDifference inverts the destination under a white source, which keeps
// selection outlines visible on any fill.
var blendDifference = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOneMinusDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// ebitenBlend returns the ebiten.Blend value corresponding to b.
func ebitenBlend(b raidplan.BlendMode) ebiten.Blend {
	switch b {
	case raidplan.BlendDifference:
		return blendDifference
	default:
		return ebiten.BlendSourceOver
	}
}
