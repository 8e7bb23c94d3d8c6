// Package compositor pastes the packshot centrally onto the generated
// background. Pure image math, no I/O.
package compositor

import (
	"image"

	"github.com/disintegration/imaging"
)

// packshotWidthRatio is the fraction of the background width the packshot
// occupies after resizing.
const packshotWidthRatio = 0.45

// Layout is the placement geometry, recomputed per request.
type Layout struct {
	Width  int
	Height int
	PasteX int
	PasteY int
}

// ComputeLayout derives the packshot placement from the two rasters'
// dimensions: 45% of the background width, aspect preserved, centred.
func ComputeLayout(background, packshot image.Image) Layout {
	bgW := background.Bounds().Dx()
	bgH := background.Bounds().Dy()
	psW := packshot.Bounds().Dx()
	psH := packshot.Bounds().Dy()

	newW := int(float64(bgW) * packshotWidthRatio)
	newH := 0
	if psW > 0 {
		newH = int(float64(newW) * float64(psH) / float64(psW))
	}

	return Layout{
		Width:  newW,
		Height: newH,
		PasteX: (bgW - newW) / 2,
		PasteY: (bgH - newH) / 2,
	}
}

// Composite resizes the packshot per ComputeLayout with Lanczos resampling
// and blends it onto a copy of the background using the packshot's own
// alpha channel. Cheaper filters alias visibly on product edges.
// A degenerate zero-sized layout is a no-op, not an error.
func Composite(background image.Image, packshot *image.NRGBA) *image.NRGBA {
	layout := ComputeLayout(background, packshot)
	if layout.Width <= 0 || layout.Height <= 0 {
		return imaging.Clone(background)
	}

	resized := imaging.Resize(packshot, layout.Width, layout.Height, imaging.Lanczos)
	return imaging.Overlay(background, resized, image.Pt(layout.PasteX, layout.PasteY), 1.0)
}
