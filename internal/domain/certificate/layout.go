package certificate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/okian/seccard/internal/domain/banding"
)

// Fixed canvas geometry. The layout is a compatibility contract: any
// change here changes the rendered artifact pixel-for-pixel.
const (
	canvasW = 1400
	canvasH = 1800

	outerBorderInset  = 34
	outerBorderStroke = 4
	innerBorderInset  = 52
	innerBorderStroke = 2

	marginX       = 90
	titleBaseline = 150

	panelTop     = 220
	panelBottom  = 980
	panelGap     = 40
	panelRadius  = 28
	panelPadding = 30

	scoreNumeralBaseline = 600
	scoreLabelBaseline   = 720
	scoreCaptionBaseline = 800

	statBoxTop    = 1040
	statBoxBottom = 1320
	statBoxGap    = 32
	statBoxRadius = 20

	statLabelOffset = 70
	statValueOffset = 175
	statSubOffset   = 230

	watermarkBaseline = 1520
	footerBaseline    = 1660

	markerOuterRadius  = 16
	markerInnerRadius  = 7
	markerStrokeExtent = 3
)

// Palette. Aim markers are the green family, hit markers amber.
var (
	colorBackground = color.NRGBA{R: 0xFD, G: 0xFB, B: 0xF7, A: 0xFF}
	colorInk        = color.NRGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF}
	colorInkSoft    = color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF}
	colorAccent     = color.NRGBA{R: 0xD9, G: 0x77, B: 0x06, A: 0xFF}
	colorPanel      = color.NRGBA{R: 0xF3, G: 0xF4, B: 0xF6, A: 0xFF}
	colorWatermark  = color.NRGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0x1A}

	colorBandGreen  = color.NRGBA{R: 0x16, G: 0xA3, B: 0x4A, A: 0xFF}
	colorBandYellow = color.NRGBA{R: 0xCA, G: 0x8A, B: 0x04, A: 0xFF}
	colorBandRed    = color.NRGBA{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF}

	colorAimOuter  = color.NRGBA{R: 0x22, G: 0xC5, B: 0x5E, A: 0xFF}
	colorAimInner  = color.NRGBA{R: 0x15, G: 0x80, B: 0x3D, A: 0xFF}
	colorAimStroke = color.NRGBA{R: 0x05, G: 0x2E, B: 0x16, A: 0xFF}

	colorHitOuter  = color.NRGBA{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF}
	colorHitInner  = color.NRGBA{R: 0xB4, G: 0x53, B: 0x09, A: 0xFF}
	colorHitStroke = color.NRGBA{R: 0x45, G: 0x1A, B: 0x03, A: 0xFF}
)

// leftPanelRect is the score panel.
func leftPanelRect() image.Rectangle {
	w := (canvasW - 2*marginX - panelGap) / 2
	return image.Rect(marginX, panelTop, marginX+w, panelBottom)
}

// rightPanelRect is the target thumbnail panel.
func rightPanelRect() image.Rectangle {
	w := (canvasW - 2*marginX - panelGap) / 2
	return image.Rect(canvasW-marginX-w, panelTop, canvasW-marginX, panelBottom)
}

// statBoxRect is the i-th of the three equal-width stat boxes.
func statBoxRect(i int) image.Rectangle {
	w := (canvasW - 2*marginX - 2*statBoxGap) / 3
	x := marginX + i*(w+statBoxGap)
	return image.Rect(x, statBoxTop, x+w, statBoxBottom)
}

// bandColor maps a coarse band tag to its display color.
func bandColor(tag banding.Tag) color.NRGBA {
	switch tag {
	case banding.TagGreen:
		return colorBandGreen
	case banding.TagYellow:
		return colorBandYellow
	default:
		return colorBandRed
	}
}

// fillRect fills r with c.
func fillRect(dst draw.Image, r image.Rectangle, c color.NRGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// strokeRect outlines r with a stroke of the given thickness drawn
// inward from the rectangle edge.
func strokeRect(dst draw.Image, r image.Rectangle, thickness int, c color.NRGBA) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// fillRoundedRect fills r with quarter-circle corners of the given radius.
func fillRoundedRect(dst draw.Image, r image.Rectangle, radius int, c color.NRGBA) {
	if radius <= 0 {
		fillRect(dst, r, c)
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		inset := 0
		if d := cornerDistance(y, r, radius); d > 0 {
			inset = radius - int(math.Sqrt(float64(radius*radius-d*d)))
		}
		fillRect(dst, image.Rect(r.Min.X+inset, y, r.Max.X-inset, y+1), c)
	}
}

// cornerDistance returns the vertical distance of row y into a corner
// arc of the rectangle, or 0 when the row crosses the straight sides.
func cornerDistance(y int, r image.Rectangle, radius int) int {
	switch {
	case y < r.Min.Y+radius:
		return r.Min.Y + radius - y
	case y >= r.Max.Y-radius:
		return y - (r.Max.Y - radius) + 1
	default:
		return 0
	}
}

// fillDisc fills a circle of the given radius centered at p.
func fillDisc(dst draw.Image, p image.Point, radius int, c color.NRGBA) {
	for dy := -radius; dy <= radius; dy++ {
		span := int(math.Sqrt(float64(radius*radius - dy*dy)))
		fillRect(dst, image.Rect(p.X-span, p.Y+dy, p.X+span+1, p.Y+dy+1), c)
	}
}

// drawMarker paints one hit or aim marker: a dark stroke under a filled
// outer ring and a filled inner disc.
func drawMarker(dst draw.Image, p image.Point, outer, inner, stroke color.NRGBA) {
	fillDisc(dst, p, markerOuterRadius+markerStrokeExtent, stroke)
	fillDisc(dst, p, markerOuterRadius, outer)
	fillDisc(dst, p, markerInnerRadius, inner)
}
