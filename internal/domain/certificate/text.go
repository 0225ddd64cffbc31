package certificate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Typography sizes in points at 72 DPI, so one point is one pixel on
// the 1400x1800 canvas.
const (
	fontDPI = 72

	titleSize     = 52
	wordmarkSize  = 64
	numeralSize   = 220
	labelSize     = 48
	captionSize   = 28
	statLabelSize = 26
	statValueSize = 56
	statSubSize   = 30
	footerSize    = 26
	watermarkSize = 110
)

// faceSet holds the rasterized faces used by the layout.
type faceSet struct {
	title     font.Face
	wordmark  font.Face
	numeral   font.Face
	label     font.Face
	caption   font.Face
	statLabel font.Face
	statValue font.Face
	statSub   font.Face
	footer    font.Face
	watermark font.Face
}

var (
	facesOnce sync.Once
	faces     *faceSet
	facesErr  error
)

// loadFaces parses the embedded Go fonts once and builds every face.
func loadFaces() (*faceSet, error) {
	facesOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			facesErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			facesErr = fmt.Errorf("parse bold font: %w", err)
			return
		}

		face := func(f *opentype.Font, size float64) font.Face {
			if facesErr != nil {
				return nil
			}
			fc, err := opentype.NewFace(f, &opentype.FaceOptions{
				Size:    size,
				DPI:     fontDPI,
				Hinting: font.HintingFull,
			})
			if err != nil {
				facesErr = fmt.Errorf("build face (%gpt): %w", size, err)
			}
			return fc
		}

		faces = &faceSet{
			title:     face(bold, titleSize),
			wordmark:  face(bold, wordmarkSize),
			numeral:   face(bold, numeralSize),
			label:     face(bold, labelSize),
			caption:   face(regular, captionSize),
			statLabel: face(bold, statLabelSize),
			statValue: face(bold, statValueSize),
			statSub:   face(regular, statSubSize),
			footer:    face(regular, footerSize),
			watermark: face(bold, watermarkSize),
		}
	})
	if facesErr != nil {
		return nil, facesErr
	}
	return faces, nil
}

// drawText paints s with its baseline origin at (x, y).
func drawText(dst draw.Image, face font.Face, c color.NRGBA, x, y int, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textWidth returns the advance width of s in pixels.
func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
