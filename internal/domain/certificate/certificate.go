// Package certificate composes the exportable SEC certificate: a
// fixed-layout raster image built from a payload and the original
// target photo.
package certificate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/okian/seccard/internal/domain/banding"
	"github.com/okian/seccard/internal/domain/model"
)

// Default composer configuration constants.
const (
	defaultVendorName = "RangeWorks Printing"
	defaultTitle      = "Shooter Experience Card"
	defaultCaption    = "Verified range session"
	defaultWatermark  = "SECCARD"

	// emDash is the footer placeholder when no vendor is resolvable.
	emDash = "—"
)

// Artifact is a fully composed certificate: PNG bytes plus the suggested
// download filename.
type Artifact struct {
	PNG      []byte
	Filename string
}

// Composer renders certificates. Safe for concurrent use.
type Composer struct {
	vendorName string
	title      string
	caption    string
	watermark  string
	now        func() time.Time
}

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithVendorName sets the printer name shown when the payload carries a
// well-formed vendor URL.
func WithVendorName(name string) Option {
	return func(c *Composer) {
		if name != "" {
			c.vendorName = name
		}
	}
}

// WithWatermark sets the faint centered watermark string.
func WithWatermark(s string) Option {
	return func(c *Composer) {
		if s != "" {
			c.watermark = s
		}
	}
}

// WithNow overrides the clock used for the artifact filename. Test hook.
func WithNow(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// NewComposer creates a composer with configuration options.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		vendorName: defaultVendorName,
		title:      defaultTitle,
		caption:    defaultCaption,
		watermark:  defaultWatermark,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compose renders the certificate for p over the raw target image bytes.
// Composition is all-or-nothing: a missing or undecodable target image
// yields ErrMissingTargetImage and no partial artifact.
func (c *Composer) Compose(_ context.Context, p model.SECPayload, targetImage []byte) (Artifact, error) {
	if len(targetImage) == 0 {
		return Artifact{}, ErrMissingTargetImage
	}
	src, err := imaging.Decode(bytes.NewReader(targetImage))
	if err != nil {
		return Artifact{}, ErrMissingTargetImage
	}

	faces, err := loadFaces()
	if err != nil {
		return Artifact{}, fmt.Errorf("load fonts: %w", err)
	}

	canvas := imaging.New(canvasW, canvasH, colorBackground)
	c.drawChrome(canvas, faces)
	c.drawScorePanel(canvas, faces, p)
	c.drawTargetPanel(canvas, faces, src, p)
	c.drawStatBoxes(canvas, faces, p)
	c.drawFooter(canvas, faces, p)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return Artifact{}, fmt.Errorf("encode certificate: %w", err)
	}

	ts := c.now()
	return Artifact{
		PNG:      buf.Bytes(),
		Filename: Filename(p.Score, ts),
	}, nil
}

// Filename is the suggested artifact name: SEC_{score:03d}_{epochMillis}.png.
func Filename(score int, ts time.Time) string {
	return fmt.Sprintf("SEC_%03d_%d.png", score, ts.UnixMilli())
}

// drawChrome paints the decorative borders, title and wordmark.
func (c *Composer) drawChrome(canvas draw.Image, faces *faceSet) {
	bounds := canvas.Bounds()
	strokeRect(canvas, bounds.Inset(outerBorderInset), outerBorderStroke, colorInk)
	strokeRect(canvas, bounds.Inset(innerBorderInset), innerBorderStroke, colorInkSoft)

	drawText(canvas, faces.title, colorInk, marginX, titleBaseline, c.title)

	// Three-letter colored wordmark, right-aligned.
	wm := "SEC"
	w := textWidth(faces.wordmark, wm)
	drawText(canvas, faces.wordmark, colorAccent, canvasW-marginX-w, titleBaseline, wm)
}

// drawScorePanel paints the left rounded panel: numeral, label, caption.
func (c *Composer) drawScorePanel(canvas draw.Image, faces *faceSet, p model.SECPayload) {
	fillRoundedRect(canvas, leftPanelRect(), panelRadius, colorPanel)

	band := banding.Coarse(p.Score)
	numeral := fmt.Sprintf("%d", p.Score)
	nw := textWidth(faces.numeral, numeral)
	cx := leftPanelRect().Min.X + leftPanelRect().Dx()/2
	drawText(canvas, faces.numeral, bandColor(band.Tag), cx-nw/2, scoreNumeralBaseline, numeral)

	label := banding.Fine(p.Score)
	lw := textWidth(faces.label, label)
	drawText(canvas, faces.label, colorInk, cx-lw/2, scoreLabelBaseline, label)

	capW := textWidth(faces.caption, c.caption)
	drawText(canvas, faces.caption, colorInkSoft, cx-capW/2, scoreCaptionBaseline, c.caption)
}

// drawTargetPanel paints the right rounded panel with the contain-fit
// thumbnail of the target photo and the aim/hit markers.
func (c *Composer) drawTargetPanel(canvas draw.Image, faces *faceSet, src image.Image, p model.SECPayload) {
	fillRoundedRect(canvas, rightPanelRect(), panelRadius, colorPanel)

	box := rightPanelRect().Inset(panelPadding)
	thumb := imaging.Fit(src, box.Dx(), box.Dy(), imaging.Lanczos)

	// Center the thumbnail inside the panel interior.
	tw, th := thumb.Bounds().Dx(), thumb.Bounds().Dy()
	origin := image.Pt(
		box.Min.X+(box.Dx()-tw)/2,
		box.Min.Y+(box.Dy()-th)/2,
	)
	draw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tw, th))}, thumb, image.Point{}, draw.Over)

	// Markers use the thumbnail's own scale and offset so normalized
	// coordinates land on the drawn pixels.
	toThumb := func(pt model.Point2D) image.Point {
		return image.Pt(
			origin.X+int(pt.X*float64(tw)),
			origin.Y+int(pt.Y*float64(th)),
		)
	}

	hits := p.Debug.Hits
	if len(hits) == 0 {
		hits = []model.Point2D{p.Debug.AvgPOI}
	}
	for _, h := range hits {
		drawMarker(canvas, toThumb(h), colorHitOuter, colorHitInner, colorHitStroke)
	}
	drawMarker(canvas, toThumb(p.Debug.Aim), colorAimOuter, colorAimInner, colorAimStroke)
}

// drawStatBoxes paints the three equal-width stat boxes.
func (c *Composer) drawStatBoxes(canvas draw.Image, faces *faceSet, p model.SECPayload) {
	stats := []struct {
		label string
		value string
		sub   string
	}{
		{label: "HITS", value: fmt.Sprintf("%d", p.Shots)},
		{label: "WINDAGE", value: fmt.Sprintf("%.2f", p.Windage.Clicks), sub: string(p.Windage.Dir)},
		{label: "ELEVATION", value: fmt.Sprintf("%.2f", p.Elevation.Clicks), sub: string(p.Elevation.Dir)},
	}

	for i, st := range stats {
		box := statBoxRect(i)
		fillRoundedRect(canvas, box, statBoxRadius, colorPanel)
		cx := box.Min.X + box.Dx()/2

		lw := textWidth(faces.statLabel, st.label)
		drawText(canvas, faces.statLabel, colorInkSoft, cx-lw/2, box.Min.Y+statLabelOffset, st.label)

		vw := textWidth(faces.statValue, st.value)
		drawText(canvas, faces.statValue, colorInk, cx-vw/2, box.Min.Y+statValueOffset, st.value)

		if st.sub != "" {
			sw := textWidth(faces.statSub, st.sub)
			drawText(canvas, faces.statSub, colorAccent, cx-sw/2, box.Min.Y+statSubOffset, st.sub)
		}
	}
}

// drawFooter paints the vendor line, session id and watermark.
func (c *Composer) drawFooter(canvas draw.Image, faces *faceSet, p model.SECPayload) {
	wm := c.watermark
	ww := textWidth(faces.watermark, wm)
	drawText(canvas, faces.watermark, colorWatermark, (canvasW-ww)/2, watermarkBaseline, wm)

	vendor := ResolveVendor(p.VendorURL, c.vendorName)
	drawText(canvas, faces.footer, colorInkSoft, marginX, footerBaseline, "Printed by "+vendor)

	session := "Session " + p.SessionID
	sw := textWidth(faces.footer, session)
	drawText(canvas, faces.footer, colorInkSoft, canvasW-marginX-sw, footerBaseline, session)
}

// ResolveVendor maps a payload vendor URL to the printed vendor name.
// An http-prefixed, well-formed URL flags the known print vendor; any
// other value falls back to the em-dash placeholder.
func ResolveVendor(vendorURL, vendorName string) string {
	if !strings.HasPrefix(strings.ToLower(vendorURL), "http") {
		return emDash
	}
	u, err := url.Parse(vendorURL)
	if err != nil || u.Host == "" {
		return emDash
	}
	return vendorName
}
