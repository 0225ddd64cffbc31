// Package geometry computes point-of-impact bias and sight corrections
// from confirmed hits on a printed target.
package geometry

import (
	"context"
	"math"

	"github.com/okian/seccard/internal/domain/model"
)

// Default calculator configuration constants.
const (
	// DefaultDistanceYds is the sighting distance assumed when none is configured.
	DefaultDistanceYds = 100.0
	// DefaultMOAPerClick is the angular value of one dial click.
	DefaultMOAPerClick = 0.25
	// DefaultTargetWidthInches is the real-world width of the default target template.
	DefaultTargetWidthInches = 4.0

	// inchesPerMOAAtReference is the linear size in inches subtended by one
	// angular minute at the reference distance. First-order small-angle
	// approximation; adequate for sighting distances.
	inchesPerMOAAtReference = 1.047
	referenceDistanceYds    = 100.0

	maxScore    = 100
	scoreRadius = 0.5 // normalized distance at which a hit scores zero
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithDistance sets the sighting distance in yards.
func WithDistance(yds float64) Option {
	return func(c *Calculator) {
		if yds > 0 {
			c.distanceYds = yds
		}
	}
}

// WithMOAPerClick sets the angular value of one dial click.
func WithMOAPerClick(moa float64) Option {
	return func(c *Calculator) {
		if moa > 0 {
			c.moaPerClick = moa
		}
	}
}

// WithTargetWidths sets the real-world widths, in inches, of known target
// templates keyed by template key.
func WithTargetWidths(widths map[string]float64) Option {
	return func(c *Calculator) {
		c.targetWidths = make(map[string]float64)
		for key, w := range widths {
			if w > 0 {
				c.targetWidths[key] = w
			}
		}
	}
}

// WithDefaultTargetWidth sets the width used for unknown template keys.
func WithDefaultTargetWidth(inches float64) Option {
	return func(c *Calculator) {
		if inches > 0 {
			c.defaultWidth = inches
		}
	}
}

// Input carries the aim point and confirmed hits of one scoring run.
type Input struct {
	Anchor    model.Point2D
	Hits      []model.Point2D
	TargetKey string
}

// Result is the computed outcome of one scoring run.
type Result struct {
	Score     int
	POIB      model.Point2D // mean of hit coordinates
	Offset    model.Point2D // anchor - POIB, normalized units
	Windage   model.Correction
	Elevation model.Correction
}

// Evaluator computes a scoring result from hits and an aim point.
type Evaluator interface {
	Evaluate(ctx context.Context, in Input) (Result, error)
}

// Calculator implements Evaluator. It is pure and safe for concurrent use.
type Calculator struct {
	distanceYds  float64
	moaPerClick  float64
	targetWidths map[string]float64
	defaultWidth float64
}

// NewCalculator creates a calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		distanceYds:  DefaultDistanceYds,
		moaPerClick:  DefaultMOAPerClick,
		targetWidths: make(map[string]float64),
		defaultWidth: DefaultTargetWidthInches,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// DistanceYds returns the configured sighting distance.
func (c *Calculator) DistanceYds() float64 { return c.distanceYds }

// MOAPerClick returns the configured dial click value.
func (c *Calculator) MOAPerClick() float64 { return c.moaPerClick }

// Evaluate computes POIB, score and per-axis corrections. It never errors
// for well-formed input; a single hit placed exactly at the anchor yields
// a degenerate zero-offset result.
func (c *Calculator) Evaluate(_ context.Context, in Input) (Result, error) {
	if len(in.Hits) == 0 {
		return Result{}, ErrNoHits
	}

	poib := mean(in.Hits)
	offset := model.Point2D{X: in.Anchor.X - poib.X, Y: in.Anchor.Y - poib.Y}

	width := c.targetWidth(in.TargetKey)
	inchesPerMOA := inchesPerMOAAtReference * c.distanceYds / referenceDistanceYds

	return Result{
		Score:     c.score(in.Anchor, in.Hits),
		POIB:      poib,
		Offset:    offset,
		Windage:   c.correction(offset.X, width, inchesPerMOA, model.DirRight, model.DirLeft),
		Elevation: c.correction(offset.Y, width, inchesPerMOA, model.DirDown, model.DirUp),
	}, nil
}

// correction converts one normalized offset component into a click count
// and direction. The zero offset deliberately lands on the non-negative
// branch (RIGHT / DOWN).
func (c *Calculator) correction(delta, widthInches, inchesPerMOA float64, nonNeg, neg model.Direction) model.Correction {
	dir := nonNeg
	if delta < 0 {
		dir = neg
	}
	offsetInches := math.Abs(delta) * widthInches
	clicks := offsetInches / inchesPerMOA / c.moaPerClick
	return model.Correction{Clicks: clicks, Dir: dir}
}

// score averages per-hit radial scores: 100 at the anchor, falling
// linearly to 0 at scoreRadius normalized units away.
func (c *Calculator) score(anchor model.Point2D, hits []model.Point2D) int {
	var total float64
	for _, h := range hits {
		dist := math.Hypot(h.X-anchor.X, h.Y-anchor.Y)
		total += maxScore * (1 - math.Min(dist/scoreRadius, 1))
	}
	s := int(math.Round(total / float64(len(hits))))
	if s < 0 {
		s = 0
	}
	if s > maxScore {
		s = maxScore
	}
	return s
}

func (c *Calculator) targetWidth(key string) float64 {
	if w, ok := c.targetWidths[key]; ok {
		return w
	}
	return c.defaultWidth
}

func mean(pts []model.Point2D) model.Point2D {
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return model.Point2D{X: sx / n, Y: sy / n}
}

// Round2 rounds a click value to two decimal places for display. The
// underlying value keeps full precision for downstream recomputation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
