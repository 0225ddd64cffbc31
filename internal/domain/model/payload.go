// Package model contains domain models passed between layers.
package model

// Direction labels a sight correction axis in screen space.
type Direction string

// Correction directions. Screen space: +x right, +y down.
const (
	DirLeft  Direction = "LEFT"
	DirRight Direction = "RIGHT"
	DirUp    Direction = "UP"
	DirDown  Direction = "DOWN"
)

// Point2D is a point normalized to the unit square of the target image.
// Origin top-left, +x right, +y down.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Correction reports a sight adjustment for one axis. Clicks is always
// non-negative; direction and magnitude are reported separately so
// consumers cannot misinterpret sign. Clicks carries full precision;
// display formatting is two decimal places.
type Correction struct {
	Clicks float64   `json:"clicks"`
	Dir    Direction `json:"dir"`
}

// TargetRef identifies the physical target template used for a run.
// The key selects the template's real-world scale.
type TargetRef struct {
	Key string `json:"key"`
}

// Dial describes the sight's angular value per adjustment click.
type Dial struct {
	Unit       string  `json:"unit"`
	ClickValue float64 `json:"clickValue"`
}

// DebugTrace retains the raw geometry of a run for visualization and
// export. It is not consulted again once the score is computed.
type DebugTrace struct {
	Aim    Point2D   `json:"aim"`
	Hits   []Point2D `json:"hits"`
	AvgPOI Point2D   `json:"avgPoi"`
}

// SECPayload is the central record produced by one scoring run. It is a
// value type: copied through encode/decode and never mutated after
// creation.
type SECPayload struct {
	SessionID string     `json:"sessionId"`
	Score     int        `json:"score"`
	Shots     int        `json:"shots"`
	Windage   Correction `json:"windage"`
	Elevation Correction `json:"elevation"`
	Target    TargetRef  `json:"target"`
	Dial      Dial       `json:"dial"`
	VendorURL string     `json:"vendorUrl,omitempty"`
	Debug     DebugTrace `json:"debug"`
	SKU       string     `json:"sku,omitempty"`
}

// SessionRecord is one entry of the append-only session log. Created
// once per completed scoring run and never mutated; removed only when
// the whole log is cleared.
type SessionRecord struct {
	Score     int    `json:"score"`
	TS        int64  `json:"ts"` // epoch millis
	Label     string `json:"label"`
	TargetKey string `json:"targetKey"`
	Dial      Dial   `json:"dial"`
	Shots     int    `json:"shots"`
}
