// Package banding maps session scores to performance bands and captions.
//
// Two independent scales coexist: a coarse three-band scale used for
// color banding and a fine seven-tier scale used for on-screen captions.
// Callers pick whichever fits their context; neither supersedes the other.
package banding

// Tag is the coarse color band of a score.
type Tag string

// Coarse band tags.
const (
	TagGreen  Tag = "green"
	TagYellow Tag = "yellow"
	TagRed    Tag = "red"
)

// Coarse scale thresholds.
const (
	greenFloor  = 90
	yellowFloor = 60
)

// Band couples a color tag with its coarse caption.
type Band struct {
	Tag   Tag    `json:"tag"`
	Label string `json:"label"`
}

// Coarse returns the three-band color banding for a score:
// >=90 green, >=60 yellow, else red.
func Coarse(score int) Band {
	switch {
	case score >= greenFloor:
		return Band{Tag: TagGreen, Label: "Excellent"}
	case score >= yellowFloor:
		return Band{Tag: TagYellow, Label: "Solid"}
	default:
		return Band{Tag: TagRed, Label: "Needs work"}
	}
}

// Fine returns the seven-tier caption for a score.
func Fine(score int) string {
	switch {
	case score >= 97:
		return "Elite"
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Strong"
	case score >= 70:
		return "Solid"
	case score >= 60:
		return "Improving"
	case score >= 50:
		return "Getting there"
	default:
		return "Keep going"
	}
}
