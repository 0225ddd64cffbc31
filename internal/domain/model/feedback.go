package model

import "time"

// FeedbackRecord is the outgoing survey record shape. Its fields are
// derived entirely from a SECPayload; transmission belongs to the survey
// collaborator, not to this core.
type FeedbackRecord struct {
	Type        string         `json:"type"`
	TS          string         `json:"ts"` // ISO-8601
	SessionID   string         `json:"sessionId"`
	Printer     string         `json:"printer"`
	VendorURL   string         `json:"vendorUrl,omitempty"`
	SKU         string         `json:"sku,omitempty"`
	Score       int            `json:"score"`
	Shots       int            `json:"shots"`
	DistanceYds float64        `json:"distanceYds"`
	DialUnit    string         `json:"dialUnit"`
	DialClick   float64        `json:"dialClick"`
	WindDir     Direction      `json:"windDir"`
	WindClicks  float64        `json:"windClicks"`
	ElevDir     Direction      `json:"elevDir"`
	ElevClicks  float64        `json:"elevClicks"`
	TargetKey   string         `json:"targetKey"`
	Answers     map[string]any `json:"answers,omitempty"`
}

// NewFeedbackRecord flattens a payload into the outgoing survey shape.
func NewFeedbackRecord(p SECPayload, printer string, distanceYds float64, ts time.Time, answers map[string]any) FeedbackRecord {
	return FeedbackRecord{
		Type:        "sec-feedback",
		TS:          ts.UTC().Format(time.RFC3339),
		SessionID:   p.SessionID,
		Printer:     printer,
		VendorURL:   p.VendorURL,
		SKU:         p.SKU,
		Score:       p.Score,
		Shots:       p.Shots,
		DistanceYds: distanceYds,
		DialUnit:    p.Dial.Unit,
		DialClick:   p.Dial.ClickValue,
		WindDir:     p.Windage.Dir,
		WindClicks:  p.Windage.Clicks,
		ElevDir:     p.Elevation.Dir,
		ElevClicks:  p.Elevation.Clicks,
		TargetKey:   p.Target.Key,
		Answers:     answers,
	}
}
