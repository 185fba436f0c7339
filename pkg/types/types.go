package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Uncategorized is the category reported for assets whose properties
// carry no usable category value.
const Uncategorized string = "Uncategorized"

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection with a non-nil
// feature slice, so it marshals as {"type":"FeatureCollection","features":[]}.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
}

type Feature struct {
	ID         any            `json:"id,omitempty"`
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry keeps coordinates as raw JSON so that points ([lon, lat])
// and polygon rings round-trip without loss of nesting or precision.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Category returns the feature's category property. Absent or blank
// values map to Uncategorized.
func (f Feature) Category() string {
	if c, ok := f.Properties["category"].(string); ok && strings.TrimSpace(c) != "" {
		return c
	}
	return Uncategorized
}

func (f Feature) Name() string {
	n, _ := f.Properties["name"].(string)
	return n
}

type Feedback struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// CategoryCount is one entry of the category distribution. Count is
// string encoded to match what the map client renders.
type CategoryCount struct {
	Category string `json:"category"`
	Count    string `json:"count"`
}
