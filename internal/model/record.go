// Package model defines the core detection and settings data types.
package model

import "time"

// Severity grades how serious a detection finding is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ValidSeverities are the allowed severity levels.
var ValidSeverities = map[Severity]bool{
	SeverityLow:    true,
	SeverityMedium: true,
	SeverityHigh:   true,
}

// DetectionRecord represents one saved analysis result.
//
// ImageURI is a weak reference: the image file is owned by the image store
// and may no longer exist.
type DetectionRecord struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Label          string    `json:"label"`
	Confidence     float64   `json:"confidence"`
	Severity       Severity  `json:"severity"`
	ImageURI       string    `json:"imageUri,omitempty"`
	Mode           string    `json:"mode,omitempty"`
	TreeType       string    `json:"treeType,omitempty"`
	Description    string    `json:"description,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
}
