// Package analysis runs image classification for bark beetle damage.
//
// Only a mock analyzer exists: it returns fixed findings after a delay.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/forestguardian/forest-guardian/internal/model"
	"github.com/forestguardian/forest-guardian/internal/store"
)

// Mode selects the kind of model run on an image.
type Mode string

const (
	// ModeObject looks for beetles and returns a bounding box.
	ModeObject Mode = "object_detection"
	// ModeSegmentation looks for gallery patterns and returns a mask.
	ModeSegmentation Mode = "segmentation"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeObject, ModeSegmentation:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q (valid: %s, %s)", s, ModeObject, ModeSegmentation)
}

// TreeType is a supported tree species.
type TreeType struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	DefaultMode Mode   `json:"defaultMode"`
}

// TreeTypes lists the supported species; "unknown" is the fallback.
var TreeTypes = []TreeType{
	{ID: "spruce", Label: "Smrk ztepilý (Picea abies)", DefaultMode: ModeObject},
	{ID: "pine", Label: "Borovice lesní (Pinus sylvestris)", DefaultMode: ModeSegmentation},
	{ID: "oak", Label: "Dub (Quercus)", DefaultMode: ModeObject},
	{ID: "unknown", Label: "Neznámý druh / Automaticky", DefaultMode: ModeObject},
}

// LookupTreeType returns the tree type with the given id.
func LookupTreeType(id string) (TreeType, bool) {
	for _, t := range TreeTypes {
		if t.ID == id {
			return t, true
		}
	}
	return TreeType{}, false
}

// Box is a detection bounding box in image pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Result is the outcome of analysing one image.
type Result struct {
	Type           string         `json:"type"`
	Label          string         `json:"label"`
	Confidence     float64        `json:"confidence"`
	Severity       model.Severity `json:"severity"`
	Recommendation string         `json:"recommendation"`
	Box            *Box           `json:"box,omitempty"`
	Mask           string         `json:"mask,omitempty"`
	Mode           Mode           `json:"mode"`
	TreeType       string         `json:"treeType"`
}

// ToAppend converts the result into the fields of a history record.
func (r *Result) ToAppend(imageURI string) store.AppendParams {
	return store.AppendParams{
		Label:          r.Label,
		Confidence:     r.Confidence,
		Severity:       r.Severity,
		ImageURI:       imageURI,
		Mode:           string(r.Mode),
		TreeType:       r.TreeType,
		Recommendation: r.Recommendation,
	}
}

// Analyzer classifies an image.
type Analyzer interface {
	Analyze(ctx context.Context, imagePath string, mode Mode, treeType string) (*Result, error)
}

// DefaultDelay is how long the mock analyzer pretends to think.
const DefaultDelay = 2500 * time.Millisecond

// MockAnalyzer returns canned results after Delay.
type MockAnalyzer struct {
	Delay time.Duration
}

var _ Analyzer = (*MockAnalyzer)(nil)

func (m *MockAnalyzer) Analyze(ctx context.Context, imagePath string, mode Mode, treeType string) (*Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if _, ok := LookupTreeType(treeType); !ok {
		return nil, fmt.Errorf("unknown tree type %q", treeType)
	}

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	if mode == ModeObject {
		return &Result{
			Type:           "detection",
			Label:          "Lýkožrout smrkový",
			Confidence:     0.94,
			Severity:       model.SeverityHigh,
			Recommendation: "Okamžitá asanace napadeného stromu.",
			Box:            &Box{X: 50, Y: 100, W: 200, H: 200},
			Mode:           mode,
			TreeType:       treeType,
		}, nil
	}
	return &Result{
		Type:           "segmentation",
		Label:          "Požerky (Matečné chodby)",
		Confidence:     0.88,
		Severity:       model.SeverityMedium,
		Recommendation: "Sledovat vývoj, zkontrolovat výletové otvory.",
		Mask:           "base64_string_of_mask...",
		Mode:           mode,
		TreeType:       treeType,
	}, nil
}
