// Package format renders records and sizes for human-readable output.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/forestguardian/forest-guardian/internal/model"
)

// DateLayout is the day-first layout used in history listings.
const DateLayout = "02. 01. 2006 • 15:04"

// Date formats t in loc, e.g. "12. 05. 2025 • 14:30". A zero time yields "".
func Date(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// Confidence renders a 0..1 score as a rounded percentage, e.g. "94%".
func Confidence(c float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(c*100)))
}

// Bytes renders a size in SI units, e.g. "2.3 MB".
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Ago renders how long ago t was, e.g. "3 hours ago".
func Ago(t time.Time) string {
	return humanize.Time(t)
}

// SeverityLabel returns the display label for a severity.
func SeverityLabel(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "HIGH"
	case model.SeverityMedium:
		return "MEDIUM"
	case model.SeverityLow:
		return "low"
	}
	return string(s)
}

// Record renders a one-line summary of a record.
func Record(r model.DetectionRecord, loc *time.Location) string {
	line := fmt.Sprintf("%s  %-6s %4s  %s", Date(r.Date, loc), SeverityLabel(r.Severity), Confidence(r.Confidence), r.Label)
	if r.TreeType != "" {
		line += " [" + r.TreeType + "]"
	}
	return r.ID + "  " + line
}
