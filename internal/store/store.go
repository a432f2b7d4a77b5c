// Package store provides the detection history and settings stores on top
// of a key-value backend.
//
// Each store owns exactly one slot and persists it wholesale: every
// mutation reads the full value, changes it in memory and writes the full
// value back. Mutations issued concurrently against the same store can
// therefore lose updates; callers serialize them.
package store

import (
	"context"

	"github.com/forestguardian/forest-guardian/internal/model"
)

// Slot keys. Each store is the only writer of its key.
const (
	RecordsKey  = "@forest_guardian_history"
	SettingsKey = "@forest_guardian_settings"
)

// AppendParams holds the fields of a new detection record. ID and Date are
// generated by the store.
type AppendParams struct {
	Label          string
	Confidence     float64
	Severity       model.Severity
	ImageURI       string
	Mode           string
	TreeType       string
	Description    string
	Recommendation string
}

// Records defines the detection history interface.
type Records interface {
	// List returns every record, newest first. A slot that was never
	// written yields an empty slice.
	List(ctx context.Context) ([]model.DetectionRecord, error)

	// Append stores a new record in front of the existing ones and
	// returns it with its generated fields.
	Append(ctx context.Context, p AppendParams) (*model.DetectionRecord, error)

	// Remove deletes the record with the given id. Unknown ids are a no-op.
	Remove(ctx context.Context, id string) error

	// Clear drops the whole history.
	Clear(ctx context.Context) error
}

// Settings defines the settings store interface.
type Settings interface {
	// Load reads the persisted settings merged over the defaults.
	Load(ctx context.Context) (model.AppSettings, error)

	// Update merges the patch into the loaded settings and persists them.
	Update(ctx context.Context, p model.SettingsPatch) (model.AppSettings, error)

	// Reset restores the defaults and removes the persisted copy.
	Reset(ctx context.Context) (model.AppSettings, error)
}
