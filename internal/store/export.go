package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/forestguardian/forest-guardian/internal/model"
)

// BackupVersion is the current backup envelope version.
const BackupVersion = 1

// Backup is the export format covering both slots.
type Backup struct {
	Version    int                     `json:"version"`
	ExportedAt time.Time               `json:"exportedAt"`
	Records    []model.DetectionRecord `json:"records"`
	Settings   json.RawMessage         `json:"settings,omitempty"`
}

// Export snapshots the history and, when the settings store is loaded, the
// settings.
func Export(ctx context.Context, records *RecordStore, settings *SettingsStore) (*Backup, error) {
	list, err := records.List(ctx)
	if err != nil {
		return nil, err
	}

	b := &Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Records:    list,
	}
	if settings != nil && settings.Loaded() {
		raw, err := json.Marshal(settings.Current())
		if err != nil {
			return nil, fmt.Errorf("encode settings: %w", err)
		}
		b.Settings = raw
	}
	return b, nil
}

// ImportResult summarises an Import.
type ImportResult struct {
	Imported        int  `json:"imported"`
	Skipped         int  `json:"skipped"`
	SettingsApplied bool `json:"settingsApplied"`
}

// Import merges a backup into the stores. Records whose id already exists
// are skipped; the merged history is ordered newest first by date.
// Settings in the backup are decoded over the defaults and replace the
// current settings.
func Import(ctx context.Context, records *RecordStore, settings *SettingsStore, b *Backup) (*ImportResult, error) {
	if b.Version > BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %d", b.Version)
	}

	current, err := records.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(current))
	for _, r := range current {
		seen[r.ID] = true
	}

	res := &ImportResult{}
	merged := append([]model.DetectionRecord{}, current...)
	for _, r := range b.Records {
		if r.ID == "" || seen[r.ID] {
			res.Skipped++
			continue
		}
		if err := validateAppend(AppendParams{Label: r.Label, Confidence: r.Confidence, Severity: r.Severity}); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		seen[r.ID] = true
		merged = append(merged, r)
		res.Imported++
	}

	if res.Imported > 0 {
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].Date.After(merged[j].Date)
		})
		if err := records.Replace(ctx, merged); err != nil {
			return nil, err
		}
	}

	if len(b.Settings) > 0 && settings != nil {
		s, err := decodeSettings(string(b.Settings), model.DefaultSettings())
		if err != nil {
			return nil, fmt.Errorf("backup settings: %w", err)
		}
		if _, err := settings.Replace(ctx, s); err != nil {
			return nil, err
		}
		res.SettingsApplied = true
	}

	return res, nil
}
