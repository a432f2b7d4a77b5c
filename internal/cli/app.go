package cli

import (
	"time"

	"github.com/forestguardian/forest-guardian/internal/analysis"
	"github.com/forestguardian/forest-guardian/internal/config"
	"github.com/forestguardian/forest-guardian/internal/files"
	"github.com/forestguardian/forest-guardian/internal/kv"
	"github.com/forestguardian/forest-guardian/internal/store"
)

// app is the composition root of one command invocation: it owns the
// backend and every store built on it.
type app struct {
	backend  kv.Store
	sqlite   *kv.SQLiteStore
	records  *store.RecordStore
	settings *store.SettingsStore
	images   *files.ImageStore
	analyzer analysis.Analyzer
	loc      *time.Location
}

func (o *options) openApp() (*app, error) {
	a := &app{
		images:   files.NewOSImageStore(o.cfg.ImagesDir),
		analyzer: &analysis.MockAnalyzer{Delay: o.cfg.AnalysisDelay},
	}

	if o.cfg.DBPath == config.MemoryDB {
		a.backend = kv.NewMemoryStore()
	} else {
		s, err := kv.NewSQLiteStore(o.cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.backend = s
		a.sqlite = s
	}

	a.records = store.NewRecordStore(a.backend, o.log)
	a.settings = store.NewSettingsStore(a.backend, o.log)

	loc, err := o.cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.loc = loc
	return a, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}
