package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/forestguardian/forest-guardian/internal/kv"
	"github.com/forestguardian/forest-guardian/internal/model"
)

// SettingsStore implements Settings over a single key-value slot holding a
// JSON object.
//
// The store starts uninitialised; Update is refused until a Load has
// succeeded so that defaults never overwrite settings that were not read
// yet.
type SettingsStore struct {
	kv  kv.Store
	log *zap.Logger

	mu       sync.RWMutex
	current  model.AppSettings
	loaded   bool
	defaults func() model.AppSettings
}

var _ Settings = (*SettingsStore)(nil)

// NewSettingsStore returns an unloaded settings store backed by s.
func NewSettingsStore(s kv.Store, log *zap.Logger) *SettingsStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsStore{
		kv:       s,
		log:      log.Named("settings"),
		current:  model.DefaultSettings(),
		defaults: model.DefaultSettings,
	}
}

// Loaded reports whether a Load has completed successfully.
func (s *SettingsStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Current returns the in-memory settings without touching the backend.
func (s *SettingsStore) Current() model.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsStore) Load(ctx context.Context) (model.AppSettings, error) {
	raw, ok, err := s.kv.Get(ctx, SettingsKey)
	if err != nil {
		s.log.Error("read settings", zap.Error(err))
		return s.Current(), &PersistenceError{Op: OpRead, Key: SettingsKey, Err: err}
	}

	settings := s.defaults()
	if ok {
		merged, err := decodeSettings(raw, settings)
		if err != nil {
			s.log.Warn("settings slot is malformed, using defaults", zap.Error(err))
		} else {
			settings = merged
		}
	}

	s.mu.Lock()
	s.current = settings
	s.loaded = true
	s.mu.Unlock()
	return settings, nil
}

// decodeSettings decodes raw over base. Fields absent from raw keep the
// value they have in base.
func decodeSettings(raw string, base model.AppSettings) (model.AppSettings, error) {
	out := base
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return base, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

func (s *SettingsStore) Update(ctx context.Context, p model.SettingsPatch) (model.AppSettings, error) {
	p, err := normalizePatch(p)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return model.AppSettings{}, ErrNotLoaded
	}
	prev := s.current
	next := prev.Apply(p)
	s.current = next
	s.mu.Unlock()

	if err := s.write(ctx, next); err != nil {
		s.mu.Lock()
		// Only roll back if no other update has replaced our value.
		if s.current == next {
			s.current = prev
		}
		s.mu.Unlock()
		return prev, err
	}
	return next, nil
}

func normalizePatch(p model.SettingsPatch) (model.SettingsPatch, error) {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		p.Name = &v
	}
	if p.Email != nil {
		v := strings.TrimSpace(*p.Email)
		p.Email = &v
	}
	if p.Language != nil {
		code, ok := model.NormalizeLanguage(*p.Language)
		if !ok {
			return p, fmt.Errorf("%w: unsupported language %q", ErrInvalidSettings, *p.Language)
		}
		p.Language = &code
	}
	return p, nil
}

func (s *SettingsStore) Reset(ctx context.Context) (model.AppSettings, error) {
	defaults := s.defaults()

	s.mu.Lock()
	s.current = defaults
	s.mu.Unlock()

	if err := s.kv.Remove(ctx, SettingsKey); err != nil {
		s.log.Error("remove settings", zap.Error(err))
		return defaults, &PersistenceError{Op: OpRemove, Key: SettingsKey, Err: err}
	}
	return defaults, nil
}

// Replace loads settings wholesale, as from a backup, and persists them.
func (s *SettingsStore) Replace(ctx context.Context, settings model.AppSettings) (model.AppSettings, error) {
	code, ok := model.NormalizeLanguage(settings.Language)
	if !ok {
		return s.Current(), fmt.Errorf("%w: unsupported language %q", ErrInvalidSettings, settings.Language)
	}
	settings.Language = code
	if err := s.write(ctx, settings); err != nil {
		return s.Current(), err
	}
	s.mu.Lock()
	s.current = settings
	s.loaded = true
	s.mu.Unlock()
	return settings, nil
}

func (s *SettingsStore) write(ctx context.Context, settings model.AppSettings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, SettingsKey, string(b)); err != nil {
		s.log.Error("write settings", zap.Error(err))
		return &PersistenceError{Op: OpWrite, Key: SettingsKey, Err: err}
	}
	return nil
}
