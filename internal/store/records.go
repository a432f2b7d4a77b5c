package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/forestguardian/forest-guardian/internal/kv"
	"github.com/forestguardian/forest-guardian/internal/model"
)

// RecordStore implements Records over a single key-value slot holding a
// JSON array.
type RecordStore struct {
	kv      kv.Store
	log     *zap.Logger
	entropy *ulid.LockedMonotonicReader
	now     func() time.Time
}

var _ Records = (*RecordStore)(nil)

// NewRecordStore returns a record store backed by s. A nil logger
// discards log output.
func NewRecordStore(s kv.Store, log *zap.Logger) *RecordStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordStore{
		kv:  s,
		log: log.Named("records"),
		entropy: &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		},
		now: time.Now,
	}
}

func (s *RecordStore) newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *RecordStore) List(ctx context.Context) ([]model.DetectionRecord, error) {
	raw, ok, err := s.kv.Get(ctx, RecordsKey)
	if err != nil {
		s.log.Error("read history", zap.Error(err))
		return nil, &PersistenceError{Op: OpRead, Key: RecordsKey, Err: err}
	}
	if !ok {
		return []model.DetectionRecord{}, nil
	}

	records, err := decodeRecords(raw)
	if err != nil {
		s.log.Warn("history slot is malformed, treating as empty", zap.Error(err))
		return []model.DetectionRecord{}, nil
	}
	return records, nil
}

func decodeRecords(raw string) ([]model.DetectionRecord, error) {
	var records []model.DetectionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if records == nil {
		records = []model.DetectionRecord{}
	}
	return records, nil
}

func (s *RecordStore) Append(ctx context.Context, p AppendParams) (*model.DetectionRecord, error) {
	if err := validateAppend(p); err != nil {
		return nil, err
	}

	current, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := model.DetectionRecord{
		ID:             s.newID(now),
		Date:           now,
		Label:          strings.TrimSpace(p.Label),
		Confidence:     p.Confidence,
		Severity:       p.Severity,
		ImageURI:       p.ImageURI,
		Mode:           p.Mode,
		TreeType:       p.TreeType,
		Description:    p.Description,
		Recommendation: p.Recommendation,
	}

	updated := make([]model.DetectionRecord, 0, len(current)+1)
	updated = append(updated, rec)
	updated = append(updated, current...)

	if err := s.write(ctx, updated); err != nil {
		return nil, err
	}

	s.log.Debug("record appended",
		zap.String("id", rec.ID),
		zap.String("label", rec.Label),
		zap.Int("total", len(updated)))
	return &rec, nil
}

func validateAppend(p AppendParams) error {
	if strings.TrimSpace(p.Label) == "" {
		return fmt.Errorf("%w: label is required", ErrInvalidRecord)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidRecord, p.Confidence)
	}
	if !model.ValidSeverities[p.Severity] {
		return fmt.Errorf("%w: severity %q (valid: low, medium, high)", ErrInvalidRecord, p.Severity)
	}
	return nil
}

// Get returns the record with the given id.
func (s *RecordStore) Get(ctx context.Context, id string) (*model.DetectionRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *RecordStore) Remove(ctx context.Context, id string) error {
	current, err := s.List(ctx)
	if err != nil {
		return err
	}

	updated := make([]model.DetectionRecord, 0, len(current))
	for _, r := range current {
		if r.ID != id {
			updated = append(updated, r)
		}
	}
	if len(updated) == len(current) {
		return nil
	}

	if err := s.write(ctx, updated); err != nil {
		return err
	}
	s.log.Debug("record removed", zap.String("id", id))
	return nil
}

func (s *RecordStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, RecordsKey); err != nil {
		s.log.Error("clear history", zap.Error(err))
		return &PersistenceError{Op: OpRemove, Key: RecordsKey, Err: err}
	}
	s.log.Debug("history cleared")
	return nil
}

// Replace overwrites the whole history with records, as given.
func (s *RecordStore) Replace(ctx context.Context, records []model.DetectionRecord) error {
	if records == nil {
		records = []model.DetectionRecord{}
	}
	return s.write(ctx, records)
}

func (s *RecordStore) write(ctx context.Context, records []model.DetectionRecord) error {
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, RecordsKey, string(b)); err != nil {
		s.log.Error("write history", zap.Error(err))
		return &PersistenceError{Op: OpWrite, Key: RecordsKey, Err: err}
	}
	return nil
}
