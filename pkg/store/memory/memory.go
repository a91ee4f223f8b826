// Package memory provides an in-memory implementation of the store
// contracts, used in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
	"github.com/caltrack/caltrack/pkg/store"
)

// Store keeps tools and records in maps guarded by a RWMutex. Records are
// appended per tool; listings return newest first.
type Store struct {
	mu      sync.RWMutex
	tools   map[string]*catalog.ToolRecord
	records map[string][]calibration.Record

	// SubmitErr, when set, makes SubmitRecord fail. Test seam for
	// persistence-failure paths.
	SubmitErr error
}

func New() *Store {
	return &Store{
		tools:   make(map[string]*catalog.ToolRecord),
		records: make(map[string][]calibration.Record),
	}
}

func (s *Store) GetToolRecord(_ context.Context, toolID string) (*catalog.ToolRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tools[toolID]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *Store) ListToolIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tools))
	for id := range s.tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) PutToolRecord(_ context.Context, rec *catalog.ToolRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.tools[rec.ID] = &cp
	return nil
}

func (s *Store) SubmitRecord(_ context.Context, rec calibration.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubmitErr != nil {
		return s.SubmitErr
	}
	s.records[rec.Equipo] = append(s.records[rec.Equipo], rec)
	return nil
}

func (s *Store) ListRecords(_ context.Context, toolID string, limit int) ([]calibration.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.records[toolID]
	out := make([]calibration.Record, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// NextCalibrationOf returns the schedule recorded by the most recent
// calibration of the tool.
func (s *Store) NextCalibrationOf(ctx context.Context, toolID string) (time.Time, bool, error) {
	recs, err := s.ListRecords(ctx, toolID, 1)
	if err != nil || len(recs) == 0 {
		return time.Time{}, false, err
	}
	t, ok := store.ParseNextCalibration(recs[0].SiguienteCalibracion)
	return t, ok, nil
}

var (
	_ store.RecordStore    = (*Store)(nil)
	_ store.RecordLog      = (*Store)(nil)
	_ store.ToolStore      = (*Store)(nil)
	_ store.ScheduleSource = (*Store)(nil)
)
