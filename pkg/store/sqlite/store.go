// Package sqlite persists the equipment catalog and the calibration record
// log in a single SQLite database, using the pure-Go driver so the daemon
// stays cgo-free.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
	"github.com/caltrack/caltrack/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS tools (
	id     TEXT PRIMARY KEY,
	record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS calibrations (
	seq                   INTEGER PRIMARY KEY AUTOINCREMENT,
	equipo                TEXT NOT NULL,
	nomina                TEXT NOT NULL,
	fecha                 TEXT NOT NULL,
	dimensiones           TEXT NOT NULL,
	estatus               TEXT NOT NULL,
	patron                TEXT NOT NULL,
	siguiente_calibracion TEXT NOT NULL,
	comentarios           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_calibrations_equipo ON calibrations(equipo, seq);
`

// Store is the daemon's persistent catalog and record log. Tool records are
// kept as their wire JSON so catalog quirks (sparse slots, string-or-number
// fields) survive a round trip unchanged; calibration records get proper
// columns since they are queried and listed.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open sqlite database %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "failed to create schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetToolRecord(ctx context.Context, toolID string) (*catalog.ToolRecord, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM tools WHERE id = ?`, toolID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to query tool %s", toolID)
	}
	var rec catalog.ToolRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode tool record %s", toolID)
	}
	return &rec, nil
}

func (s *Store) ListToolIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM tools ORDER BY id`)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list tools")
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to scan tool id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) PutToolRecord(ctx context.Context, rec *catalog.ToolRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode tool record %s", rec.ID)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tools (id, record) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record`,
		rec.ID, string(b))
	return pkgerrors.Wrapf(err, "failed to store tool record %s", rec.ID)
}

func (s *Store) SubmitRecord(ctx context.Context, rec calibration.Record) error {
	dims, err := json.Marshal(rec.Dimensiones)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode dimensions")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO calibrations
		 (equipo, nomina, fecha, dimensiones, estatus, patron, siguiente_calibracion, comentarios)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Equipo, rec.Nomina, rec.Fecha, string(dims), string(rec.Estatus),
		rec.Patron, rec.SiguienteCalibracion, rec.Comentarios)
	return pkgerrors.Wrapf(err, "failed to store calibration record for %s", rec.Equipo)
}

func (s *Store) ListRecords(ctx context.Context, toolID string, limit int) ([]calibration.Record, error) {
	q := `SELECT equipo, nomina, fecha, dimensiones, estatus, patron, siguiente_calibracion, comentarios
	      FROM calibrations WHERE equipo = ? ORDER BY seq DESC`
	args := []any{toolID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list calibrations for %s", toolID)
	}
	defer func() { _ = rows.Close() }()

	recs := []calibration.Record{}
	for rows.Next() {
		var rec calibration.Record
		var dims, status string
		if err := rows.Scan(&rec.Equipo, &rec.Nomina, &rec.Fecha, &dims, &status,
			&rec.Patron, &rec.SiguienteCalibracion, &rec.Comentarios); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to scan calibration record")
		}
		if err := json.Unmarshal([]byte(dims), &rec.Dimensiones); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to decode dimensions")
		}
		rec.Estatus = calibration.Status(status)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// NextCalibrationOf returns the schedule written by the most recent record
// of the tool, if any.
func (s *Store) NextCalibrationOf(ctx context.Context, toolID string) (time.Time, bool, error) {
	var next string
	err := s.db.QueryRowContext(ctx,
		`SELECT siguiente_calibracion FROM calibrations WHERE equipo = ? ORDER BY seq DESC LIMIT 1`,
		toolID).Scan(&next)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, pkgerrors.Wrapf(err, "failed to query schedule for %s", toolID)
	}
	t, ok := store.ParseNextCalibration(next)
	return t, ok, nil
}

var (
	_ store.RecordStore    = (*Store)(nil)
	_ store.RecordLog      = (*Store)(nil)
	_ store.ToolStore      = (*Store)(nil)
	_ store.ScheduleSource = (*Store)(nil)
)
