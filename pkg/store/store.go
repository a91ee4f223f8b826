// Package store defines the persistence contracts of the calibration
// system: the equipment catalog read side, the append-only record log, and
// the schedule source consulted before entering a recording flow. The
// daemon backs them with SQLite (pkg/store/sqlite); tests and seeding use
// the in-memory variant (pkg/store/memory); the CLI reaches them over HTTP
// (pkg/client).
package store

import (
	"context"
	"time"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
)

// RecordStore persists finished calibration records. Submission is
// write-only: a record is constructed once and either stored or discarded.
type RecordStore interface {
	SubmitRecord(ctx context.Context, rec calibration.Record) error
}

// RecordLog is read access to persisted records, newest first. Used for
// listings and to warm UI caches after a successful write.
type RecordLog interface {
	ListRecords(ctx context.Context, toolID string, limit int) ([]calibration.Record, error)
}

// ToolStore is the server-side equipment catalog.
type ToolStore interface {
	GetToolRecord(ctx context.Context, toolID string) (*catalog.ToolRecord, error)
	ListToolIDs(ctx context.Context) ([]string, error)
	PutToolRecord(ctx context.Context, rec *catalog.ToolRecord) error
}

// ScheduleSource reports the scheduled next calibration of a tool, if one
// is on file. This feeds a soft advisory only: the operator may always
// record a calibration early.
type ScheduleSource interface {
	NextCalibrationOf(ctx context.Context, toolID string) (time.Time, bool, error)
}

// ParseNextCalibration interprets a stored next-calibration value, which
// may be a full date or a year-month depending on the tool family.
func ParseNextCalibration(s string) (time.Time, bool) {
	for _, layout := range []calibration.DateLayout{calibration.LayoutFullDate, calibration.LayoutYearMonth} {
		if t, err := time.Parse(string(layout), s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
