// Package session implements the calibration submission workflow: a small
// state machine that owns one tool's entered measurements, runs the
// evaluation and status decision, gates out-of-tolerance saves behind an
// explicit operator confirmation, and persists the final record.
//
// One Session belongs to one recording flow. It is safe for concurrent use;
// a second submission while one is persisting is rejected rather than
// duplicated.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/store"
)

// State is the submission workflow state.
type State string

const (
	StateEditing    State = "Editing"
	StateValidating State = "Validating"
	StateConfirming State = "ConfirmingOverride"
	StatePersisting State = "Persisting"
	StateSucceeded  State = "Succeeded"
	StateFailed     State = "Failed"
)

var (
	// ErrIncomplete blocks submission while any dimension field is blank,
	// independent of tolerance.
	ErrIncomplete = pkgerrors.New("all dimension fields must be filled before saving")
	// ErrSubmissionInFlight rejects a duplicate save while one is pending.
	ErrSubmissionInFlight = pkgerrors.New("a submission is already in progress")
	// ErrAwaitingConfirmation is returned by Submit while the operator has
	// an unanswered out-of-tolerance confirmation.
	ErrAwaitingConfirmation = pkgerrors.New("waiting for operator confirmation")
	// ErrNotConfirming is returned by Confirm/Decline outside the
	// confirmation state.
	ErrNotConfirming = pkgerrors.New("no confirmation pending")
	// ErrAlreadySaved rejects submission after a successful save.
	ErrAlreadySaved = pkgerrors.New("calibration already saved")
)

const defaultPersistTimeout = 30 * time.Second

// Outcome reports where a submission attempt ended up. Decision is set when
// validation ran; Record is set once a record was persisted.
type Outcome struct {
	State    State
	Decision calibration.Decision
	Record   *calibration.Record
}

// Session drives one calibration recording flow.
type Session struct {
	mu sync.Mutex

	spec     calibration.ToolSpec
	nomina   string
	entries  []string
	comments string

	state    State
	decision calibration.Decision

	records        store.RecordStore
	now            func() time.Time
	persistTimeout time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithPersistTimeout bounds how long a persist call may block.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Session) { s.persistTimeout = d }
}

// New creates a session for one tool and operator. Entry slots start empty,
// one per dimension of the spec.
func New(spec calibration.ToolSpec, nomina string, records store.RecordStore, opts ...Option) *Session {
	s := &Session{
		spec:           spec,
		nomina:         nomina,
		entries:        make([]string, spec.DimensionCount()),
		state:          StateEditing,
		records:        records,
		now:            time.Now,
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Spec() calibration.ToolSpec { return s.spec }

// SetEntry records the raw text of one dimension field as the operator
// types. Out-of-range indices are ignored.
func (s *Session) SetEntry(index int, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return
	}
	s.entries[index] = raw
}

func (s *Session) SetComments(c string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = c
}

// Entries returns a copy of the current raw entries.
func (s *Session) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(s.entries))
	copy(cp, s.entries)
	return cp
}

// Evaluate classifies the current entries so the caller can highlight
// non-conforming fields live. It never caches: results always reflect the
// raw text at call time.
func (s *Session) Evaluate() []calibration.EvaluationResult {
	return calibration.Evaluate(s.Entries(), s.spec.ToleranceWindows())
}

// Complete reports whether every dimension slot has non-blank text, the
// pre-submit gate.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

func (s *Session) completeLocked() bool {
	for _, e := range s.entries {
		if strings.TrimSpace(e) == "" {
			return false
		}
	}
	return true
}

// Submit validates the entered measurements and either persists an OK
// record directly or parks the session awaiting operator confirmation when
// any dimension is out of tolerance. The returned Outcome carries the
// decision in both cases.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	switch s.state {
	case StatePersisting, StateValidating:
		s.mu.Unlock()
		return Outcome{State: StatePersisting}, ErrSubmissionInFlight
	case StateConfirming:
		s.mu.Unlock()
		return Outcome{State: StateConfirming, Decision: s.decision}, ErrAwaitingConfirmation
	case StateSucceeded:
		s.mu.Unlock()
		return Outcome{State: StateSucceeded}, ErrAlreadySaved
	}

	if !s.completeLocked() {
		s.mu.Unlock()
		return Outcome{State: StateEditing}, ErrIncomplete
	}

	s.state = StateValidating
	entries := make([]string, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	// Authoritative evaluation from current text, not cached flags.
	decision := calibration.Decide(calibration.Evaluate(entries, s.spec.ToleranceWindows()))

	s.mu.Lock()
	s.decision = decision
	if decision.Status == calibration.StatusNotOK {
		s.state = StateConfirming
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"tool":       s.spec.ID,
			"dimensions": decision.Dimensions(),
		}).Info("out-of-tolerance measurements, awaiting operator confirmation")
		return Outcome{State: StateConfirming, Decision: decision}, nil
	}
	s.mu.Unlock()

	return s.persist(ctx, calibration.StatusOK)
}

// Confirm completes a gated out-of-tolerance submission with status NO OK.
func (s *Session) Confirm(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.state != StateConfirming {
		state := s.state
		s.mu.Unlock()
		return Outcome{State: state}, ErrNotConfirming
	}
	s.mu.Unlock()

	return s.persist(ctx, calibration.StatusNotOK)
}

// Decline aborts a gated submission. Nothing is written and the entered
// values stay untouched so the operator returns to editing.
func (s *Session) Decline() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfirming {
		return ErrNotConfirming
	}
	s.state = StateEditing
	logrus.WithField("tool", s.spec.ID).Info("operator declined NO OK confirmation, back to editing")
	return nil
}

func (s *Session) persist(ctx context.Context, status calibration.Status) (Outcome, error) {
	s.mu.Lock()
	if s.state == StatePersisting {
		s.mu.Unlock()
		return Outcome{State: StatePersisting}, ErrSubmissionInFlight
	}
	s.state = StatePersisting
	rec := calibration.NewRecord(s.spec, s.nomina, s.entries, status, s.comments, s.now())
	decision := s.decision
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	err := s.records.SubmitRecord(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Entered values are kept so the operator can retry without
		// re-typing. The record itself is discarded.
		s.state = StateFailed
		logrus.WithError(err).WithField("tool", s.spec.ID).Error("failed to persist calibration record")
		return Outcome{State: StateFailed, Decision: decision}, pkgerrors.Wrap(err, "failed to save calibration record")
	}

	s.state = StateSucceeded
	logrus.WithFields(logrus.Fields{
		"tool":            s.spec.ID,
		"estatus":         rec.Estatus,
		"nextCalibration": rec.SiguienteCalibracion,
	}).Info("calibration record saved")
	return Outcome{State: StateSucceeded, Decision: decision, Record: &rec}, nil
}
