package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/store/memory"
)

func testSpec() calibration.ToolSpec {
	return calibration.ToolSpec{
		ID:                 "I-CAL-006",
		ReferencePattern:   "I-CAL-003",
		ReferenceValues:    []float64{1.0, 2.0, 3.0},
		ToleranceMagnitude: 0.001,
		CadenceDays:        90,
		NextDueLayout:      calibration.LayoutYearMonth,
	}
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC) }
}

func fillEntries(s *Session, entries []string) {
	for i, e := range entries {
		s.SetEntry(i, e)
	}
}

func TestSubmitCleanEntriesPersistsOK(t *testing.T) {
	st := memory.New()
	s := New(testSpec(), "12345", st, WithClock(fixedClock()))
	fillEntries(s, []string{"1.0", "2.0", "3.0"})
	s.SetComments("todo bien")

	out, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if out.State != StateSucceeded {
		t.Fatalf("state = %s, want Succeeded", out.State)
	}
	if out.Record == nil || out.Record.Estatus != calibration.StatusOK {
		t.Fatalf("record = %+v", out.Record)
	}
	if out.Record.SiguienteCalibracion != "2024-04" {
		t.Errorf("SiguienteCalibracion = %s", out.Record.SiguienteCalibracion)
	}

	recs, err := st.ListRecords(context.Background(), "I-CAL-006", 0)
	if err != nil || len(recs) != 1 {
		t.Fatalf("stored records = %v, %v", recs, err)
	}
}

func TestSubmitOutOfToleranceRequiresConfirmation(t *testing.T) {
	st := memory.New()
	s := New(testSpec(), "12345", st, WithClock(fixedClock()))
	// 3.002 exceeds 3.001: dimension 3 out of tolerance.
	fillEntries(s, []string{"1.0005", "2.0", "3.002"})

	out, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if out.State != StateConfirming {
		t.Fatalf("state = %s, want ConfirmingOverride", out.State)
	}
	if want := []int{2}; !reflect.DeepEqual(out.Decision.ViolatingIndices, want) {
		t.Errorf("ViolatingIndices = %v, want %v", out.Decision.ViolatingIndices, want)
	}
	if want := []int{3}; !reflect.DeepEqual(out.Decision.Dimensions(), want) {
		t.Errorf("Dimensions() = %v, want %v", out.Decision.Dimensions(), want)
	}

	// Nothing persisted yet.
	if recs, _ := st.ListRecords(context.Background(), "I-CAL-006", 0); len(recs) != 0 {
		t.Fatalf("record persisted before confirmation: %v", recs)
	}

	out, err = s.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if out.State != StateSucceeded || out.Record.Estatus != calibration.StatusNotOK {
		t.Fatalf("confirm outcome = %+v", out)
	}
}

func TestDeclineReturnsToEditingUntouched(t *testing.T) {
	st := memory.New()
	s := New(testSpec(), "12345", st, WithClock(fixedClock()))
	entered := []string{"0.9", "2.0", "3.0"}
	fillEntries(s, entered)

	out, err := s.Submit(context.Background())
	if err != nil || out.State != StateConfirming {
		t.Fatalf("expected confirmation gate, got %+v, %v", out, err)
	}

	if err := s.Decline(); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if s.State() != StateEditing {
		t.Errorf("state = %s, want Editing", s.State())
	}
	if got := s.Entries(); !reflect.DeepEqual(got, entered) {
		t.Errorf("entries changed on decline: %v", got)
	}
	if recs, _ := st.ListRecords(context.Background(), "I-CAL-006", 0); len(recs) != 0 {
		t.Errorf("record persisted after decline: %v", recs)
	}
}

func TestSubmitBlockedWhileIncomplete(t *testing.T) {
	st := memory.New()
	s := New(testSpec(), "12345", st)
	// One empty field among otherwise valid entries blocks submission
	// entirely, regardless of tolerance.
	fillEntries(s, []string{"1.0", "", "3.0"})

	_, err := s.Submit(context.Background())
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if s.State() != StateEditing {
		t.Errorf("state = %s, want Editing", s.State())
	}

	// Whitespace-only counts as empty too.
	s.SetEntry(1, "   ")
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete for blank entry, got %v", err)
	}
}

func TestPersistFailureKeepsEntries(t *testing.T) {
	st := memory.New()
	st.SubmitErr = errors.New("record store unavailable")
	s := New(testSpec(), "12345", st, WithClock(fixedClock()))
	entered := []string{"1.0", "2.0", "3.0"}
	fillEntries(s, entered)

	out, err := s.Submit(context.Background())
	if err == nil {
		t.Fatal("expected persist error")
	}
	if out.State != StateFailed || s.State() != StateFailed {
		t.Fatalf("state = %s, want Failed", out.State)
	}
	if got := s.Entries(); !reflect.DeepEqual(got, entered) {
		t.Errorf("entries lost on failure: %v", got)
	}
	if recs, _ := st.ListRecords(context.Background(), "I-CAL-006", 0); len(recs) != 0 {
		t.Errorf("record exists despite failure: %v", recs)
	}

	// Manual retry succeeds once the store recovers.
	st.SubmitErr = nil
	out, err = s.Submit(context.Background())
	if err != nil || out.State != StateSucceeded {
		t.Fatalf("retry outcome = %+v, %v", out, err)
	}
}

func TestUnparsableEntryGatesLikeViolation(t *testing.T) {
	st := memory.New()
	s := New(testSpec(), "12345", st, WithClock(fixedClock()))
	fillEntries(s, []string{"1.0", "abc", "3.0"})

	out, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if out.State != StateConfirming {
		t.Fatalf("state = %s, want ConfirmingOverride", out.State)
	}
	if want := []int{1}; !reflect.DeepEqual(out.Decision.ViolatingIndices, want) {
		t.Errorf("ViolatingIndices = %v, want %v", out.Decision.ViolatingIndices, want)
	}
}

// slowStore blocks SubmitRecord until released, to expose the in-flight
// guard.
type slowStore struct {
	release chan struct{}
	entered chan struct{}
}

func (s *slowStore) SubmitRecord(_ context.Context, _ calibration.Record) error {
	close(s.entered)
	<-s.release
	return nil
}

func TestDuplicateSubmitRejectedWhileInFlight(t *testing.T) {
	slow := &slowStore{release: make(chan struct{}), entered: make(chan struct{})}
	s := New(testSpec(), "12345", slow, WithClock(fixedClock()))
	fillEntries(s, []string{"1.0", "2.0", "3.0"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := s.Submit(context.Background()); err != nil {
			t.Errorf("first Submit failed: %v", err)
		}
	}()

	<-slow.entered
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(slow.release)
	wg.Wait()

	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrAlreadySaved) {
		t.Errorf("expected ErrAlreadySaved after success, got %v", err)
	}
}

func TestEvaluateReflectsLatestText(t *testing.T) {
	s := New(testSpec(), "12345", memory.New())
	s.SetEntry(0, "5.0")
	results := s.Evaluate()
	if !results[0].OutOfTolerance {
		t.Fatal("5.0 should be out of tolerance")
	}
	s.SetEntry(0, "1.0")
	results = s.Evaluate()
	if results[0].OutOfTolerance {
		t.Fatal("evaluation must follow the current raw text, not cached flags")
	}
}

func TestConfirmOutsideGateFails(t *testing.T) {
	s := New(testSpec(), "12345", memory.New())
	if _, err := s.Confirm(context.Background()); !errors.Is(err, ErrNotConfirming) {
		t.Errorf("Confirm: expected ErrNotConfirming, got %v", err)
	}
	if err := s.Decline(); !errors.Is(err, ErrNotConfirming) {
		t.Errorf("Decline: expected ErrNotConfirming, got %v", err)
	}
}
