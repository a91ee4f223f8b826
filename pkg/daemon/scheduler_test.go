package daemon

import (
	"testing"
	"time"
)

func TestDueScannerRejectsBadExpression(t *testing.T) {
	s := NewDueScanner(func() error { return nil })
	if err := s.Schedule("not a cron expr"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDueScannerScheduleSetsNextRun(t *testing.T) {
	s := NewDueScanner(func() error { return nil })
	if err := s.Schedule("@daily"); err != nil {
		t.Fatal(err)
	}

	next, running := s.Status()
	if running {
		t.Error("scanner should not run before Start")
	}
	if next.IsZero() || next.Before(time.Now()) {
		t.Errorf("nextRun = %s", next)
	}
	if until := time.Until(next); until > 24*time.Hour {
		t.Errorf("nextRun more than a day away: %s", until)
	}
}

func TestDueScannerRunsTask(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewDueScanner(func() error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	if err := s.Schedule("@every 10ms"); err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestDueScannerStop(t *testing.T) {
	s := NewDueScanner(func() error { return nil })
	if err := s.Schedule("@daily"); err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, running := s.Status(); !running {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scanner still running after Stop")
}
