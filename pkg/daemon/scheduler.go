package daemon

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TaskFunc represents a runnable task.
type TaskFunc func() error

// DueScanner periodically runs a task on a cron schedule. It drives the
// overdue-tool scan but knows nothing about calibration itself.
type DueScanner struct {
	task TaskFunc

	parser cron.Parser

	mu       sync.Mutex
	schedule cron.Schedule
	nextRun  time.Time
	running  bool

	recalcCh chan cron.Schedule
	stopCh   chan struct{}
}

func NewDueScanner(task TaskFunc) *DueScanner {
	if task == nil {
		panic("task function cannot be nil")
	}

	return &DueScanner{
		task:     task,
		parser:   cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		recalcCh: make(chan cron.Schedule, 1),
		stopCh:   make(chan struct{}),
	}
}

// Schedule parses the cron expression and installs it. Safe to call while
// the scanner is running; the loop picks up the new schedule.
func (s *DueScanner) Schedule(cronExpr string) error {
	sh, err := s.parser.Parse(cronExpr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	running := s.running
	if !running {
		s.schedule = sh
		s.nextRun = sh.Next(time.Now())
	}
	s.mu.Unlock()

	if running {
		select {
		case s.recalcCh <- sh:
		default:
		}
	}
	return nil
}

func (s *DueScanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.run()
}

func (s *DueScanner) Stop() {
	select {
	case <-s.stopCh: // already closed
	default:
		close(s.stopCh)
	}
}

func (s *DueScanner) Status() (nextRun time.Time, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextRun = s.nextRun
	running = s.running
	return
}

func (s *DueScanner) run() {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logrus.Debug("due scanner stopped")
	}()

	logrus.Debug("due scanner started")

	for {
		schedule, nextRun := s.snapshot()

		var timer *time.Timer
		if schedule == nil || nextRun.IsZero() {
			timer = time.NewTimer(time.Hour * 10000)
		} else {
			wait := time.Until(nextRun)
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
		}

		select {
		case <-timer.C:
			if schedule == nil || nextRun.IsZero() {
				continue
			}

			logrus.Debugf("running due scan scheduled at %s", nextRun.Format(time.DateTime))
			if err := s.task(); err != nil {
				logrus.Errorf("due scan failed: %v", err)
			}
			s.advanceNextRun()
		case sh := <-s.recalcCh:
			timer.Stop()
			s.mu.Lock()
			s.schedule = sh
			s.nextRun = sh.Next(time.Now())
			s.mu.Unlock()
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

func (s *DueScanner) snapshot() (cron.Schedule, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule, s.nextRun
}

func (s *DueScanner) advanceNextRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return
	}
	s.nextRun = s.schedule.Next(s.nextRun)
}
