package main

import (
	"sort"
	"time"
)

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

type timerEntry struct {
	due time.Time
	seq uint64
	fn  func()
}

// FrameScheduler is a Scheduler pumped by the game loop: Poll is called once
// per Update, so every callback runs on the game goroutine.
type FrameScheduler struct {
	now     func() time.Time
	pending []timerEntry
	seq     uint64
}

// NewFrameScheduler creates a FrameScheduler; now defaults to time.Now
func NewFrameScheduler(now func() time.Time) *FrameScheduler {
	if now == nil {
		now = time.Now
	}
	return &FrameScheduler{now: now}
}

func (s *FrameScheduler) Schedule(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.pending = append(s.pending, timerEntry{
		due: s.now().Add(delay),
		seq: s.seq,
		fn:  fn,
	})
}

// Poll fires the callbacks that were due when it was called, earliest first.
// Callbacks scheduled from inside a fired callback wait for the next Poll,
// which bounds a chain of zero-delay retries to one step per frame.
func (s *FrameScheduler) Poll() int {
	now := s.now()

	var due, later []timerEntry
	for _, e := range s.pending {
		if e.due.After(now) {
			later = append(later, e)
		} else {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return 0
	}
	s.pending = later

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	for _, e := range due {
		e.fn()
	}
	return len(due)
}

// NextWake returns the earliest pending due time
func (s *FrameScheduler) NextWake() (time.Time, bool) {
	if len(s.pending) == 0 {
		return time.Time{}, false
	}
	next := s.pending[0].due
	for _, e := range s.pending[1:] {
		if e.due.Before(next) {
			next = e.due
		}
	}
	return next, true
}

// Pending returns the number of callbacks waiting to fire
func (s *FrameScheduler) Pending() int {
	return len(s.pending)
}

// Clear drops every pending callback
func (s *FrameScheduler) Clear() {
	s.pending = nil
}
