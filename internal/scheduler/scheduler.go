// Package scheduler keeps the deadlines the availability machine has to observe
// as a set sorted by instant. Polling pops what is due; cancelling is a removal.
package scheduler

import (
	"slices"
	"sync"
	"time"
)

// Kind identifies the effect a deadline triggers.
type Kind string

const (
	KindReactivation Kind = "reactivation"
	KindRecoveryEnd  Kind = "recovery_end"
)

// Entry is one pending deadline. At most one entry exists per (DonorID, Kind).
type Entry struct {
	Deadline time.Time
	DonorID  string
	Kind     Kind
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Schedule adds e, replacing any earlier entry for the same donor and kind.
func (s *Scheduler) Schedule(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(func(x Entry) bool { return x.DonorID == e.DonorID && x.Kind == e.Kind })

	idx, _ := slices.BinarySearchFunc(s.entries, e, compare)
	s.entries = slices.Insert(s.entries, idx, e)
}

// Cancel drops the entry for donorID and kind. It reports whether one existed.
func (s *Scheduler) Cancel(donorID string, kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(func(x Entry) bool { return x.DonorID == donorID && x.Kind == kind }) > 0
}

// CancelDonor drops every entry of donorID and returns how many were removed.
func (s *Scheduler) CancelDonor(donorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(func(x Entry) bool { return x.DonorID == donorID })
}

// Due removes and returns, earliest first, every entry whose deadline is not after now.
func (s *Scheduler) Due(now time.Time) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for n < len(s.entries) && !s.entries[n].Deadline.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}
	due := slices.Clone(s.entries[:n])
	s.entries = slices.Delete(s.entries, 0, n)
	return due
}

// Next returns the earliest entry without removing it.
func (s *Scheduler) Next() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[0], true
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) removeLocked(match func(Entry) bool) int {
	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, match)
	return before - len(s.entries)
}

func compare(a, b Entry) int {
	if c := a.Deadline.Compare(b.Deadline); c != 0 {
		return c
	}
	if a.DonorID != b.DonorID {
		if a.DonorID < b.DonorID {
			return -1
		}
		return 1
	}
	switch {
	case a.Kind < b.Kind:
		return -1
	case a.Kind > b.Kind:
		return 1
	}
	return 0
}
