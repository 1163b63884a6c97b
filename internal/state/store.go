package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/sagtrack/internal/sagapi"
)

// Snapshot represents the latest polled telemetry available to the UI.
type Snapshot struct {
	Status        sagapi.StatusResponse
	HasStatus     bool
	StatusUpdated time.Time
	StatusError   error
	// ConsecutiveFailures counts status polls that failed in a row.
	ConsecutiveFailures int

	// Live is nil when no sample is available or the last live poll failed.
	Live        *sagapi.LiveSample
	LiveUpdated time.Time
	LiveError   error
}

// IsOffline reports whether the most recent status poll failed.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures > 0
}

// Store coordinates concurrent updates from the pollers.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// UpdateStatus records a status poll. When err is non-nil the previous status
// is kept and the failure is counted.
func (s *Store) UpdateStatus(status *sagapi.StatusResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.StatusUpdated = time.Now()
	if err != nil {
		s.snapshot.StatusError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	if status != nil {
		s.snapshot.Status = *status
		s.snapshot.HasStatus = true
	} else {
		s.snapshot.Status = sagapi.StatusResponse{}
		s.snapshot.HasStatus = false
	}
	s.snapshot.StatusError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// UpdateLive records a live poll. Unlike status, a failure clears the sample:
// stale live readings must not stay on screen.
func (s *Store) UpdateLive(sample *sagapi.LiveSample, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LiveUpdated = time.Now()
	s.snapshot.LiveError = err
	if err != nil || sample == nil {
		s.snapshot.Live = nil
		return
	}
	dup := *sample
	s.snapshot.Live = &dup
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.Live != nil {
		live := *s.snapshot.Live
		snap.Live = &live
	}
	if s.snapshot.StatusError != nil {
		snap.StatusError = fmt.Errorf("%w", s.snapshot.StatusError)
	}
	if s.snapshot.LiveError != nil {
		snap.LiveError = fmt.Errorf("%w", s.snapshot.LiveError)
	}
	return snap
}
