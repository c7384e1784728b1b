package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers refresh runs on a cron schedule
type Scheduler struct {
	refresher *Refresher
	cron      *cron.Cron
	cronID    cron.EntryID
	mu        sync.Mutex
	started   bool
}

// NewScheduler creates a scheduler for the refresher
func NewScheduler(refresher *Refresher) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		cron:      cron.New(),
	}
}

// Start registers the refresh job and starts the cron loop
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	id, err := s.cron.AddFunc(schedule, s.tick)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cronID = id
	s.started = true
	s.cron.Start()
	log.Printf("Cron job started with schedule: %s", schedule)
	return nil
}

// tick runs one refresh unless one is already in progress
func (s *Scheduler) tick() {
	log.Println("Cron triggered: starting article refresh")

	if s.refresher.State().Running() {
		log.Println("Cron skipped: a refresh is already running")
		return
	}
	err := s.refresher.RunOnce(context.Background())
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Println("Cron skipped: a refresh is already running")
	case err != nil:
		log.Printf("Cron refresh error: %v", err)
	}
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false

	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
