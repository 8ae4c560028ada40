// Package scheduler periodically syncs every known user's inbox.
package scheduler

import (
	"context"
	"sync"
	"time"

	"jobify-backend/internal/tracker/repository"
	"jobify-backend/internal/tracker/usecase"

	"github.com/rs/zerolog/log"
)

// SyncScheduler runs one sync pass per interval over all users. Users are
// synced concurrently; a panic or error in one user's run never takes down
// the others.
type SyncScheduler struct {
	userRepo       repository.UserRepository
	trackerUsecase usecase.TrackerUsecase
	interval       time.Duration
	stopChan       chan struct{}
}

func NewSyncScheduler(
	userRepo repository.UserRepository,
	trackerUsecase usecase.TrackerUsecase,
	interval time.Duration,
) *SyncScheduler {
	return &SyncScheduler{
		userRepo:       userRepo,
		trackerUsecase: trackerUsecase,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SyncScheduler) Start() {
	log.Info().Dur("interval", s.interval).Msg("starting sync scheduler")

	go func() {
		// Run immediately on start
		s.syncAllUsers()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.syncAllUsers()
			case <-s.stopChan:
				log.Info().Msg("sync scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

func (s *SyncScheduler) syncAllUsers() {
	users, err := s.userRepo.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("failed to list users for sync")
		return
	}

	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("user", email).Msg("sync panicked")
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			defer cancel()
			if _, err := s.trackerUsecase.SyncUser(ctx, email); err != nil {
				log.Error().Err(err).Str("user", email).Msg("scheduled sync failed")
			}
		}(user.Email)
	}
	wg.Wait()
}
