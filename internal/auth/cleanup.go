package auth

import (
	"context"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/metrics"
	"github.com/YuriiKoshliak/contacts-api/internal/repository"
	"go.uber.org/zap"
)

// CleanupService handles periodic auth maintenance: purging expired
// password reset tokens and refreshing the registered-users gauge.
type CleanupService struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCleanupService creates a new auth cleanup service
func NewCleanupService(users repository.UserRepository, resets repository.PasswordResetRepository, interval time.Duration) *CleanupService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupService{
		users:    users,
		resets:   resets,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic cleanup process
func (s *CleanupService) Start() {
	logger.Log.Info("Starting auth cleanup service",
		zap.Duration("interval", s.interval),
	)
	go s.run()
}

// Stop stops the cleanup service
func (s *CleanupService) Stop() {
	s.cancel()
}

// run executes a sweep on the configured interval
func (s *CleanupService) run() {
	// Run immediately on startup
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *CleanupService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.resets.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		logger.Log.Error("Failed to purge expired reset tokens", zap.Error(err))
	} else if removed > 0 {
		logger.Log.Info("Purged expired reset tokens",
			zap.Int64("removed", removed),
		)
	}

	count, err := s.users.GetTotalUserCount(ctx)
	if err != nil {
		logger.Log.Error("Failed to count users", zap.Error(err))
		return
	}
	metrics.Get().UsersTotal.Set(float64(count))
}
