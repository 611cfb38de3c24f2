package cron

import (
	"context"
	"time"

	"github.com/mateovidal/catalogbase-backend/internal/auth"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
)

// TokenCleanupJob purges expired verification and reset tokens. Consumption
// paths delete rows opportunistically; this sweep catches the ones nobody
// ever came back for.
type TokenCleanupJob struct {
	db   *db.Client
	logg *logger.Logger
	now  func() time.Time
}

type TokenCleanupJobParams struct {
	DB     *db.Client
	Logger *logger.Logger
	Now    func() time.Time
}

func NewTokenCleanupJob(params TokenCleanupJobParams) *TokenCleanupJob {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &TokenCleanupJob{db: params.DB, logg: params.Logger, now: now}
}

func (j *TokenCleanupJob) Name() string { return "expired_token_cleanup" }

func (j *TokenCleanupJob) Run(ctx context.Context) error {
	deleted, err := auth.NewTokenRepository(j.db.DB()).DeleteExpired(ctx, j.now())
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "expired tokens purged")
	return nil
}
