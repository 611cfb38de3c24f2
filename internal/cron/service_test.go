package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubJob struct {
	name string
	runs int
	err  error
}

func (j *stubJob) Name() string { return j.name }

func (j *stubJob) Run(context.Context) error {
	j.runs++
	return j.err
}

type stubLock struct {
	acquired bool
	releases int
}

func (l *stubLock) Acquire(context.Context) (bool, error) { return l.acquired, nil }

func (l *stubLock) Release(context.Context) error {
	l.releases++
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestRunCycleExecutesJobsInOrder(t *testing.T) {
	var order []string
	first := &orderedJob{name: "first", order: &order}
	second := &orderedJob{name: "second", order: &order}

	lock := &stubLock{acquired: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, second),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("jobs ran out of order: %v", order)
	}
	if lock.releases != 1 {
		t.Errorf("lock must be released once, got %d", lock.releases)
	}
}

type orderedJob struct {
	name  string
	order *[]string
}

func (j *orderedJob) Name() string { return j.name }

func (j *orderedJob) Run(context.Context) error {
	*j.order = append(*j.order, j.name)
	return nil
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &stubJob{name: "noop"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &stubLock{acquired: false},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Errorf("held lock must skip the cycle, job ran %d times", job.runs)
	}
}

func TestFailingJobDoesNotStopOthers(t *testing.T) {
	failing := &stubJob{name: "bad", err: errors.New("boom")}
	following := &stubJob{name: "good"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, following),
		Lock:     &stubLock{acquired: true},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if following.runs != 1 {
		t.Error("a failing job must not block later jobs")
	}
}

func TestTokenCleanupJobPurgesExpiredRows(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.EmailVerificationToken{},
		&models.PasswordResetToken{},
	); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	user := &models.User{ID: uuid.New(), Email: "ana@example.com", Name: "Ana"}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []models.EmailVerificationToken{
		{ID: uuid.New(), UserID: user.ID, Email: user.Email, Token: "111111", ExpiresAt: now.Add(-time.Minute)},
		{ID: uuid.New(), UserID: user.ID, Email: user.Email, Token: "222222", ExpiresAt: now.Add(time.Hour)},
	}
	if err := conn.Create(&rows).Error; err != nil {
		t.Fatalf("seeding verification tokens: %v", err)
	}
	resets := []models.PasswordResetToken{
		{ID: uuid.New(), Email: user.Email, Token: "stale", ExpiresAt: now.Add(-time.Hour)},
		{ID: uuid.New(), Email: user.Email, Token: "fresh", ExpiresAt: now.Add(time.Hour)},
	}
	if err := conn.Create(&resets).Error; err != nil {
		t.Fatalf("seeding reset tokens: %v", err)
	}

	job := NewTokenCleanupJob(TokenCleanupJobParams{
		DB:     db.FromConn(conn),
		Logger: testLogger(),
		Now:    func() time.Time { return now },
	})
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("job run: %v", err)
	}

	var verifications, resetsLeft int64
	conn.Model(&models.EmailVerificationToken{}).Count(&verifications)
	conn.Model(&models.PasswordResetToken{}).Count(&resetsLeft)
	if verifications != 1 || resetsLeft != 1 {
		t.Errorf("expected one live row per table, got %d and %d", verifications, resetsLeft)
	}
}
