package auth

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/mateovidal/catalogbase-backend/pkg/auth"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/mailer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubSender struct {
	sent []mailer.Message
}

func (s *stubSender) Send(_ context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *stubSender, *gorm.DB, *testClock) {
	t.Helper()

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

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "catalogbase-test",
			ExpirationMinutes: 60,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Tokens: config.TokenConfig{
			VerificationTTL: time.Hour,
			ResetTTL:        time.Hour,
		},
	}

	sender := &stubSender{}
	clock := &testClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc := NewService(ServiceParams{
		DB:     db.FromConn(conn),
		Sender: sender,
		Config: cfg,
		Logger: logg,
		Now:    clock.Now,
	})
	return svc, sender, conn, clock
}

func signupTestUser(t *testing.T, svc *Service, email string) {
	t.Helper()
	_, err := svc.Signup(context.Background(), SignupRequest{
		Email:    email,
		Name:     "Ana",
		Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
}

func storedVerificationCode(t *testing.T, conn *gorm.DB, email string) string {
	t.Helper()
	var row models.EmailVerificationToken
	if err := conn.Where("email = ?", email).First(&row).Error; err != nil {
		t.Fatalf("loading verification code: %v", err)
	}
	return row.Token
}

func TestSignupIssuesVerificationCode(t *testing.T) {
	svc, sender, conn, _ := newTestService(t)

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "Ana@Example.com",
		Name:     "Ana",
		Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Email != "ana@example.com" {
		t.Errorf("email not normalized: %q", resp.Email)
	}

	code := storedVerificationCode(t, conn, "ana@example.com")
	if len(code) != 6 {
		t.Errorf("expected 6-digit code, got %q", code)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "ana@example.com" {
		t.Errorf("expected one verification email, got %+v", sender.sent)
	}

	var user models.User
	if err := conn.Where("email = ?", "ana@example.com").First(&user).Error; err != nil {
		t.Fatalf("loading user: %v", err)
	}
	if user.EmailVerifiedAt != nil {
		t.Error("new account must start unverified")
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	signupTestUser(t, svc, "dup@example.com")

	_, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "dup@example.com",
		Name:     "Other",
		Password: "pw123456",
	})
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPasswordLoginRequiresVerifiedEmail(t *testing.T) {
	svc, _, conn, _ := newTestService(t)
	signupTestUser(t, svc, "ana@example.com")

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "pw123456",
	})
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeUnauthorized {
		t.Fatalf("unverified login must fail opaquely, got %v", err)
	}

	code := storedVerificationCode(t, conn, "ana@example.com")
	if _, err := svc.VerifyEmail(context.Background(), VerifyEmailRequest{
		Email: "ana@example.com",
		Token: code,
	}); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	session, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("verified login: %v", err)
	}
	if session.Token == "" || session.User == nil {
		t.Fatal("expected a session token and user")
	}
}

func TestLoginFailuresAreOpaque(t *testing.T) {
	svc, _, conn, _ := newTestService(t)
	signupTestUser(t, svc, "ana@example.com")
	code := storedVerificationCode(t, conn, "ana@example.com")
	if _, err := svc.VerifyEmail(context.Background(), VerifyEmailRequest{Email: "ana@example.com", Token: code}); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	cases := []LoginRequest{
		{Email: "nobody@example.com", Password: "pw123456"},
		{Email: "ana@example.com", Password: "wrong-password"},
		{Email: "ana@example.com", Code: "000000"},
	}
	var messages []string
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		typed := errors.As(err)
		if typed == nil || typed.Code() != errors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %+v, got %v", req, err)
		}
		messages = append(messages, typed.Message())
	}
	for _, msg := range messages[1:] {
		if msg != messages[0] {
			t.Errorf("failure messages differ: %q vs %q", messages[0], msg)
		}
	}
}

func TestCodeLoginVerifiesAndIssuesSession(t *testing.T) {
	svc, _, conn, _ := newTestService(t)
	signupTestUser(t, svc, "ana@example.com")
	code := storedVerificationCode(t, conn, "ana@example.com")

	session, err := svc.Login(context.Background(), LoginRequest{
		Email: "ana@example.com",
		Code:  code,
	})
	if err != nil {
		t.Fatalf("code login: %v", err)
	}

	claims, err := auth.ParseSessionToken(svc.cfg.JWT, session.Token)
	if err != nil {
		t.Fatalf("parsing session token: %v", err)
	}
	if claims.UserID != session.User.ID {
		t.Error("session token carries wrong user id")
	}
	if claims.OnboardingComplete {
		t.Error("fresh account must project onboarding_complete=false")
	}

	var user models.User
	if err := conn.Where("email = ?", "ana@example.com").First(&user).Error; err != nil {
		t.Fatalf("loading user: %v", err)
	}
	if user.EmailVerifiedAt == nil {
		t.Error("code login must mark the email verified")
	}

	var count int64
	conn.Model(&models.EmailVerificationToken{}).Where("email = ?", "ana@example.com").Count(&count)
	if count != 0 {
		t.Errorf("expected consumed codes to be deleted, found %d", count)
	}

	// The code is single-use.
	_, err = svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Code: code})
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeUnauthorized {
		t.Fatalf("reused code must fail, got %v", err)
	}
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	svc, _, conn, clock := newTestService(t)
	signupTestUser(t, svc, "ana@example.com")
	code := storedVerificationCode(t, conn, "ana@example.com")

	clock.now = clock.now.Add(2 * time.Hour)

	_, err := svc.VerifyEmail(context.Background(), VerifyEmailRequest{
		Email: "ana@example.com",
		Token: code,
	})
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeExpired {
		t.Fatalf("expected expired error, got %v", err)
	}

	// Expired rows are deleted on the miss.
	var count int64
	conn.Model(&models.EmailVerificationToken{}).Where("email = ?", "ana@example.com").Count(&count)
	if count != 0 {
		t.Errorf("expected expired code to be deleted, found %d", count)
	}
}

func TestVerifyEmailUnknownCode(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	signupTestUser(t, svc, "ana@example.com")

	_, err := svc.VerifyEmail(context.Background(), VerifyEmailRequest{
		Email: "ana@example.com",
		Token: "999999",
	})
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestForgotPasswordHidesUnknownEmails(t *testing.T) {
	svc, sender, _, _ := newTestService(t)

	if err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{
		Email: "ghost@example.com",
	}); err != nil {
		t.Fatalf("forgot password must succeed for unknown emails, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("no mail should go to unknown addresses, got %+v", sender.sent)
	}
}

func TestResetPasswordInvalidatesSiblings(t *testing.T) {
	svc, _, conn, _ := newTestService(t)
	signupTestUser(t, svc, "ana@example.com")

	// Two outstanding reset requests for the same address.
	for i := 0; i < 2; i++ {
		if err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ana@example.com"}); err != nil {
			t.Fatalf("forgot password: %v", err)
		}
	}

	var rows []models.PasswordResetToken
	if err := conn.Where("email = ?", "ana@example.com").Find(&rows).Error; err != nil {
		t.Fatalf("loading reset tokens: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 outstanding tokens, got %d", len(rows))
	}

	if err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:    rows[0].Token,
		Password: "brand-new-pass",
	}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	var count int64
	conn.Model(&models.PasswordResetToken{}).Where("email = ?", "ana@example.com").Count(&count)
	if count != 0 {
		t.Errorf("all sibling tokens must be invalidated, found %d", count)
	}

	// A mailed reset link proves mailbox control, so the account is verified
	// and the new password logs in.
	session, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "brand-new-pass",
	})
	if err != nil {
		t.Fatalf("login after reset: %v", err)
	}
	if session.User == nil || !session.User.EmailVerified {
		t.Error("reset must mark the email verified")
	}

	// The sibling that was not consumed is dead too.
	err = svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:    rows[1].Token,
		Password: "another-pass",
	})
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("stale sibling must be rejected, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, _, conn, clock := newTestService(t)
	signupTestUser(t, svc, "ana@example.com")

	if err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ana@example.com"}); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	var row models.PasswordResetToken
	if err := conn.Where("email = ?", "ana@example.com").First(&row).Error; err != nil {
		t.Fatalf("loading reset token: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Hour)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:    row.Token,
		Password: "brand-new-pass",
	})
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The cleanup must survive the rolled-back transaction.
	var count int64
	conn.Model(&models.PasswordResetToken{}).Where("email = ?", "ana@example.com").Count(&count)
	if count != 0 {
		t.Errorf("expected expired reset tokens to be deleted, found %d", count)
	}
}
