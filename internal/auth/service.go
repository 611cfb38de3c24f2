package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/internal/users"
	"github.com/mateovidal/catalogbase-backend/pkg/auth"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/mailer"
	"github.com/mateovidal/catalogbase-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	verificationDigits = 6
	resetTokenBytes    = 32

	// maxTokenAttempts bounds the regeneration loop when a freshly minted
	// verification code collides on (email, token).
	maxTokenAttempts = 5
)

// errInvalidCredentials is the single failure every login path collapses
// into, so responses never reveal whether the email exists.
var errInvalidCredentials = errors.New(errors.CodeUnauthorized, "invalid credentials")

// Service implements signup, both login paths, email verification and the
// password reset flow.
type Service struct {
	db     *db.Client
	sender mailer.Sender
	cfg    *config.Config
	logger *logger.Logger
	now    func() time.Time
}

type ServiceParams struct {
	DB     *db.Client
	Sender mailer.Sender
	Config *config.Config
	Logger *logger.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

func NewService(params ServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:     params.DB,
		sender: params.Sender,
		cfg:    params.Config,
		logger: params.Logger,
		now:    now,
	}
}

// Signup registers a new account and emails a six-digit verification code.
// The account cannot password-login until the code is redeemed.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	email := normalizeEmail(req.Email)

	hash, err := security.HashPassword(req.Password, s.cfg.Password)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	var verification *models.EmailVerificationToken
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Name:         strings.TrimSpace(req.Name),
			PasswordHash: &hash,
			Image:        req.Image,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return errors.New(errors.CodeConflict, "an account with this email already exists")
			}
			return errors.Wrap(errors.CodeInternal, err, "creating user")
		}

		verification, err = s.issueVerification(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Mail delivery is best-effort and happens outside the transaction; a
	// failed send must not roll back the account.
	s.sendVerificationMail(ctx, email, verification.Token)

	return &SignupResponse{
		Message: "account created, check your email for a verification code",
		Email:   email,
	}, nil
}

// Login authenticates with either a password or a one-time email code.
// Failures are opaque: absent user, missing hash, unverified email and wrong
// password all collapse into the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*SessionDTO, error) {
	email := normalizeEmail(req.Email)

	switch {
	case req.Code != "":
		return s.loginWithCode(ctx, email, req.Code)
	case req.Password != "":
		return s.loginWithPassword(ctx, email, req.Password)
	default:
		return nil, errors.New(errors.CodeValidation, "either password or code is required")
	}
}

func (s *Service) loginWithPassword(ctx context.Context, email, password string) (*SessionDTO, error) {
	userRepo := users.NewRepository(s.db.DB())

	user, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errInvalidCredentials
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up user")
	}

	if user.PasswordHash == nil || user.EmailVerifiedAt == nil {
		return nil, errInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil || !ok {
		return nil, errInvalidCredentials
	}

	return s.projectSession(ctx, user)
}

// loginWithCode redeems a verification code: inside one transaction the user
// is marked verified and the code (plus any siblings for the email) is
// destroyed, then a session is issued. Verification and login are one step.
func (s *Service) loginWithCode(ctx context.Context, email, code string) (*SessionDTO, error) {
	user, err := s.consumeVerification(ctx, email, code)
	if err != nil {
		if typed := errors.As(err); typed != nil {
			switch typed.Code() {
			case errors.CodeNotFound, errors.CodeExpired:
				return nil, errInvalidCredentials
			}
		}
		return nil, err
	}

	return s.projectSession(ctx, user)
}

// VerifyEmail redeems a verification code without issuing a session. Unlike
// login, its failures are distinguishable: unknown codes are 404 and expired
// ones are 410 so the frontend can offer a resend.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*users.UserDTO, error) {
	email := normalizeEmail(req.Email)

	user, err := s.consumeVerification(ctx, email, req.Token)
	if err != nil {
		return nil, err
	}

	return users.FromModel(user), nil
}

// ForgotPassword issues a reset link. It reports success whether or not the
// email exists, to prevent account enumeration.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)

	userRepo := users.NewRepository(s.db.DB())
	if _, err := userRepo.FindByEmail(ctx, email); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return errors.Wrap(errors.CodeInternal, err, "looking up user")
	}

	token, err := security.GenerateHexToken(resetTokenBytes)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "generating reset token")
	}

	row := &models.PasswordResetToken{
		Email:     email,
		Token:     token,
		ExpiresAt: s.now().Add(s.cfg.Tokens.ResetTTL),
	}
	tokenRepo := NewTokenRepository(s.db.DB())
	if err := tokenRepo.CreateReset(ctx, row); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "storing reset token")
	}

	s.sendResetMail(ctx, email, token)
	return nil
}

// ResetPassword consumes a reset token, replaces the credential and deletes
// every outstanding reset token for the email. Possessing a valid emailed
// link proves mailbox control, so the account is marked verified as well.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	hash, err := security.HashPassword(req.Password, s.cfg.Password)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	// An expired token fails the transaction, so its cleanup runs after the
	// rollback on the primary connection.
	var expiredEmail string
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		tokenRepo := NewTokenRepository(tx)
		userRepo := users.NewRepository(tx)

		row, err := tokenRepo.FindReset(ctx, req.Token)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeValidation, "invalid or expired reset token")
			}
			return errors.Wrap(errors.CodeInternal, err, "looking up reset token")
		}

		if !s.now().Before(row.ExpiresAt) {
			expiredEmail = row.Email
			return errors.New(errors.CodeValidation, "invalid or expired reset token")
		}

		user, err := userRepo.FindByEmail(ctx, row.Email)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeValidation, "invalid or expired reset token")
			}
			return errors.Wrap(errors.CodeInternal, err, "looking up user")
		}

		if err := userRepo.SetPasswordHash(ctx, user.ID, hash); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "updating password")
		}
		if user.EmailVerifiedAt == nil {
			if err := userRepo.MarkEmailVerified(ctx, user.ID, s.now()); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "marking email verified")
			}
		}

		if err := tokenRepo.DeleteResetsForEmail(ctx, row.Email); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "invalidating reset tokens")
		}
		return nil
	})

	if expiredEmail != "" {
		if derr := NewTokenRepository(s.db.DB()).DeleteResetsForEmail(ctx, expiredEmail); derr != nil {
			s.logger.Warn(ctx, "failed to drop expired reset tokens")
		}
	}
	return txErr
}

// consumeVerification validates the (email, token) pair in one transaction,
// marks the user verified and deletes every outstanding code for the email.
// An expired code fails the transaction, so its row is deleted afterwards on
// the primary connection; deleting it inside would be undone by the rollback.
func (s *Service) consumeVerification(ctx context.Context, email, code string) (*models.User, error) {
	var user *models.User
	var expiredID uuid.UUID

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		tokenRepo := NewTokenRepository(tx)
		userRepo := users.NewRepository(tx)

		row, err := tokenRepo.FindVerification(ctx, email, code)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "verification code not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "looking up verification code")
		}

		if !s.now().Before(row.ExpiresAt) {
			expiredID = row.ID
			return errors.New(errors.CodeExpired, "verification code expired")
		}

		user, err = userRepo.FindByID(ctx, row.UserID)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "loading user for verification")
		}

		if user.EmailVerifiedAt == nil {
			verifiedAt := s.now()
			if err := userRepo.MarkEmailVerified(ctx, user.ID, verifiedAt); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "marking email verified")
			}
			user.EmailVerifiedAt = &verifiedAt
		}

		if err := tokenRepo.DeleteVerificationsForEmail(ctx, email); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "consuming verification code")
		}
		return nil
	})

	if expiredID != uuid.Nil {
		if derr := NewTokenRepository(s.db.DB()).DeleteVerificationByID(ctx, expiredID); derr != nil {
			s.logger.Warn(ctx, "failed to drop expired verification code")
		}
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// issueVerification mints a six-digit code, retrying on the rare (email,
// token) collision with an earlier outstanding code.
func (s *Service) issueVerification(ctx context.Context, tx *gorm.DB, user *models.User) (*models.EmailVerificationToken, error) {
	tokenRepo := NewTokenRepository(tx)

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		code, err := security.GenerateNumericToken(verificationDigits)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "generating verification code")
		}

		row := &models.EmailVerificationToken{
			UserID:    user.ID,
			Email:     user.Email,
			Token:     code,
			ExpiresAt: s.now().Add(s.cfg.Tokens.VerificationTTL),
		}
		if err := tokenRepo.CreateVerification(ctx, row); err != nil {
			if db.IsUniqueViolation(err) {
				continue
			}
			return nil, errors.Wrap(errors.CodeInternal, err, "storing verification code")
		}
		return row, nil
	}

	return nil, errors.New(errors.CodeInternal, "could not issue a unique verification code")
}

// projectSession copies the principal into a fresh signed session token and
// stamps last_login_at.
func (s *Service) projectSession(ctx context.Context, user *models.User) (*SessionDTO, error) {
	token, err := auth.MintSessionToken(s.cfg.JWT, s.now(), auth.SessionPayload{
		UserID:             user.ID,
		Name:               user.Name,
		Image:              user.Image,
		OnboardingComplete: user.OnboardingComplete,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting session token")
	}

	userRepo := users.NewRepository(s.db.DB())
	if err := userRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn(s.logger.WithUserID(ctx, user.ID.String()), "failed to stamp last login")
	}

	return &SessionDTO{Token: token, User: users.FromModel(user)}, nil
}

func (s *Service) sendVerificationMail(ctx context.Context, email, code string) {
	msg := mailer.Message{
		To:      email,
		Subject: "Verify your email",
		Body:    "Your verification code is " + code + ". It expires in one hour.",
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "failed to send verification email", err)
	}
}

func (s *Service) sendResetMail(ctx context.Context, email, token string) {
	msg := mailer.Message{
		To:      email,
		Subject: "Reset your password",
		Body:    "Use this token to reset your password: " + token + ". It expires in one hour.",
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "failed to send reset email", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
