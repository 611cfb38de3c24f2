package catalogs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mateovidal/catalogbase-backend/internal/users"
	"github.com/mateovidal/catalogbase-backend/pkg/db"
	"github.com/mateovidal/catalogbase-backend/pkg/db/models"
	"github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	// maxSlugAttempts bounds the random-suffix probe when synthesizing a slug.
	maxSlugAttempts  = 10
	slugSuffixDigits = 4
)

// Service resolves the catalog that a user's writes are scoped to. Resolution
// is idempotent: the first call for a user lazily creates their catalog, every
// later call returns the same row.
type Service struct {
	db     *db.Client
	logger *logger.Logger
}

type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

func NewService(params ServiceParams) *Service {
	return &Service{db: params.DB, logger: params.Logger}
}

// ResolveByUserID loads the user and resolves their catalog in one
// transaction. Controllers use this to scope tenant queries.
func (s *Service) ResolveByUserID(ctx context.Context, userID uuid.UUID) (*models.Catalog, error) {
	var catalog *models.Catalog
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := users.NewRepository(tx).FindByID(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeUnauthorized, "unknown principal")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading user")
		}
		catalog, err = s.ResolveForUser(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// ResolveForUser returns the user's catalog, creating one inside tx when none
// exists yet. The synthesized name and slug derive from the user's email
// local-part; slug collisions get a numeric suffix.
func (s *Service) ResolveForUser(ctx context.Context, tx *gorm.DB, user *models.User) (*models.Catalog, error) {
	repo := NewRepository(tx)

	catalog, err := repo.FindByOwner(ctx, user.ID)
	if err == nil {
		return catalog, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up catalog")
	}

	base := slugBase(user.Email)
	slug, err := s.availableSlug(ctx, repo, base)
	if err != nil {
		return nil, err
	}

	catalog = &models.Catalog{
		OwnerID: user.ID,
		Name:    base,
		Slug:    slug,
	}
	if err := repo.Create(ctx, catalog); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating catalog")
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"catalog_id": catalog.ID,
		"slug":       catalog.Slug,
	}), "catalog created for user")

	return catalog, nil
}

// availableSlug appends a random 4-digit suffix to the base and probes for
// collisions, drawing a fresh suffix on every attempt.
func (s *Service) availableSlug(ctx context.Context, repo *Repository, base string) (string, error) {
	for i := 0; i < maxSlugAttempts; i++ {
		suffix, err := security.GenerateNumericToken(slugSuffixDigits)
		if err != nil {
			return "", errors.Wrap(errors.CodeInternal, err, "generating slug suffix")
		}
		candidate := fmt.Sprintf("%s-%s", base, suffix)

		taken, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(errors.CodeInternal, err, "checking slug availability")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.New(errors.CodeInternal, "could not synthesize a unique catalog slug")
}

// slugBase lowercases the email local-part and strips anything that is not a
// letter, digit or hyphen.
func slugBase(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	local = strings.ToLower(local)

	var b strings.Builder
	lastHyphen := false
	for _, r := range local {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen && b.Len() > 0:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "catalog"
	}
	return out
}
