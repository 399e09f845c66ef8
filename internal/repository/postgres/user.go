package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/model"
	"github.com/sakif/linknest/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user row. A unique-index violation on username or
// email comes back as a conflict error, so registration stays correct even
// if two requests race past the pre-insert existence check.
func (d *DB) Create(ctx context.Context, user *model.User) error {
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("Username or email already registered")
		}
		return fmt.Errorf("postgres: creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no such row exists.
func (d *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := d.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetByUsername retrieves a user by username with links preloaded, ordered
// for page rendering. This backs the public profile endpoint.
func (d *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := d.db.WithContext(ctx).
		Preload("Links", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, created_at ASC")
		}).
		Preload("SocialLinks").
		First(&u, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: getting user by username %s: %w", username, err)
	}
	return &u, nil
}

// FindForLogin looks up a password-provider account by email or username.
// The provider filter is part of the query: Google-provisioned rows (empty
// password) can never be returned to the password login path.
func (d *DB) FindForLogin(ctx context.Context, emailOrUsername string) (*model.User, error) {
	var u model.User
	err := d.db.WithContext(ctx).
		Where("provider = ?", model.ProviderEmail).
		Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: finding login candidate: %w", err)
	}
	return &u, nil
}

// FindByUsernameOrEmail returns the first user matching either identifier,
// or ErrNotFound. Registration uses it to report which identity conflicts.
func (d *DB) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var u model.User
	err := d.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: finding user by username/email: %w", err)
	}
	return &u, nil
}

// UpsertByEmail inserts the user unless a row with the same email exists.
// ON CONFLICT DO NOTHING plus the unique index makes concurrent first
// logins for the same email safe; the canonical row is read back afterwards
// and written into user.
func (d *DB) UpsertByEmail(ctx context.Context, user *model.User) error {
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("postgres: upserting user by email: %w", err)
	}

	var canonical model.User
	if err := d.db.WithContext(ctx).First(&canonical, "email = ?", user.Email).Error; err != nil {
		return fmt.Errorf("postgres: reading back upserted user: %w", err)
	}
	*user = canonical
	return nil
}

// UpdateFields applies a sparse update in a single statement and returns
// the refreshed record.
func (d *DB) UpdateFields(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	tx := d.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields)
	if tx.Error != nil {
		return nil, fmt.Errorf("postgres: updating user %s: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, apperror.NotFound("user")
	}

	return d.GetByID(ctx, id)
}
