// Package repository declares the storage contracts consumed by the service
// layer. The postgres subpackage provides the GORM-backed implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/linknest/internal/model"
)

// UserRepository is the user-store contract.
//
// UpdateFields applies a sparse update: only the supplied columns are
// written, in a single statement, and the refreshed record is returned.
// UpsertByEmail implements find-or-create for OAuth provisioning as a real
// upsert — the uniqueness invariant lives in the database, not in a
// read-then-write sequence.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	FindForLogin(ctx context.Context, emailOrUsername string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	UpsertByEmail(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*model.User, error)
}

// LinkRepository is the contract for the page links of a user. Ownership
// checks are the service layer's job; these methods operate by ID.
type LinkRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Link, error)
	CreateLink(ctx context.Context, link *model.Link) error
	GetLinkByID(ctx context.Context, id string) (*model.Link, error)
	UpdateLink(ctx context.Context, link *model.Link) error
	DeleteLink(ctx context.Context, id string) error
}

// SocialLinkRepository mirrors LinkRepository for social platform handles.
type SocialLinkRepository interface {
	ListSocialByUser(ctx context.Context, userID string) ([]model.SocialLink, error)
	CreateSocialLink(ctx context.Context, link *model.SocialLink) error
	GetSocialLinkByID(ctx context.Context, id string) (*model.SocialLink, error)
	UpdateSocialLink(ctx context.Context, link *model.SocialLink) error
	DeleteSocialLink(ctx context.Context, id string) error
}
