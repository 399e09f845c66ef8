package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/blob"
	"github.com/sakif/linknest/internal/genai"
	"github.com/sakif/linknest/internal/model"
	"github.com/sakif/linknest/internal/repository"
)

// avatarPrefix is the object-key directory for uploaded avatars.
const avatarPrefix = "user/"

// BioGenerator produces a bio suggestion from a prompt. Implemented by
// genai.Client; tests use a fake.
type BioGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// UserService owns profile reads, the avatar-update transaction flow, and
// avatar deletion.
type UserService struct {
	users  repository.UserRepository
	blobs  blob.Store
	bios   BioGenerator
	logger *slog.Logger
}

// NewUserService creates a UserService. bios may be nil when no generative
// AI key is configured; SuggestBio then fails cleanly.
func NewUserService(
	users repository.UserRepository,
	blobs blob.Store,
	bios BioGenerator,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		blobs:  blobs,
		bios:   bios,
		logger: logger,
	}
}

// GetProfile returns the owner projection for the given user ID.
func (s *UserService) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.Profile{}, fmt.Errorf("service/user: fetching user %s: %w", id, err)
	}
	return model.NewProfile(user), nil
}

// GetPublicProfile returns the public by-username projection, links
// included.
func (s *UserService) GetPublicProfile(ctx context.Context, username string) (model.PublicProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return model.PublicProfile{}, fmt.Errorf("service/user: fetching user %s: %w", username, err)
	}
	return model.NewPublicProfile(user), nil
}

// AvatarUpload is a processed avatar image ready for storage: the bytes and
// the object name generated by the upstream file-processing step.
type AvatarUpload struct {
	Name        string
	Data        []byte
	ContentType string
}

// UpdateProfileInput is a sparse update: nil pointers mean "leave the field
// untouched". Avatar, when set, replaces the stored avatar image.
type UpdateProfileInput struct {
	Name   *string
	Bio    *string
	Theme  *string
	Avatar *AvatarUpload
}

// UpdateProfile applies a partial profile update, optionally replacing the
// avatar, while keeping the blob store and the database row consistent.
//
// Order matters. A new avatar is uploaded before the database write: until
// the row commits, the new object is provisional. If the write then fails,
// the one genuine undo path runs — the just-uploaded object is deleted so
// no orphan outlives the failed request — and the original error still
// propagates. Deleting the superseded old object happens only after the
// write succeeds and is best-effort: a leaked old avatar is an accepted
// resource tolerance, not a correctness violation.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (model.Profile, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("service/user: loading user %s: %w", userID, err)
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Theme != nil {
		fields["theme"] = *in.Theme
	}

	newKey := ""
	if in.Avatar != nil && in.Avatar.Name != "" && len(in.Avatar.Data) > 0 {
		// Upload before committing the row. A failure here aborts the whole
		// update with nothing persisted, so no compensation is needed.
		newKey = avatarPrefix + in.Avatar.Name
		if err := s.blobs.Put(ctx, newKey, in.Avatar.Data, in.Avatar.ContentType); err != nil {
			return model.Profile{}, fmt.Errorf("service/user: uploading avatar: %w", err)
		}
		fields["avatar_url"] = newKey
	} else {
		// No new avatar: re-set the stored reference explicitly rather than
		// dropping it from the update set.
		fields["avatar_url"] = current.AvatarURL
	}

	updated, err := s.users.UpdateFields(ctx, userID, fields)
	if err != nil {
		if newKey != "" {
			// The row never committed, so the upload is an orphan. Remove it,
			// then let the caller see the original failure. A failed delete
			// here is logged and accepted as a leak.
			if delErr := s.blobs.Delete(ctx, newKey); delErr != nil {
				s.logger.Error("failed to clean up orphaned avatar upload",
					slog.String("key", newKey),
					slog.String("error", delErr.Error()),
				)
			}
		}
		return model.Profile{}, fmt.Errorf("service/user: updating user %s: %w", userID, err)
	}

	if newKey != "" && current.AvatarURL != "" {
		// Row now references the new object; the old one is unreferenced.
		// Best-effort cleanup, never failing the request.
		if delErr := s.blobs.Delete(ctx, current.AvatarURL); delErr != nil {
			s.logger.Warn("failed to delete superseded avatar",
				slog.String("key", current.AvatarURL),
				slog.String("error", delErr.Error()),
			)
		}
	}

	return model.NewProfile(updated), nil
}

// DeleteAvatar removes the user's custom avatar. The database reference is
// cleared first — the row is the source of truth — then the object is
// deleted best-effort. Fails with a NotFound error when no avatar is set.
func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("service/user: loading user %s: %w", userID, err)
	}

	if current.AvatarURL == "" {
		return apperror.NotFoundMsg("No avatar to delete")
	}

	if _, err := s.users.UpdateFields(ctx, userID, map[string]any{"avatar_url": ""}); err != nil {
		return fmt.Errorf("service/user: clearing avatar for user %s: %w", userID, err)
	}

	if delErr := s.blobs.Delete(ctx, current.AvatarURL); delErr != nil {
		s.logger.Warn("failed to delete avatar object",
			slog.String("key", current.AvatarURL),
			slog.String("error", delErr.Error()),
		)
	}

	return nil
}

// SuggestBio asks the generative AI service to rewrite the given draft bio.
func (s *UserService) SuggestBio(ctx context.Context, bio string) (string, error) {
	if bio == "" {
		return "", apperror.ValidationFailed("bio", "bio is required")
	}
	if s.bios == nil {
		return "", fmt.Errorf("service/user: bio generation is not configured")
	}

	text, err := s.bios.GenerateText(ctx, genai.BioPrompt(bio))
	if err != nil {
		return "", fmt.Errorf("service/user: generating bio: %w", err)
	}
	return text, nil
}
