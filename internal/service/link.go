package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/model"
	"github.com/sakif/linknest/internal/repository"
)

// LinkService manages a user's page links and social links. Every mutation
// is scoped to the authenticated owner; a link belonging to someone else is
// indistinguishable from a missing one (404, never 403 — no existence
// oracle).
type LinkService struct {
	links  repository.LinkRepository
	social repository.SocialLinkRepository
	logger *slog.Logger
}

// NewLinkService creates a LinkService.
func NewLinkService(
	links repository.LinkRepository,
	social repository.SocialLinkRepository,
	logger *slog.Logger,
) *LinkService {
	return &LinkService{links: links, social: social, logger: logger}
}

// ListLinks returns the caller's links in page order.
func (s *LinkService) ListLinks(ctx context.Context, userID string) ([]model.Link, error) {
	links, err := s.links.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/link: listing links: %w", err)
	}
	if links == nil {
		links = []model.Link{}
	}
	return links, nil
}

// CreateLink appends a new link to the caller's page.
func (s *LinkService) CreateLink(ctx context.Context, userID, title, url string) (*model.Link, error) {
	if title == "" || url == "" {
		return nil, apperror.ValidationFailed("", "title and url are required")
	}

	existing, err := s.links.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/link: listing links: %w", err)
	}

	link := &model.Link{
		UserID:   userID,
		Title:    title,
		URL:      url,
		Position: len(existing),
	}
	if err := s.links.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/link: creating link: %w", err)
	}
	return link, nil
}

// UpdateLinkInput is a sparse link update.
type UpdateLinkInput struct {
	Title    *string
	URL      *string
	Position *int
}

// UpdateLink modifies one of the caller's links.
func (s *LinkService) UpdateLink(ctx context.Context, userID, linkID string, in UpdateLinkInput) (*model.Link, error) {
	link, err := s.ownedLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		link.Title = *in.Title
	}
	if in.URL != nil {
		link.URL = *in.URL
	}
	if in.Position != nil {
		link.Position = *in.Position
	}

	if err := s.links.UpdateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/link: updating link %s: %w", linkID, err)
	}
	return link, nil
}

// DeleteLink removes one of the caller's links.
func (s *LinkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	if _, err := s.ownedLink(ctx, userID, linkID); err != nil {
		return err
	}
	if err := s.links.DeleteLink(ctx, linkID); err != nil {
		return fmt.Errorf("service/link: deleting link %s: %w", linkID, err)
	}
	return nil
}

func (s *LinkService) ownedLink(ctx context.Context, userID, linkID string) (*model.Link, error) {
	link, err := s.links.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("service/link: fetching link %s: %w", linkID, err)
	}
	if link.UserID != userID {
		return nil, apperror.NotFound("link")
	}
	return link, nil
}

// ListSocialLinks returns the caller's social links.
func (s *LinkService) ListSocialLinks(ctx context.Context, userID string) ([]model.SocialLink, error) {
	links, err := s.social.ListSocialByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/link: listing social links: %w", err)
	}
	if links == nil {
		links = []model.SocialLink{}
	}
	return links, nil
}

// CreateSocialLink adds a platform handle to the caller's page.
func (s *LinkService) CreateSocialLink(ctx context.Context, userID, platform, url string) (*model.SocialLink, error) {
	if platform == "" || url == "" {
		return nil, apperror.ValidationFailed("", "platform and url are required")
	}

	link := &model.SocialLink{
		UserID:   userID,
		Platform: platform,
		URL:      url,
	}
	if err := s.social.CreateSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/link: creating social link: %w", err)
	}
	return link, nil
}

// UpdateSocialLinkInput is a sparse social-link update.
type UpdateSocialLinkInput struct {
	Platform *string
	URL      *string
}

// UpdateSocialLink modifies one of the caller's social links.
func (s *LinkService) UpdateSocialLink(ctx context.Context, userID, linkID string, in UpdateSocialLinkInput) (*model.SocialLink, error) {
	link, err := s.ownedSocialLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	if in.Platform != nil {
		link.Platform = *in.Platform
	}
	if in.URL != nil {
		link.URL = *in.URL
	}

	if err := s.social.UpdateSocialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service/link: updating social link %s: %w", linkID, err)
	}
	return link, nil
}

// DeleteSocialLink removes one of the caller's social links.
func (s *LinkService) DeleteSocialLink(ctx context.Context, userID, linkID string) error {
	if _, err := s.ownedSocialLink(ctx, userID, linkID); err != nil {
		return err
	}
	if err := s.social.DeleteSocialLink(ctx, linkID); err != nil {
		return fmt.Errorf("service/link: deleting social link %s: %w", linkID, err)
	}
	return nil
}

func (s *LinkService) ownedSocialLink(ctx context.Context, userID, linkID string) (*model.SocialLink, error) {
	link, err := s.social.GetSocialLinkByID(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("service/link: fetching social link %s: %w", linkID, err)
	}
	if link.UserID != userID {
		return nil, apperror.NotFound("social link")
	}
	return link, nil
}
