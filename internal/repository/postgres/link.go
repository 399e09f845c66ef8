package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/model"
	"github.com/sakif/linknest/internal/repository"
)

var (
	_ repository.LinkRepository       = (*DB)(nil)
	_ repository.SocialLinkRepository = (*DB)(nil)
)

func (d *DB) ListByUser(ctx context.Context, userID string) ([]model.Link, error) {
	var links []model.Link
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC, created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: listing links for user %s: %w", userID, err)
	}
	return links, nil
}

func (d *DB) CreateLink(ctx context.Context, link *model.Link) error {
	if err := d.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("postgres: creating link: %w", err)
	}
	return nil
}

func (d *DB) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	var link model.Link
	err := d.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("link")
		}
		return nil, fmt.Errorf("postgres: getting link %s: %w", id, err)
	}
	return &link, nil
}

func (d *DB) UpdateLink(ctx context.Context, link *model.Link) error {
	if err := d.db.WithContext(ctx).Save(link).Error; err != nil {
		return fmt.Errorf("postgres: updating link %s: %w", link.ID, err)
	}
	return nil
}

func (d *DB) DeleteLink(ctx context.Context, id string) error {
	if err := d.db.WithContext(ctx).Delete(&model.Link{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("postgres: deleting link %s: %w", id, err)
	}
	return nil
}

func (d *DB) ListSocialByUser(ctx context.Context, userID string) ([]model.SocialLink, error) {
	var links []model.SocialLink
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: listing social links for user %s: %w", userID, err)
	}
	return links, nil
}

func (d *DB) CreateSocialLink(ctx context.Context, link *model.SocialLink) error {
	if err := d.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("postgres: creating social link: %w", err)
	}
	return nil
}

func (d *DB) GetSocialLinkByID(ctx context.Context, id string) (*model.SocialLink, error) {
	var link model.SocialLink
	err := d.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("social link")
		}
		return nil, fmt.Errorf("postgres: getting social link %s: %w", id, err)
	}
	return &link, nil
}

func (d *DB) UpdateSocialLink(ctx context.Context, link *model.SocialLink) error {
	if err := d.db.WithContext(ctx).Save(link).Error; err != nil {
		return fmt.Errorf("postgres: updating social link %s: %w", link.ID, err)
	}
	return nil
}

func (d *DB) DeleteSocialLink(ctx context.Context, id string) error {
	if err := d.db.WithContext(ctx).Delete(&model.SocialLink{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("postgres: deleting social link %s: %w", id, err)
	}
	return nil
}
