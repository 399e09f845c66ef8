package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link is one entry on a user's public page, ordered by Position.
type Link struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey"`
	UserID    string    `json:"-" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	URL       string    `json:"url" gorm:"not null"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// SocialLink is a platform handle (e.g. "github", "instagram") shown as an
// icon row on the public page, separate from the main link list.
type SocialLink struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey"`
	UserID    string    `json:"-" gorm:"index;not null"`
	Platform  string    `json:"platform" gorm:"not null"`
	URL       string    `json:"url" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *SocialLink) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
