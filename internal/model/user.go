// Package model defines the data structures used throughout the application.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider tags which authentication path a user account was created with.
// Password login is only valid for ProviderEmail accounts; Google-provisioned
// accounts carry an empty password and authenticate via OAuth only.
type Provider string

const (
	ProviderEmail  Provider = "EMAIL"
	ProviderGoogle Provider = "GOOGLE"
)

// User represents a registered account and its public profile.
//
// Username and email carry unique indexes so the one-row-per-identity
// invariant is enforced by the database, not by check-then-act application
// code. AvatarURL holds the blob store object key of the custom avatar; an
// empty string means the user has none.
//
// The password hash is tagged json:"-" as a safety net, but handlers should
// return Profile or PublicProfile projections anyway, never the raw record.
type User struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-"`
	Provider  Provider  `json:"provider" gorm:"not null;default:EMAIL"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Theme     string    `json:"theme"`
	AvatarURL string    `json:"avatarUrl" gorm:"column:avatar_url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Links       []Link       `json:"links,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the immutable record ID.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile is the projection of a User returned to its owner. It is an
// explicit field allowlist: password and provider internals are excluded by
// construction, not by tag.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	Bio       string    `json:"bio"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicProfile is the by-username projection served to anyone. It extends
// Profile with the user's links so a single request can render a page.
type PublicProfile struct {
	Profile
	Links       []Link       `json:"links"`
	SocialLinks []SocialLink `json:"socialLinks"`
}

// NewProfile builds the owner projection from a full record.
func NewProfile(u *User) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Theme:     u.Theme,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewPublicProfile builds the public projection, including links. The slices
// are never nil so the JSON always contains arrays.
func NewPublicProfile(u *User) PublicProfile {
	p := PublicProfile{
		Profile:     NewProfile(u),
		Links:       u.Links,
		SocialLinks: u.SocialLinks,
	}
	if p.Links == nil {
		p.Links = []Link{}
	}
	if p.SocialLinks == nil {
		p.SocialLinks = []SocialLink{}
	}
	return p
}
