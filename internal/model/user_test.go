package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile_ExcludesPassword(t *testing.T) {
	u := &User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "$2a$12$somethinghashed",
		Provider: ProviderEmail,
	}

	data, err := json.Marshal(NewProfile(u))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "somethinghashed")
}

func TestNewPublicProfile_SlicesNeverNil(t *testing.T) {
	p := NewPublicProfile(&User{ID: "u1", Username: "alice"})

	require.NotNil(t, p.Links)
	require.NotNil(t, p.SocialLinks)

	// clients get arrays, not nulls
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"links":[]`)
	assert.Contains(t, string(data), `"socialLinks":[]`)
}
