package handler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/auth"
	"github.com/sakif/linknest/internal/model"
	"github.com/sakif/linknest/internal/service"
)

// Minimal in-memory repository and blob fakes so handler tests can run the
// real service layer end to end over httptest.

type fakeUsers struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUsers) add(u model.User) *model.User {
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
		f.nextID++
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUsers) Create(ctx context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperror.Conflict("Username or email already registered")
		}
	}
	*user = *f.add(*user)
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUsers) FindForLogin(ctx context.Context, emailOrUsername string) (*model.User, error) {
	for _, u := range f.users {
		if u.Provider == model.ProviderEmail && (u.Email == emailOrUsername || u.Username == emailOrUsername) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUsers) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUsers) UpsertByEmail(ctx context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			*user = *existing
			return nil
		}
	}
	*user = *f.add(*user)
	return nil
}

func (f *fakeUsers) UpdateFields(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "name":
			u.Name = s
		case "bio":
			u.Bio = s
		case "theme":
			u.Theme = s
		case "avatar_url":
			u.AvatarURL = s
		}
	}
	copied := *u
	return &copied, nil
}

type fakeBlob struct {
	objects map[string][]byte
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: make(map[string][]byte)}
}

func (f *fakeBlob) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.objects[key] = data
	return nil
}

func (f *fakeBlob) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeBios struct{ text string }

func (f *fakeBios) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.text, nil
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	return ts
}

func newTestAuthHandler(t *testing.T, users *fakeUsers, production bool) *AuthHandler {
	t.Helper()
	svc := service.NewAuthService(users, testTokens(t), auth.NewPasswordServiceForTest(4), testLogger(t))
	return NewAuthHandler(svc, nil, "http://localhost:8080/", production, testLogger(t))
}

func newTestUserHandler(t *testing.T, users *fakeUsers, blobs *fakeBlob) *UserHandler {
	t.Helper()
	svc := service.NewUserService(users, blobs, &fakeBios{text: "a better bio"}, testLogger(t))
	return NewUserHandler(svc, testLogger(t))
}
