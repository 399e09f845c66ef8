package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/model"
)

// In-memory fakes for the repository and blob interfaces. Hand-written
// fakes keep the tests readable: what each one does is right here, not
// behind a mock framework.

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	nextID int

	createErr error
	updateErr error
	upsertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) add(u model.User) *model.User {
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
		f.nextID++
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperror.Conflict("Username or email already registered")
		}
	}
	*user = *f.add(*user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) FindForLogin(ctx context.Context, emailOrUsername string) (*model.User, error) {
	for _, u := range f.users {
		if u.Provider != model.ProviderEmail {
			continue
		}
		if u.Email == emailOrUsername || u.Username == emailOrUsername {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) UpsertByEmail(ctx context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			*user = *existing
			return nil
		}
	}
	*user = *f.add(*user)
	return nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
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
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

type fakeBlobStore struct {
	objects map[string][]byte
	puts    []string
	deletes []string

	putErr    error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.puts = append(f.puts, key)
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobStore) has(key string) bool {
	_, ok := f.objects[key]
	return ok
}

type fakeLinkRepo struct {
	links  map[string]*model.Link
	social map[string]*model.SocialLink
	nextID int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{
		links:  make(map[string]*model.Link),
		social: make(map[string]*model.SocialLink),
		nextID: 1,
	}
}

func (f *fakeLinkRepo) ListByUser(ctx context.Context, userID string) ([]model.Link, error) {
	var out []model.Link
	for _, l := range f.links {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) CreateLink(ctx context.Context, link *model.Link) error {
	link.ID = fmt.Sprintf("link-%d", f.nextID)
	f.nextID++
	copied := *link
	f.links[link.ID] = &copied
	return nil
}

func (f *fakeLinkRepo) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	l, ok := f.links[id]
	if !ok {
		return nil, apperror.NotFound("link")
	}
	copied := *l
	return &copied, nil
}

func (f *fakeLinkRepo) UpdateLink(ctx context.Context, link *model.Link) error {
	copied := *link
	f.links[link.ID] = &copied
	return nil
}

func (f *fakeLinkRepo) DeleteLink(ctx context.Context, id string) error {
	delete(f.links, id)
	return nil
}

func (f *fakeLinkRepo) ListSocialByUser(ctx context.Context, userID string) ([]model.SocialLink, error) {
	var out []model.SocialLink
	for _, l := range f.social {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) CreateSocialLink(ctx context.Context, link *model.SocialLink) error {
	link.ID = fmt.Sprintf("social-%d", f.nextID)
	f.nextID++
	copied := *link
	f.social[link.ID] = &copied
	return nil
}

func (f *fakeLinkRepo) GetSocialLinkByID(ctx context.Context, id string) (*model.SocialLink, error) {
	l, ok := f.social[id]
	if !ok {
		return nil, apperror.NotFound("social link")
	}
	copied := *l
	return &copied, nil
}

func (f *fakeLinkRepo) UpdateSocialLink(ctx context.Context, link *model.SocialLink) error {
	copied := *link
	f.social[link.ID] = &copied
	return nil
}

func (f *fakeLinkRepo) DeleteSocialLink(ctx context.Context, id string) error {
	delete(f.social, id)
	return nil
}

type fakeBioGen struct {
	text string
	err  error
}

func (f *fakeBioGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strptr(s string) *string { return &s }
