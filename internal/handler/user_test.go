package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/linknest/internal/auth"
	"github.com/sakif/linknest/internal/model"
)

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("avatar", fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func authed(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func TestHandleUpdateMe_MultipartWithAvatar(t *testing.T) {
	users := newFakeUsers()
	blobs := newFakeBlob()
	user := users.add(model.User{Username: "alice", Email: "alice@example.com", Bio: "old bio"})
	h := newTestUserHandler(t, users, blobs)

	body, contentType := multipartBody(t, map[string]string{"bio": "new bio"}, "photo.png", []byte("png-bytes"))
	req := authed(httptest.NewRequest(http.MethodPut, "/api/users/me", body), user.ID)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleUpdateMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "new bio", profile.Bio)
	assert.True(t, strings.HasPrefix(profile.AvatarURL, "user/"), "avatar key %q", profile.AvatarURL)
	assert.True(t, strings.HasSuffix(profile.AvatarURL, ".png"))

	// the object the row references actually exists
	_, ok := blobs.objects[profile.AvatarURL]
	assert.True(t, ok)
}

func TestHandleUpdateMe_JSONPartialUpdate(t *testing.T) {
	users := newFakeUsers()
	user := users.add(model.User{Username: "alice", Email: "alice@example.com", Name: "Alice", Theme: "light"})
	h := newTestUserHandler(t, users, newFakeBlob())

	req := authed(httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{"bio":"json bio"}`)), user.ID)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleUpdateMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	stored := users.users[user.ID]
	assert.Equal(t, "json bio", stored.Bio)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, "light", stored.Theme)
}

func TestHandleUpdateMe_RejectsBadFileType(t *testing.T) {
	users := newFakeUsers()
	user := users.add(model.User{Username: "alice", Email: "alice@example.com"})
	h := newTestUserHandler(t, users, newFakeBlob())

	body, contentType := multipartBody(t, nil, "malware.exe", []byte("nope"))
	req := authed(httptest.NewRequest(http.MethodPut, "/api/users/me", body), user.ID)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleUpdateMe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDeleteAvatar_NoneSet(t *testing.T) {
	users := newFakeUsers()
	user := users.add(model.User{Username: "alice", Email: "alice@example.com"})
	h := newTestUserHandler(t, users, newFakeBlob())

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/users/me/avatar", nil), user.ID)
	rec := httptest.NewRecorder()

	h.HandleDeleteAvatar(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "not_found", errResp.Error)
}

func TestHandleDeleteAvatar(t *testing.T) {
	users := newFakeUsers()
	blobs := newFakeBlob()
	user := users.add(model.User{Username: "alice", Email: "alice@example.com", AvatarURL: "user/a.png"})
	blobs.objects["user/a.png"] = []byte("img")
	h := newTestUserHandler(t, users, blobs)

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/users/me/avatar", nil), user.ID)
	rec := httptest.NewRecorder()

	h.HandleDeleteAvatar(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, users.users[user.ID].AvatarURL)
	_, ok := blobs.objects["user/a.png"]
	assert.False(t, ok)
}

func TestHandleGetByUsername(t *testing.T) {
	users := newFakeUsers()
	users.add(model.User{
		Username: "alice",
		Email:    "alice@example.com",
		Name:     "Alice",
		Links:    []model.Link{{ID: "l1", Title: "Blog", URL: "https://blog"}},
	})
	h := newTestUserHandler(t, users, newFakeBlob())

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice", nil)
	req.SetPathValue("username", "alice")
	rec := httptest.NewRecorder()

	h.HandleGetByUsername(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var profile model.PublicProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.Username)
	require.Len(t, profile.Links, 1)
	assert.Equal(t, "Blog", profile.Links[0].Title)
	assert.NotNil(t, profile.SocialLinks)
}

func TestHandleGetByUsername_Unknown(t *testing.T) {
	h := newTestUserHandler(t, newFakeUsers(), newFakeBlob())

	req := httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil)
	req.SetPathValue("username", "ghost")
	rec := httptest.NewRecorder()

	h.HandleGetByUsername(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSuggestBio(t *testing.T) {
	users := newFakeUsers()
	user := users.add(model.User{Username: "alice", Email: "alice@example.com"})
	h := newTestUserHandler(t, users, newFakeBlob())

	req := authed(httptest.NewRequest(http.MethodPost, "/api/users/me/bio", strings.NewReader(`{"bio":"i like cats"}`)), user.ID)
	rec := httptest.NewRecorder()

	h.HandleSuggestBio(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a better bio", resp["bio"])
}

func TestNotFoundHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()

	NotFoundHandler(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}
