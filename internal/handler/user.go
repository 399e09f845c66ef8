package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/linknest/internal/apperror"
	"github.com/sakif/linknest/internal/auth"
	"github.com/sakif/linknest/internal/service"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UserHandler exposes profile reads, the profile/avatar update flow, avatar
// deletion, and the bio suggestion endpoint.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// HandleMe returns the authenticated user's own profile.
//
// HTTP: GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	profile, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleGetByUsername returns the public profile for a username, links
// included. No authentication required.
//
// HTTP: GET /api/users/{username}
func (h *UserHandler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "username is required"})
		return
	}

	profile, err := h.svc.GetPublicProfile(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateMe applies a partial profile update, optionally replacing the
// avatar.
//
// HTTP: PUT /api/users/me
//
// Two body formats are accepted: multipart/form-data with name/bio/theme
// fields and an optional "avatar" file part, or a plain JSON body when no
// file is being uploaded. Absent fields are left untouched.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	var in service.UpdateProfileInput
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		in, err = parseMultipartUpdate(r)
	} else {
		in, err = parseJSONUpdate(r)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleDeleteAvatar removes the user's custom avatar.
//
// HTTP: DELETE /api/users/me/avatar
func (h *UserHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	if err := h.svc.DeleteAvatar(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "avatar deleted"})
}

// HandleSuggestBio returns an AI-generated rewrite of the submitted bio.
//
// HTTP: POST /api/users/me/bio
func (h *UserHandler) HandleSuggestBio(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Bio string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid JSON body"})
		return
	}

	text, err := h.svc.SuggestBio(r.Context(), in.Bio)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"bio": text})
}

// parseJSONUpdate reads a sparse JSON update body. Pointer fields keep the
// supplied-vs-absent distinction through decoding.
func parseJSONUpdate(r *http.Request) (service.UpdateProfileInput, error) {
	var body struct {
		Name  *string `json:"name"`
		Bio   *string `json:"bio"`
		Theme *string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return service.UpdateProfileInput{}, apperror.ValidationFailed("", "Invalid request body")
	}
	return service.UpdateProfileInput{Name: body.Name, Bio: body.Bio, Theme: body.Theme}, nil
}

// parseMultipartUpdate reads form fields plus the optional avatar file. The
// upload is processed here — extension check, generated object name, bytes
// buffered — so the service receives a ready-to-store AvatarUpload.
func parseMultipartUpdate(r *http.Request) (service.UpdateProfileInput, error) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		return service.UpdateProfileInput{}, apperror.ValidationFailed("", "Invalid request body")
	}

	var in service.UpdateProfileInput
	for field, dst := range map[string]**string{
		"name":  &in.Name,
		"bio":   &in.Bio,
		"theme": &in.Theme,
	} {
		if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
			v := values[0]
			*dst = &v
		}
	}

	file, header, err := r.FormFile("avatar")
	if err == http.ErrMissingFile {
		return in, nil
	}
	if err != nil {
		return service.UpdateProfileInput{}, apperror.ValidationFailed("", "Invalid request body")
	}
	defer file.Close()

	upload, err := processAvatar(file, header)
	if err != nil {
		return service.UpdateProfileInput{}, err
	}
	in.Avatar = upload
	return in, nil
}

// processAvatar validates the image type and produces the generated object
// name the blob store will use.
func processAvatar(file multipart.File, header *multipart.FileHeader) (*service.AvatarUpload, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		return nil, apperror.ValidationFailed("avatar", "Invalid file type, only jpg, jpeg, png, and webp images are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		return nil, apperror.ValidationFailed("avatar", "Failed to read uploaded file")
	}
	if len(data) > maxAvatarBytes {
		return nil, apperror.ValidationFailed("avatar", "Avatar must be 5MB or smaller")
	}

	return &service.AvatarUpload{
		Name:        xid.New().String() + ext,
		Data:        data,
		ContentType: contentType,
	}, nil
}
