package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/linknest/internal/auth"
	"github.com/sakif/linknest/internal/service"
)

// LinkHandler exposes CRUD for page links and social links. Every route is
// behind the auth middleware; ownership is enforced in the service.
type LinkHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewLinkHandler creates a LinkHandler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{svc: svc, logger: logger}
}

// HandleList returns the caller's links in page order.
//
// HTTP: GET /api/links
func (h *LinkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	links, err := h.svc.ListLinks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// HandleCreate adds a link to the caller's page.
//
// HTTP: POST /api/links
func (h *LinkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid JSON body"})
		return
	}

	link, err := h.svc.CreateLink(r.Context(), userID, in.Title, in.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleUpdate modifies one of the caller's links.
//
// HTTP: PUT /api/links/{id}
func (h *LinkHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in struct {
		Title    *string `json:"title"`
		URL      *string `json:"url"`
		Position *int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid JSON body"})
		return
	}

	link, err := h.svc.UpdateLink(r.Context(), userID, r.PathValue("id"), service.UpdateLinkInput{
		Title:    in.Title,
		URL:      in.URL,
		Position: in.Position,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// HandleDelete removes one of the caller's links.
//
// HTTP: DELETE /api/links/{id}
func (h *LinkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.DeleteLink(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "link deleted"})
}

// HandleListSocial returns the caller's social links.
//
// HTTP: GET /api/social-links
func (h *LinkHandler) HandleListSocial(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	links, err := h.svc.ListSocialLinks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// HandleCreateSocial adds a social link.
//
// HTTP: POST /api/social-links
func (h *LinkHandler) HandleCreateSocial(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in struct {
		Platform string `json:"platform"`
		URL      string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid JSON body"})
		return
	}

	link, err := h.svc.CreateSocialLink(r.Context(), userID, in.Platform, in.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleUpdateSocial modifies one of the caller's social links.
//
// HTTP: PUT /api/social-links/{id}
func (h *LinkHandler) HandleUpdateSocial(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in struct {
		Platform *string `json:"platform"`
		URL      *string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid JSON body"})
		return
	}

	link, err := h.svc.UpdateSocialLink(r.Context(), userID, r.PathValue("id"), service.UpdateSocialLinkInput{
		Platform: in.Platform,
		URL:      in.URL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// HandleDeleteSocial removes one of the caller's social links.
//
// HTTP: DELETE /api/social-links/{id}
func (h *LinkHandler) HandleDeleteSocial(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.DeleteSocialLink(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "social link deleted"})
}
