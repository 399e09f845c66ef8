package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/linknest/internal/auth"
	"github.com/sakif/linknest/internal/model"
	"github.com/sakif/linknest/internal/service"
)

// sessionMaxAge is the lifetime of the session cookie, matching the JWT
// expiry.
const sessionMaxAge = 24 * 60 * 60

// AuthHandler exposes registration, both login paths, logout, and session
// verification.
type AuthHandler struct {
	svc         *service.AuthService
	google      *auth.GoogleProvider
	frontendURL string
	production  bool
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. google may be nil when OAuth is
// not configured; the server then skips registering the Google routes.
func NewAuthHandler(
	svc *service.AuthService,
	google *auth.GoogleProvider,
	frontendURL string,
	production bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		svc:         svc,
		google:      google,
		frontendURL: frontendURL,
		production:  production,
		logger:      logger,
	}
}

// sessionCookie builds the "token" cookie. Secure and SameSite toggle
// together with the deployment environment: production serves cross-site
// over HTTPS (Secure + SameSite=None), development relaxes both.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// HandleRegister creates an email/password account.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid JSON body"})
		return
	}

	user, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.NewProfile(user))
}

// HandleLogin authenticates with email-or-username plus password and sets
// the session cookie.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		EmailOrUsername string `json:"emailOrUsername"`
		Password        string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid JSON body"})
		return
	}

	result, err := h.svc.Login(r.Context(), in.EmailOrUsername, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, sessionMaxAge))
	writeJSON(w, http.StatusOK, model.NewProfile(result.User))
}

// HandleGoogleLogin redirects the browser to Google's consent screen.
//
// HTTP: GET /api/auth/google
//
// The random state value is stored in a short-lived cookie and verified on
// callback, which proves the callback belongs to a flow this server
// started.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow: verifies the state,
// exchanges the code for a userinfo assertion, provisions or finds the
// account, sets the session cookie, and redirects to the frontend.
//
// HTTP: GET /api/auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch or missing")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Invalid OAuth state"})
		return
	}

	// state cookie is single-use
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing OAuth code"})
		return
	}

	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	result, err := h.svc.LoginOrRegisterGoogle(r.Context(), gu)
	if err != nil {
		h.logger.Error("google callback: provisioning failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, sessionMaxAge))
	http.Redirect(w, r, h.frontendURL, http.StatusSeeOther)
}

// HandleLogout clears the session cookie. Logging out twice is fine: both
// calls succeed and leave the same state.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleVerify confirms the session and returns the caller's ID. The auth
// middleware has already validated the cookie by the time this runs.
//
// HTTP: GET /api/auth/verify
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": userID})
}
