package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sakif/linknest/internal/apperror"
)

// GoogleUser is the portion of Google's userinfo response we care about.
//
// All three fields are required for account provisioning: email is the
// account identity, name and picture seed the profile. Google can omit any
// of them depending on scopes and account settings, so Exchange validates
// the assertion and rejects incomplete ones.
type GoogleUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow. The code-for-token exchange is server-to-server: the access
// token never reaches the browser.
type GoogleProvider struct {
	config *oauth2.Config
	// overridable in tests to point at a local httptest server
	userinfoURL string
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
// callbackURL must exactly match the redirect URI registered in the Google
// Cloud console.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userinfoURL: userinfoEndpoint,
	}
}

// AuthURL returns the consent-screen URL to redirect the user to. The state
// value is generated by the caller and verified on callback (CSRF check).
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// Google userinfo assertion. An assertion missing email, name, or picture
// is an authentication failure, not a partial success.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// Authorization header on every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if err := ValidateGoogleUser(&gu); err != nil {
		return nil, err
	}

	return &gu, nil
}

// ValidateGoogleUser checks that the identity assertion carries every field
// account provisioning needs.
func ValidateGoogleUser(gu *GoogleUser) error {
	if gu.Email == "" || gu.Name == "" || gu.Picture == "" {
		return apperror.Unauthorized("Invalid credentials")
	}
	return nil
}
