// Package git implements the Git identity normalizer against the GitHub OAuth
// flow (github.com or a GitHub Enterprise host). The inbound token is an OAuth
// authorization code; the normalizer exchanges it for an access token and reads
// the authenticated user's profile and primary email.
package git

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
	"golang.org/x/oauth2"
)

const (
	defaultHost   = "https://github.com"
	defaultAPIURL = "https://api.github.com"
)

// Normalizer exchanges GitHub authorization codes for normalized identities
type Normalizer struct {
	// HTTPClient overrides the client used for API calls; nil means the
	// oauth2 token-bound client. Tests inject a stub server through it.
	HTTPClient *http.Client
}

// NewNormalizer creates a Git identity normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// endpoints returns the OAuth endpoints for the configured host.
// GitHub Enterprise serves both the OAuth and API endpoints from the
// instance host rather than a separate api subdomain.
func endpoints(host string) (oauth2.Endpoint, string) {
	if host == "" || host == defaultHost {
		return oauth2.Endpoint{
			AuthURL:  defaultHost + "/login/oauth/authorize",
			TokenURL: defaultHost + "/login/oauth/access_token",
		}, defaultAPIURL
	}
	host = strings.TrimRight(host, "/")
	return oauth2.Endpoint{
		AuthURL:  host + "/login/oauth/authorize",
		TokenURL: host + "/login/oauth/access_token",
	}, host + "/api/v3"
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// SignIn exchanges the authorization code and fetches the user's profile.
func (n *Normalizer) SignIn(ctx context.Context, creds auth.Credentials, cfg *models.SSOConfig) (*auth.NormalizedIdentity, error) {
	if cfg.Configs.ClientID == "" || cfg.Configs.ClientSecret == "" {
		return nil, fmt.Errorf("git sign-in is not configured")
	}

	endpoint, apiBase := endpoints(cfg.Configs.Host)
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.Configs.ClientID,
		ClientSecret: cfg.Configs.ClientSecret,
		Endpoint:     endpoint,
	}

	if n.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, n.HTTPClient)
	}

	token, err := oauthCfg.Exchange(ctx, creds.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	client := oauthCfg.Client(ctx, token)

	user, err := fetchUser(ctx, client, apiBase)
	if err != nil {
		return nil, err
	}

	email := user.Email
	if email == "" {
		// The profile email is often hidden; the emails endpoint needs the
		// user:email scope and lists the verified primary address.
		email, err = fetchPrimaryEmail(ctx, client, apiBase)
		if err != nil {
			return nil, err
		}
	}

	firstName, lastName := splitName(user.Name, user.Login)

	return &auth.NormalizedIdentity{
		ProviderUserID: fmt.Sprintf("%d", user.ID),
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
	}, nil
}

func fetchUser(ctx context.Context, client *http.Client, apiBase string) (*githubUser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", apiBase+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user profile request returned %d", resp.StatusCode)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	return &user, nil
}

func fetchPrimaryEmail(ctx context.Context, client *http.Client, apiBase string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", apiBase+"/user/emails", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user emails: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user emails request returned %d", resp.StatusCode)
	}

	var emails []githubEmail
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("failed to decode user emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

// splitName derives first/last name from the display name, falling back to the
// login when the profile has no display name set.
func splitName(name, login string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return login, ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
