package git

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// newGitHubStub serves the three endpoints the sign-in flow touches: the
// token exchange, /user, and /user/emails.
func newGitHubStub(t *testing.T, userBody, emailsBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
	})
	mux.HandleFunc("/api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userBody))
	})
	mux.HandleFunc("/api/v3/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(emailsBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func gitConfig(host string) *models.SSOConfig {
	return &models.SSOConfig{
		SSO:     models.SSOTypeGit,
		Enabled: true,
		Configs: models.ProviderSettings{
			ClientID:     "cid",
			ClientSecret: "secret",
			Host:         host,
		},
	}
}

func TestGitSignIn_ProfileEmail(t *testing.T) {
	srv := newGitHubStub(t,
		`{"id":42,"login":"jdoe","name":"Jane Doe","email":"jane@corp.example"}`,
		`[]`,
	)

	n := NewNormalizer()
	n.HTTPClient = srv.Client()

	identity, err := n.SignIn(context.Background(), auth.Credentials{Token: "code"}, gitConfig(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ProviderUserID != "42" {
		t.Errorf("provider user id = %q, want 42", identity.ProviderUserID)
	}
	if identity.Email != "jane@corp.example" {
		t.Errorf("email = %q", identity.Email)
	}
	if identity.FirstName != "Jane" || identity.LastName != "Doe" {
		t.Errorf("name = %q %q", identity.FirstName, identity.LastName)
	}
}

func TestGitSignIn_HiddenEmailFallsBackToEmailsEndpoint(t *testing.T) {
	srv := newGitHubStub(t,
		`{"id":42,"login":"jdoe","name":"","email":""}`,
		`[{"email":"unverified@corp.example","primary":true,"verified":false},
		  {"email":"jane@corp.example","primary":true,"verified":true}]`,
	)

	n := NewNormalizer()
	n.HTTPClient = srv.Client()

	identity, err := n.SignIn(context.Background(), auth.Credentials{Token: "code"}, gitConfig(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Email != "jane@corp.example" {
		t.Errorf("email = %q, want the verified primary", identity.Email)
	}
	if identity.FirstName != "jdoe" {
		t.Errorf("first name = %q, want login fallback", identity.FirstName)
	}
	if !identity.Viable() {
		t.Error("expected a viable identity")
	}
}

func TestGitSignIn_Unconfigured(t *testing.T) {
	n := NewNormalizer()
	cfg := &models.SSOConfig{SSO: models.SSOTypeGit, Enabled: true}
	if _, err := n.SignIn(context.Background(), auth.Credentials{Token: "code"}, cfg); err == nil {
		t.Error("expected error for missing client credentials")
	}
}

func TestEndpoints(t *testing.T) {
	t.Run("github.com default", func(t *testing.T) {
		endpoint, apiBase := endpoints("")
		if endpoint.TokenURL != "https://github.com/login/oauth/access_token" {
			t.Errorf("token url = %q", endpoint.TokenURL)
		}
		if apiBase != "https://api.github.com" {
			t.Errorf("api base = %q", apiBase)
		}
	})
	t.Run("enterprise host", func(t *testing.T) {
		endpoint, apiBase := endpoints("https://git.corp.example/")
		if endpoint.TokenURL != "https://git.corp.example/login/oauth/access_token" {
			t.Errorf("token url = %q", endpoint.TokenURL)
		}
		if apiBase != "https://git.corp.example/api/v3" {
			t.Errorf("api base = %q", apiBase)
		}
	})
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name, login, first, last string
	}{
		{"Jane Doe", "jdoe", "Jane", "Doe"},
		{"Jane Q Public Doe", "jdoe", "Jane", "Q Public Doe"},
		{"Mononym", "jdoe", "Mononym", ""},
		{"", "jdoe", "jdoe", ""},
		{"   ", "jdoe", "jdoe", ""},
	}
	for _, tt := range tests {
		first, last := splitName(tt.name, tt.login)
		if first != tt.first || last != tt.last {
			t.Errorf("splitName(%q, %q) = (%q, %q), want (%q, %q)", tt.name, tt.login, first, last, tt.first, tt.last)
		}
	}
}
