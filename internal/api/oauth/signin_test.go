package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/workspace-platform/workspace-sso/internal/signin"
)

type fakeService struct {
	gotReq *signin.Request
	result *signin.Result
	err    error
}

func (f *fakeService) SignIn(ctx context.Context, req *signin.Request) (*signin.Result, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := NewHandlers(svc)
	router.POST("/api/v1/oauth/sign-in", handlers.SignInHandler())
	router.POST("/api/v1/oauth/sign-in/:configId", handlers.SignInHandler())
	return router
}

func TestSignInHandler_Success(t *testing.T) {
	svc := &fakeService{result: &signin.Result{ID: "user-1", AuthToken: "tok", Email: "jane@corp.example"}}
	router := newTestRouter(svc)

	body := `{"token":"id-token","ssoType":"google"}`
	req := httptest.NewRequest("POST", "/api/v1/oauth/sign-in", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["auth_token"] != "tok" {
		t.Errorf("auth_token = %v", resp["auth_token"])
	}
	if svc.gotReq.SSOType != "google" || svc.gotReq.Token != "id-token" {
		t.Errorf("request = %+v", svc.gotReq)
	}
	if svc.gotReq.ConfigID != "" {
		t.Errorf("configId = %q, want empty", svc.gotReq.ConfigID)
	}
}

func TestSignInHandler_ConfigIDAndCodeVerifier(t *testing.T) {
	svc := &fakeService{result: &signin.Result{ID: "user-1"}}
	router := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/api/v1/oauth/sign-in/cfg-1", strings.NewReader(`{"token":"code"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "oidc_code_verifier", Value: "verifier-123"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.gotReq.ConfigID != "cfg-1" {
		t.Errorf("configId = %q, want cfg-1", svc.gotReq.ConfigID)
	}
	if svc.gotReq.CodeVerifier != "verifier-123" {
		t.Errorf("code verifier = %q", svc.gotReq.CodeVerifier)
	}
}

func TestSignInHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"unauthorized", signin.Unauthorized(signin.ReasonInvalidCredentials), http.StatusUnauthorized, signin.ReasonInvalidCredentials},
		{"archived", signin.NotAcceptable(signin.ReasonUserArchived), http.StatusNotAcceptable, signin.ReasonUserArchived},
		{"internal reason is not leaked", signin.Internal("failed to count users", nil), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeService{err: tt.err})

			req := httptest.NewRequest("POST", "/api/v1/oauth/sign-in", strings.NewReader(`{"token":"x","ssoType":"google"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", resp["error"], tt.wantError)
			}
		})
	}
}

func TestSignInHandler_BadBody(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest("POST", "/api/v1/oauth/sign-in", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
