package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestExtractAthleteID(t *testing.T) {
	base := &oauth2.Token{AccessToken: "a"}

	if got := ExtractAthleteID(nil); got != 0 {
		t.Errorf("ExtractAthleteID(nil) = %d, want 0", got)
	}
	if got := ExtractAthleteID(base); got != 0 {
		t.Errorf("ExtractAthleteID(no extras) = %d, want 0", got)
	}

	withAthlete := base.WithExtra(map[string]interface{}{
		"athlete": map[string]interface{}{"id": float64(123456)},
	})
	if got := ExtractAthleteID(withAthlete); got != 123456 {
		t.Errorf("ExtractAthleteID() = %d, want 123456", got)
	}
}

func TestNewOAuthConfig(t *testing.T) {
	cfg := NewOAuthConfig(Config{ClientID: "id", ClientSecret: "secret"})
	if cfg.RedirectURL != "http://localhost:8089/callback" {
		t.Errorf("RedirectURL = %q", cfg.RedirectURL)
	}
	if cfg.Endpoint.TokenURL != TokenURL {
		t.Errorf("TokenURL = %q", cfg.Endpoint.TokenURL)
	}
	if !strings.Contains(cfg.AuthCodeURL("xyz"), "scope=read%2Cactivity%3Aread_all") {
		t.Errorf("AuthCodeURL() = %q, missing scopes", cfg.AuthCodeURL("xyz"))
	}
}

func TestCallbackMux(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    string
	}{
		{"success", "state=s1&code=abc", http.StatusOK, "abc", ""},
		{"state mismatch", "state=other&code=abc", http.StatusBadRequest, "", "state mismatch"},
		{"denied", "state=s1&error=access_denied", http.StatusBadRequest, "", "access_denied"},
		{"no code", "state=s1", http.StatusBadRequest, "", "no code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errChan := make(chan error, 1)
			mux := callbackMux("s1", codeChan, errChan)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				select {
				case code := <-codeChan:
					if code != tt.wantCode {
						t.Errorf("code = %q, want %q", code, tt.wantCode)
					}
				default:
					t.Error("no code delivered")
				}
			}
			if tt.wantErr != "" {
				select {
				case err := <-errChan:
					if !strings.Contains(err.Error(), tt.wantErr) {
						t.Errorf("error = %v, want %q", err, tt.wantErr)
					}
				default:
					t.Error("no error delivered")
				}
			}
		})
	}
}

func TestTokenSourceRefresh(t *testing.T) {
	var refreshes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "r1" {
			t.Errorf("unexpected refresh request: %v", r.Form)
		}
		refreshes++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"a2","token_type":"Bearer","refresh_token":"r2","expires_in":21600}`))
	}))
	defer srv.Close()

	cfg := NewOAuthConfig(Config{ClientID: "id", ClientSecret: "secret"})
	cfg.Endpoint.TokenURL = srv.URL

	var persisted *oauth2.Token
	ts := NewTokenSource(cfg, &oauth2.Token{
		AccessToken:  "a1",
		RefreshToken: "r1",
		Expiry:       time.Now().Add(30 * time.Second),
	}, func(tok *oauth2.Token) error {
		persisted = tok
		return nil
	})

	if !ts.IsExpired() {
		t.Error("token inside the refresh buffer should count as expired")
	}

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "a2" || tok.RefreshToken != "r2" {
		t.Errorf("Token() = %+v, want refreshed a2/r2", tok)
	}
	if persisted == nil || persisted.AccessToken != "a2" {
		t.Errorf("refreshed token not persisted: %+v", persisted)
	}

	// A fresh token is served without another refresh
	if _, err := ts.Token(); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
	if ts.IsExpired() {
		t.Error("refreshed token reported as expired")
	}
}
