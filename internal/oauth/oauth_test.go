package oauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ErlanBelekov/credit-market/internal/oauth"
	"golang.org/x/oauth2"
)

type fakeProvider struct {
	server   *httptest.Server
	profile  map[string]any
	lastCode string
}

func newFakeProvider(t *testing.T, profile map[string]any) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{profile: profile}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fp.lastCode = r.PostForm.Get("code")
		if fp.lastCode == "bad-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"remote-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer remote-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fp.profile)
	})

	fp.server = httptest.NewServer(mux)
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakeProvider) settings() oauth.ProviderSettings {
	return oauth.ProviderSettings{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: &oauth2.Endpoint{
			AuthURL:  fp.server.URL + "/authorize",
			TokenURL: fp.server.URL + "/token",
		},
		UserInfoURL: fp.server.URL + "/userinfo",
	}
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatalf("auth url has no state: %s", authURL)
	}
	return state
}

func TestFederation_GoogleRoundTrip(t *testing.T) {
	fp := newFakeProvider(t, map[string]any{
		"email":          "Shopper@Example.com",
		"verified_email": true,
		"name":           "Shopper",
	})
	f := oauth.NewFederation("http://localhost:8080",
		map[oauth.Provider]oauth.ProviderSettings{oauth.ProviderGoogle: fp.settings()},
		oauth.NewMemoryStateStore(),
	)

	authURL, err := f.Start(context.Background(), "google")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	u, _ := url.Parse(authURL)
	if got := u.Query().Get("redirect_uri"); got != "http://localhost:8080/user/oauth/google/callback" {
		t.Errorf("redirect_uri = %q", got)
	}

	id, err := f.Callback(context.Background(), "google", stateFrom(t, authURL), "good-code")
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if id.Email != "shopper@example.com" || id.Name != "Shopper" || id.Provider != oauth.ProviderGoogle {
		t.Errorf("unexpected identity: %+v", id)
	}
	if fp.lastCode != "good-code" {
		t.Errorf("token endpoint got code %q", fp.lastCode)
	}
}

func TestFederation_DiscordPrefersGlobalName(t *testing.T) {
	fp := newFakeProvider(t, map[string]any{
		"email":       "gamer@example.com",
		"verified":    true,
		"username":    "gamer_42",
		"global_name": "Gamer",
	})
	f := oauth.NewFederation("http://localhost:8080",
		map[oauth.Provider]oauth.ProviderSettings{oauth.ProviderDiscord: fp.settings()},
		oauth.NewMemoryStateStore(),
	)

	authURL, err := f.Start(context.Background(), "discord")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id, err := f.Callback(context.Background(), "discord", stateFrom(t, authURL), "good-code")
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if id.Name != "Gamer" {
		t.Errorf("name = %q, want Gamer", id.Name)
	}
}

func TestFederation_StateIsSingleUse(t *testing.T) {
	fp := newFakeProvider(t, map[string]any{"email": "a@example.com", "verified_email": true})
	f := oauth.NewFederation("http://localhost",
		map[oauth.Provider]oauth.ProviderSettings{oauth.ProviderGoogle: fp.settings()},
		oauth.NewMemoryStateStore(),
	)

	authURL, err := f.Start(context.Background(), "google")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	state := stateFrom(t, authURL)

	if _, err := f.Callback(context.Background(), "google", state, "good-code"); err != nil {
		t.Fatalf("first Callback: %v", err)
	}
	if _, err := f.Callback(context.Background(), "google", state, "good-code"); !errors.Is(err, oauth.ErrInvalidState) {
		t.Errorf("replayed state: want ErrInvalidState, got %v", err)
	}
}

func TestFederation_Errors(t *testing.T) {
	fp := newFakeProvider(t, map[string]any{"email": "a@example.com", "verified_email": false})
	settings := map[oauth.Provider]oauth.ProviderSettings{
		oauth.ProviderGoogle:  fp.settings(),
		oauth.ProviderDiscord: fp.settings(),
	}
	f := oauth.NewFederation("http://localhost", settings, oauth.NewMemoryStateStore())

	t.Run("unknown provider", func(t *testing.T) {
		if _, err := f.Start(context.Background(), "github"); !errors.Is(err, oauth.ErrUnknownProvider) {
			t.Errorf("want ErrUnknownProvider, got %v", err)
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		if _, err := f.Callback(context.Background(), "google", "never-issued", "code"); !errors.Is(err, oauth.ErrInvalidState) {
			t.Errorf("want ErrInvalidState, got %v", err)
		}
	})

	t.Run("state issued for another provider", func(t *testing.T) {
		authURL, err := f.Start(context.Background(), "discord")
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		_, err = f.Callback(context.Background(), "google", stateFrom(t, authURL), "good-code")
		if !errors.Is(err, oauth.ErrInvalidState) {
			t.Errorf("want ErrInvalidState, got %v", err)
		}
	})

	t.Run("rejected code", func(t *testing.T) {
		authURL, _ := f.Start(context.Background(), "google")
		_, err := f.Callback(context.Background(), "google", stateFrom(t, authURL), "bad-code")
		if !errors.Is(err, oauth.ErrExchange) {
			t.Errorf("want ErrExchange, got %v", err)
		}
	})

	t.Run("unverified email", func(t *testing.T) {
		authURL, _ := f.Start(context.Background(), "google")
		_, err := f.Callback(context.Background(), "google", stateFrom(t, authURL), "good-code")
		if !errors.Is(err, oauth.ErrProfile) {
			t.Errorf("want ErrProfile, got %v", err)
		}
	})
}

func TestNewFederation_SkipsProvidersWithoutCredentials(t *testing.T) {
	f := oauth.NewFederation("http://localhost", map[oauth.Provider]oauth.ProviderSettings{
		oauth.ProviderGoogle:  {ClientID: "id"},
		oauth.ProviderDiscord: {ClientID: "id", ClientSecret: "secret"},
	}, oauth.NewMemoryStateStore())

	enabled := f.Enabled()
	if len(enabled) != 1 || enabled[0] != oauth.ProviderDiscord {
		t.Errorf("Enabled() = %v, want [discord]", enabled)
	}
}
