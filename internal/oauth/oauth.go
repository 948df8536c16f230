// Package oauth federates sign-in to Google and Discord using the
// authorization code flow. Only the verified email and display name of the
// remote account are used.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderDiscord Provider = "discord"
)

// StateTTL bounds how long a user may take on the provider's consent page.
const StateTTL = 10 * time.Minute

var (
	ErrUnknownProvider = errors.New("oauth provider not configured")
	ErrInvalidState    = errors.New("oauth state is invalid or expired")
	ErrExchange        = errors.New("oauth code exchange failed")
	ErrProfile         = errors.New("oauth profile lookup failed")
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/api/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const (
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	discordUserInfoURL = "https://discord.com/api/users/@me"
)

type Identity struct {
	Provider Provider
	Email    string
	Name     string
}

// StateStore holds issued state values until the callback consumes them.
// Consume must delete the state so it can only be used once.
type StateStore interface {
	Save(ctx context.Context, state string, provider Provider, ttl time.Duration) error
	Consume(ctx context.Context, state string) (Provider, error)
}

// ProviderSettings configures one provider. Endpoint and UserInfoURL
// override the public defaults when set.
type ProviderSettings struct {
	ClientID     string
	ClientSecret string
	Endpoint     *oauth2.Endpoint
	UserInfoURL  string
}

type provider struct {
	cfg         *oauth2.Config
	userInfoURL string
	decode      func(io.Reader) (Identity, error)
}

type Federation struct {
	providers  map[Provider]*provider
	states     StateStore
	httpClient *http.Client
}

// NewFederation enables every provider in settings that has both a client
// id and a secret. Callbacks are expected at
// <redirectBase>/user/oauth/<provider>/callback.
func NewFederation(redirectBase string, settings map[Provider]ProviderSettings, states StateStore) *Federation {
	f := &Federation{
		providers:  make(map[Provider]*provider),
		states:     states,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for name, s := range settings {
		if s.ClientID == "" || s.ClientSecret == "" {
			continue
		}

		var (
			endpoint oauth2.Endpoint
			scopes   []string
			userInfo string
			decode   func(io.Reader) (Identity, error)
		)
		switch name {
		case ProviderGoogle:
			endpoint = endpoints.Google
			scopes = []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			}
			userInfo = googleUserInfoURL
			decode = decodeGoogle
		case ProviderDiscord:
			endpoint = discordEndpoint
			scopes = []string{"identify", "email"}
			userInfo = discordUserInfoURL
			decode = decodeDiscord
		default:
			continue
		}
		if s.Endpoint != nil {
			endpoint = *s.Endpoint
		}
		if s.UserInfoURL != "" {
			userInfo = s.UserInfoURL
		}

		f.providers[name] = &provider{
			cfg: &oauth2.Config{
				ClientID:     s.ClientID,
				ClientSecret: s.ClientSecret,
				Endpoint:     endpoint,
				RedirectURL:  fmt.Sprintf("%s/user/oauth/%s/callback", redirectBase, name),
				Scopes:       scopes,
			},
			userInfoURL: userInfo,
			decode:      decode,
		}
	}
	return f
}

// Enabled lists configured providers in name order.
func (f *Federation) Enabled() []Provider {
	names := make([]Provider, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Start returns the provider consent URL for a fresh single-use state.
func (f *Federation) Start(ctx context.Context, name string) (string, error) {
	p, ok := f.providers[Provider(name)]
	if !ok {
		return "", ErrUnknownProvider
	}

	state := uuid.NewString()
	if err := f.states.Save(ctx, state, Provider(name), StateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return p.cfg.AuthCodeURL(state), nil
}

// Callback consumes state, exchanges code and reads the account profile.
func (f *Federation) Callback(ctx context.Context, name, state, code string) (Identity, error) {
	p, ok := f.providers[Provider(name)]
	if !ok {
		return Identity{}, ErrUnknownProvider
	}
	if state == "" || code == "" {
		return Identity{}, fmt.Errorf("%w: missing state or code", ErrInvalidState)
	}

	issuedFor, err := f.states.Consume(ctx, state)
	if err != nil {
		return Identity{}, err
	}
	if issuedFor != Provider(name) {
		return Identity{}, fmt.Errorf("%w: issued for %s", ErrInvalidState, issuedFor)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("build profile request: %w", err)
	}
	resp, err := p.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrProfile, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: status %d", ErrProfile, resp.StatusCode)
	}

	id, err := p.decode(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Identity{}, err
	}
	id.Provider = Provider(name)
	id.Email = domain.NormalizeEmail(id.Email)
	return id, nil
}

func decodeGoogle(r io.Reader) (Identity, error) {
	var body struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return Identity{}, fmt.Errorf("%w: decode: %v", ErrProfile, err)
	}
	if body.Email == "" || !body.VerifiedEmail {
		return Identity{}, fmt.Errorf("%w: no verified email", ErrProfile)
	}
	return Identity{Email: body.Email, Name: body.Name}, nil
}

func decodeDiscord(r io.Reader) (Identity, error) {
	var body struct {
		Email      string `json:"email"`
		Verified   bool   `json:"verified"`
		Username   string `json:"username"`
		GlobalName string `json:"global_name"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return Identity{}, fmt.Errorf("%w: decode: %v", ErrProfile, err)
	}
	if body.Email == "" || !body.Verified {
		return Identity{}, fmt.Errorf("%w: no verified email", ErrProfile)
	}
	name := body.GlobalName
	if name == "" {
		name = body.Username
	}
	return Identity{Email: body.Email, Name: name}, nil
}
