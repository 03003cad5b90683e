package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"golang.org/x/oauth2"
)

// SocialProfile is the provider-neutral view of a user returned by a code
// exchange. Email and AvatarURL are nil when the provider has none.
type SocialProfile struct {
	Provider       models.AuthProvider
	ProviderUserID string
	Name           string
	Email          *string
	AvatarURL      *string
}

// Provider is one social login backend. ExchangeCode verifies state before
// contacting the provider and wraps every failure in ErrExchangeFailed.
type Provider interface {
	Name() models.AuthProvider
	AuthURL(state, redirectURI string) string
	DefaultRedirectURI() string
	ExchangeCode(ctx context.Context, code, redirectURI, state string) (*SocialProfile, error)
}

// OAuthAppConfig is the app registration at a provider. Empty endpoint
// fields fall back to the provider's production URLs.
type OAuthAppConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthURL    string
	TokenURL   string
	ProfileURL string
}

type ProviderRegistry struct {
	providers map[models.AuthProvider]Provider
}

func NewProviderRegistry(providers ...Provider) *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[models.AuthProvider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *ProviderRegistry) Get(name models.AuthProvider) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, name)
	}
	return p, nil
}

func (r *ProviderRegistry) Names() []models.AuthProvider {
	names := make([]models.AuthProvider, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// oauthProvider holds what every authorization-code provider shares.
type oauthProvider struct {
	name       models.AuthProvider
	app        OAuthAppConfig
	scopes     []string
	states     *StateCodec
	httpClient *http.Client
}

func newOAuthProvider(name models.AuthProvider, app OAuthAppConfig, defaults OAuthAppConfig, scopes []string, states *StateCodec, client *http.Client) oauthProvider {
	if app.AuthURL == "" {
		app.AuthURL = defaults.AuthURL
	}
	if app.TokenURL == "" {
		app.TokenURL = defaults.TokenURL
	}
	if app.ProfileURL == "" {
		app.ProfileURL = defaults.ProfileURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return oauthProvider{
		name:       name,
		app:        app,
		scopes:     scopes,
		states:     states,
		httpClient: client,
	}
}

func (p *oauthProvider) Name() models.AuthProvider {
	return p.name
}

func (p *oauthProvider) DefaultRedirectURI() string {
	return p.app.RedirectURI
}

func (p *oauthProvider) AuthURL(state, redirectURI string) string {
	return p.config(redirectURI).AuthCodeURL(state)
}

func (p *oauthProvider) config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.app.ClientID,
		ClientSecret: p.app.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       p.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.app.AuthURL,
			TokenURL:  p.app.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// exchange checks the state token, then trades code for a provider access
// token. A bad state never reaches the provider.
func (p *oauthProvider) exchange(ctx context.Context, code, redirectURI, state string) (*oauth2.Token, error) {
	if err := p.states.Verify(state, p.name, redirectURI); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s token exchange: %v", ErrExchangeFailed, p.name, err)
	}
	return token, nil
}

// fetchProfile GETs the provider profile endpoint and decodes the JSON body
// into out. bearer, when set, goes in the Authorization header.
func (p *oauthProvider) fetchProfile(ctx context.Context, query url.Values, bearer string, out any) error {
	endpoint := p.app.ProfileURL
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build %s profile request: %v", ErrExchangeFailed, p.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s profile request: %v", ErrExchangeFailed, p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s profile: %v", ErrExchangeFailed, p.name, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s profile returned status %d", ErrExchangeFailed, p.name, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s profile: %v", ErrExchangeFailed, p.name, err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
