package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
)

var googleDefaults = OAuthAppConfig{
	AuthURL:    "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:   "https://oauth2.googleapis.com/token",
	ProfileURL: "https://openidconnect.googleapis.com/v1/userinfo",
}

type GoogleProvider struct {
	oauthProvider
}

func NewGoogleProvider(app OAuthAppConfig, states *StateCodec, client *http.Client) *GoogleProvider {
	return &GoogleProvider{
		oauthProvider: newOAuthProvider(models.ProviderGoogle, app, googleDefaults, []string{"openid", "email", "profile"}, states, client),
	}
}

type googleUser struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code, redirectURI, state string) (*SocialProfile, error) {
	token, err := p.exchange(ctx, code, redirectURI, state)
	if err != nil {
		return nil, err
	}

	var me googleUser
	if err := p.fetchProfile(ctx, nil, token.AccessToken, &me); err != nil {
		return nil, err
	}
	if me.Sub == "" {
		return nil, fmt.Errorf("%w: google userinfo has no subject", ErrExchangeFailed)
	}

	name := me.Name
	if name == "" {
		name, _, _ = strings.Cut(me.Email, "@")
	}

	return &SocialProfile{
		Provider:       models.ProviderGoogle,
		ProviderUserID: me.Sub,
		Name:           name,
		Email:          optional(me.Email),
		AvatarURL:      optional(me.Picture),
	}, nil
}
