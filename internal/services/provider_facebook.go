package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
)

var facebookDefaults = OAuthAppConfig{
	AuthURL:    "https://www.facebook.com/v18.0/dialog/oauth",
	TokenURL:   "https://graph.facebook.com/v18.0/oauth/access_token",
	ProfileURL: "https://graph.facebook.com/v18.0/me",
}

type FacebookProvider struct {
	oauthProvider
}

func NewFacebookProvider(app OAuthAppConfig, states *StateCodec, client *http.Client) *FacebookProvider {
	return &FacebookProvider{
		oauthProvider: newOAuthProvider(models.ProviderFacebook, app, facebookDefaults, []string{"public_profile,email"}, states, client),
	}
}

type facebookUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func (p *FacebookProvider) ExchangeCode(ctx context.Context, code, redirectURI, state string) (*SocialProfile, error) {
	token, err := p.exchange(ctx, code, redirectURI, state)
	if err != nil {
		return nil, err
	}

	var me facebookUser
	query := url.Values{
		"fields":       {"id,name,email,picture{url}"},
		"access_token": {token.AccessToken},
	}
	if err := p.fetchProfile(ctx, query, "", &me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, fmt.Errorf("%w: facebook profile has no id", ErrExchangeFailed)
	}

	return &SocialProfile{
		Provider:       models.ProviderFacebook,
		ProviderUserID: me.ID,
		Name:           me.Name,
		Email:          optional(me.Email),
		AvatarURL:      optional(me.Picture.Data.URL),
	}, nil
}
