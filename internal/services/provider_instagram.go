package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
)

var instagramDefaults = OAuthAppConfig{
	AuthURL:    "https://api.instagram.com/oauth/authorize",
	TokenURL:   "https://api.instagram.com/oauth/access_token",
	ProfileURL: "https://graph.instagram.com/me",
}

type InstagramProvider struct {
	oauthProvider
}

func NewInstagramProvider(app OAuthAppConfig, states *StateCodec, client *http.Client) *InstagramProvider {
	return &InstagramProvider{
		oauthProvider: newOAuthProvider(models.ProviderInstagram, app, instagramDefaults, []string{"user_profile,user_media"}, states, client),
	}
}

type instagramUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
}

// ExchangeCode never yields an email or avatar: the basic display API does
// not expose them.
func (p *InstagramProvider) ExchangeCode(ctx context.Context, code, redirectURI, state string) (*SocialProfile, error) {
	token, err := p.exchange(ctx, code, redirectURI, state)
	if err != nil {
		return nil, err
	}

	var me instagramUser
	query := url.Values{
		"fields":       {"id,username,account_type,name"},
		"access_token": {token.AccessToken},
	}
	if err := p.fetchProfile(ctx, query, "", &me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, fmt.Errorf("%w: instagram profile has no id", ErrExchangeFailed)
	}

	name := me.Name
	if name == "" {
		name = me.Username
	}

	return &SocialProfile{
		Provider:       models.ProviderInstagram,
		ProviderUserID: me.ID,
		Name:           name,
	}, nil
}
