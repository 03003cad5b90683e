package main

import (
	"fmt"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/services"
	"gorm.io/gorm"
)

type authStack struct {
	auth       *services.AuthService
	identities *services.IdentityService
	providers  *services.ProviderRegistry
}

// newAuthStack builds the auth core from configuration. Google is only
// registered when its credentials are present.
func newAuthStack(cfg *config.Config, db *gorm.DB, m *metrics.Metrics) (*authStack, error) {
	stateKey, err := cfg.StateSigningKey()
	if err != nil {
		return nil, fmt.Errorf("state key: %w", err)
	}
	states, err := services.NewStateCodec(stateKey)
	if err != nil {
		return nil, err
	}

	issuer, err := services.NewTokenIssuer(services.TokenIssuerConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.TokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.ProviderTimeout}
	providers := []services.Provider{
		services.NewFacebookProvider(appConfig(cfg.Facebook), states, client),
		services.NewInstagramProvider(appConfig(cfg.Instagram), states, client),
	}
	if cfg.Google.Enabled() {
		providers = append(providers, services.NewGoogleProvider(appConfig(cfg.Google), states, client))
	}
	registry := services.NewProviderRegistry(providers...)

	identities := services.NewIdentityService(db)
	store := services.NewRefreshTokenStore(db, issuer)

	return &authStack{
		auth:       services.NewAuthService(states, registry, identities, store, m),
		identities: identities,
		providers:  registry,
	}, nil
}

func appConfig(p config.ProviderConfig) services.OAuthAppConfig {
	return services.OAuthAppConfig{
		ClientID:     p.AppID,
		ClientSecret: p.AppSecret,
		RedirectURI:  p.RedirectURI,
	}
}
