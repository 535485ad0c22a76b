package auth

import (
	"context"
	"eduplatform/internal/config"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Identity is the signed-in user as reported by the ID token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Authenticator holds the OIDC provider, OAuth2 config and ID token verifier.
type Authenticator struct {
	*oidc.Provider
	*oauth2.Config
	*oidc.IDTokenVerifier
}

// NewAuthenticator sets up the OIDC provider through discovery and the OAuth2
// configuration for the login flow.
func NewAuthenticator(ctx context.Context, cfg *config.OIDCConfig) (*Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	return &Authenticator{
		Provider: provider,
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		IDTokenVerifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Identify verifies the ID token carried by token and returns its claims.
func (a *Authenticator) Identify(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token field in oauth2 token")
	}
	idToken, err := a.IDTokenVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to read ID token claims: %w", err)
	}
	return &Identity{Subject: idToken.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// RoleFor maps a session subject to the role it is enforced as. An empty
// admins list makes every signed-in user an admin.
func RoleFor(subject string, admins []string) string {
	if subject == "" {
		return RoleAnonymous
	}
	if len(admins) == 0 {
		return RoleAdmin
	}
	for _, a := range admins {
		if a == subject {
			return RoleAdmin
		}
	}
	return RoleAnonymous
}
