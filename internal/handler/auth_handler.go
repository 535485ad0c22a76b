package handler

import (
	"context"
	"crypto/rand"
	"eduplatform/internal/auth"
	"eduplatform/internal/logger"
	"eduplatform/internal/session"
	"encoding/base64"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// Authenticator is the part of *auth.Authenticator the login flow uses.
type Authenticator interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	Identify(ctx context.Context, token *oauth2.Token) (*auth.Identity, error)
}

var _ Authenticator = (*auth.Authenticator)(nil)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth    Authenticator
	session session.Manager
	log     logger.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil Authenticator disables
// login; logout keeps working.
func NewAuthHandler(a Authenticator, sm session.Manager, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, session: sm, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Login is not configured", http.StatusServiceUnavailable)
		return
	}
	state, err := randString(16)
	if err != nil {
		h.log.Error(err, "Failed to generate state")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), session.KeyState, state)
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider.
// It handles the code exchange and token verification.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Login is not configured", http.StatusServiceUnavailable)
		return
	}
	state := h.session.PopString(r.Context(), session.KeyState)
	if state == "" || r.URL.Query().Get("state") != state {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "Failed to exchange token")
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}
	identity, err := h.auth.Identify(r.Context(), token)
	if err != nil {
		h.log.Error(err, "Failed to verify ID token")
		http.Error(w, "Failed to verify ID token", http.StatusInternalServerError)
		return
	}

	// Renew the session token to prevent session fixation.
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.log.Error(err, "Failed to renew session token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	name := identity.Name
	if name == "" {
		name = identity.Email
	}
	h.session.Put(r.Context(), session.KeySubject, identity.Subject)
	h.session.Put(r.Context(), session.KeyName, name)
	h.log.With(map[string]interface{}{"subject": identity.Subject}).Info("User signed in")

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// handleLogout destroys the session and returns to the home page.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString returns nByte random bytes, base64url encoded.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
