package session

import (
	"context"
	"net/http"
)

// Manager is the subset of *scs.SessionManager the handlers and middleware use.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Remove(ctx context.Context, key string)
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// Session keys.
const (
	KeySubject = "user_subject"
	KeyName    = "user_name"
	KeyState   = "oauth_state"
	KeyFlash   = "flash"
)
