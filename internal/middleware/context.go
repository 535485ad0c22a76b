package middleware

import (
	"context"
	"eduplatform/internal/auth"
)

type userKey struct{}

// UserInfo is the caller as seen by handlers.
type UserInfo struct {
	// Subject is the OIDC subject; empty for anonymous visitors.
	Subject string
	Name    string
	Role    string
}

// IsAdmin reports whether the caller may use the admin pages and write APIs.
func (u *UserInfo) IsAdmin() bool { return u.Role == auth.RoleAdmin }

// SignedIn reports whether the caller has a session subject.
func (u *UserInfo) SignedIn() bool { return u.Subject != "" }

// GetUserInfo returns the caller stored by Authorizer, or an anonymous user.
func GetUserInfo(ctx context.Context) *UserInfo {
	if u, ok := ctx.Value(userKey{}).(*UserInfo); ok {
		return u
	}
	return &UserInfo{Role: auth.RoleAnonymous}
}

func SetUserInfo(ctx context.Context, u *UserInfo) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}
