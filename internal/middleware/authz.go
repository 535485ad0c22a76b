package middleware

import (
	"eduplatform/internal/auth"
	"eduplatform/internal/logger"
	"eduplatform/internal/session"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
)

// Authorizer resolves the caller's role from the session and enforces it with
// Casbin. Denied API calls get a JSON 401, denied admin pages redirect to the
// login flow.
func Authorizer(e casbin.IEnforcer, sm session.Manager, admins []string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := sm.GetString(r.Context(), session.KeySubject)
			userInfo := &UserInfo{
				Subject: subject,
				Name:    sm.GetString(r.Context(), session.KeyName),
				Role:    auth.RoleFor(subject, admins),
			}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(userInfo.Role, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization error")
				WriteJSONError(w, http.StatusInternalServerError, "Authorization error")
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			switch {
			case strings.HasPrefix(r.URL.Path, "/api/"):
				WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
			case userInfo.Subject == "":
				http.Redirect(w, r, "/auth/login", http.StatusFound)
			default:
				http.Error(w, "Forbidden", http.StatusForbidden)
			}
		})
	}
}
