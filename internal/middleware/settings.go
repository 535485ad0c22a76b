package middleware

import (
	"eduplatform/internal/view"
	"net/http"
)

// BasicModeCookie remembers the visitor's basic mode choice.
const BasicModeCookie = "edu_basic"

// SettingsMiddleware resolves basic mode for the request. "?basic=true" or
// "?basic=false" switches it and stores the choice in a cookie; otherwise the
// cookie decides.
func SettingsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var basic bool
		switch r.URL.Query().Get("basic") {
		case "true":
			basic = true
			http.SetCookie(w, &http.Cookie{Name: BasicModeCookie, Value: "1", Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
		case "false":
			http.SetCookie(w, &http.Cookie{Name: BasicModeCookie, Value: "", Path: "/", MaxAge: -1})
		default:
			c, err := r.Cookie(BasicModeCookie)
			basic = err == nil && c.Value == "1"
		}
		next.ServeHTTP(w, r.WithContext(view.WithBasicMode(r.Context(), basic)))
	})
}
