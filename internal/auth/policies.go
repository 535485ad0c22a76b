package auth

import (
	"eduplatform/internal/logger"
	"fmt"

	"github.com/casbin/casbin/v2"
)

// DefaultPolicies grant anonymous visitors the public site and read API, and
// admins the admin pages and every write.
var DefaultPolicies = [][]string{
	{RoleAnonymous, "/", "GET"},
	{RoleAnonymous, "/about", "GET"},
	{RoleAnonymous, "/courses", "GET"},
	{RoleAnonymous, "/video-courses", "GET"},
	{RoleAnonymous, "/video-courses/:id", "GET"},
	{RoleAnonymous, "/blog", "GET"},
	{RoleAnonymous, "/blog/:id", "GET"},
	{RoleAnonymous, "/talks-events", "GET"},
	{RoleAnonymous, "/talks-events/:id", "GET"},
	{RoleAnonymous, "/projects", "GET"},
	{RoleAnonymous, "/projects/:id", "GET"},
	{RoleAnonymous, "/companies", "GET"},
	{RoleAnonymous, "/robots.txt", "GET"},
	{RoleAnonymous, "/sitemap.xml", "GET"},
	{RoleAnonymous, "/static/*", "GET"},
	{RoleAnonymous, "/auth/*", "GET|POST"},
	{RoleAnonymous, "/api/search", "GET"},
	{RoleAnonymous, "/api/stats", "GET"},
	{RoleAnonymous, "/api/:kind", "GET"},
	{RoleAnonymous, "/api/:kind/:id", "GET"},

	{RoleAdmin, "/admin", "GET"},
	{RoleAdmin, "/admin/*", "GET|POST|DELETE"},
	{RoleAdmin, "/api/bulk", "POST"},
	{RoleAdmin, "/api/:kind", "POST"},
	{RoleAdmin, "/api/:kind/:id", "PUT|DELETE"},
}

// SeedDefaultPolicies adds any missing default policy and makes admin inherit
// anonymous. It is idempotent and runs on every start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")
	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}
	if has, _ := e.HasRoleForUser(RoleAdmin, RoleAnonymous); !has {
		if _, err := e.AddRoleForUser(RoleAdmin, RoleAnonymous); err != nil {
			log.Error(err, "Failed to add role 'admin' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}
