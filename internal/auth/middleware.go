package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/sessionstore"
)

// Middleware applies the route guard to every page request. The guard
// is re-evaluated per request against the live session snapshot, so a
// session cleared mid-flight takes effect on the next navigation.
func Middleware(store *sessionstore.Store, guard Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Decide(c.Request.URL.Path, store.Get())
		if decision.Action == ActionAllow {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			status := http.StatusUnauthorized
			if decision.Target == PathAdminLogin {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, gin.H{
				"error":    "access denied",
				"redirect": decision.Target,
			})
			return
		}

		c.Redirect(http.StatusFound, decision.Target)
		c.Abort()
	}
}

// isAPIRequest tells API callers apart from browser navigations.
func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.GetHeader("Authorization") != ""
}
