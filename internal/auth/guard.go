package auth

import (
	"strings"

	"github.com/nmhoang/libshelf/internal/sessionstore"
)

// Well-known page paths the guard redirects between.
const (
	PathBrowse         = "/books"
	PathUserLogin      = "/auth/login"
	PathAdminLogin     = "/admin/login"
	PathAdminDashboard = "/admin/dashboard"
)

// Action is what the guard decided for a request.
type Action int

const (
	// ActionAllow lets the request through unchanged.
	ActionAllow Action = iota
	// ActionRedirect sends the client to Decision.Target.
	ActionRedirect
)

// Decision is the guard's verdict for one path and session state.
type Decision struct {
	Action Action
	Target string
}

func allow() Decision {
	return Decision{Action: ActionAllow}
}

func redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

// Guard decides page access from the request path and the current
// session snapshot. It is pure: same inputs, same decision, no state.
type Guard struct{}

// Decide evaluates the rules in order and returns the first match.
// The admin login page is matched before the admin area rule so an
// unauthenticated admin can actually reach the login form.
func (Guard) Decide(path string, snap sessionstore.Snapshot) Decision {
	switch {
	case path == "/":
		return redirect(PathBrowse)

	case path == PathAdminLogin || strings.HasPrefix(path, PathAdminLogin+"/"):
		// Anyone already signed in is bounced off the admin login form:
		// admins land on their dashboard, regular users back on browse.
		if snap.IsAdmin {
			return redirect(PathAdminDashboard)
		}
		if snap.IsAuthenticated {
			return redirect(PathBrowse)
		}
		return allow()

	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		if !snap.IsAdmin {
			return redirect(PathAdminLogin)
		}
		return allow()

	case isSignedInArea(path):
		if !snap.IsAuthenticated {
			return redirect(PathUserLogin)
		}
		return allow()

	case path == "/auth" || strings.HasPrefix(path, "/auth/"):
		if snap.IsAuthenticated {
			if snap.IsAdmin {
				return redirect(PathAdminDashboard)
			}
			return redirect(PathBrowse)
		}
		return allow()
	}

	return allow()
}

func isSignedInArea(path string) bool {
	for _, prefix := range []string{"/dashboard", "/profile", "/mybooks"} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
