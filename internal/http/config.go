package http

import (
	"github.com/nmhoang/libshelf/internal/auth"
	"github.com/nmhoang/libshelf/internal/catalog"
	"github.com/nmhoang/libshelf/internal/sessionstore"
	"github.com/nmhoang/libshelf/internal/shelf"
)

// RouterConfig contains all dependencies needed to create the HTTP
// router, replacing a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	SessionStore *sessionstore.Store
	AuthService  *auth.Service
	ShelfService *shelf.Service
	Catalog      *catalog.Client

	// Session persistence, for health reporting. May be nil when
	// running without a database.
	Persistence *sessionstore.SQLiteStore

	// Application info
	Version string
}
