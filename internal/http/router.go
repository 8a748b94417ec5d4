package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// The route guard sees every request; API routes pass through it
	// untouched, page routes get redirected per session state.
	router.Use(auth.Middleware(cfg.SessionStore, auth.Guard{}))

	// Health endpoints
	healthController := NewHealthController(cfg.Persistence, cfg.Version)
	router.GET("/health", healthController.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Auth API
	authController := NewAuthController(cfg.AuthService, cfg.SessionStore)
	router.POST("/api/auth/login", authController.Login)
	router.POST("/api/auth/register", authController.Register)
	router.POST("/api/auth/logout", authController.Logout)
	router.GET("/api/session", authController.Session)

	// Shelf and folder API
	shelfController := NewShelfController(cfg.ShelfService)
	router.GET("/api/shelf", shelfController.ListByStatus)
	router.POST("/api/shelf/:bookId", shelfController.AddToShelf)
	router.DELETE("/api/shelf/:bookId", shelfController.RemoveFromShelf)
	router.PUT("/api/shelf/:bookId", shelfController.ChangeStatus)
	router.POST("/api/shelf/:bookId/rating", shelfController.Rate)
	router.GET("/api/folders", shelfController.ListFolders)
	router.POST("/api/folders", shelfController.CreateFolder)
	router.DELETE("/api/folders/:id", shelfController.DeleteFolder)
	router.GET("/api/folders/:id/books", shelfController.ListFolder)
	router.POST("/api/folders/:id/books/:bookId", shelfController.AddToFolder)
	router.DELETE("/api/folders/:id/books/:bookId", shelfController.RemoveFromFolder)

	// Catalog API
	booksController := NewBooksController(cfg.Catalog)
	router.GET("/api/books", booksController.BrowseSubject)
	router.GET("/api/books/search", booksController.Search)
	router.GET("/api/books/:key", booksController.GetWork)

	// Page routes. The SPA serves its own markup; these exist so the
	// guard has real paths to protect and redirect between.
	registerPageRoutes(router)

	return router
}

func registerPageRoutes(router *gin.Engine) {
	pages := []string{
		"/",
		auth.PathBrowse,
		"/books/:key",
		"/mybooks",
		"/mybooks/:status",
		"/dashboard",
		"/profile",
		auth.PathUserLogin,
		"/auth/register",
		auth.PathAdminLogin,
		auth.PathAdminDashboard,
	}
	for _, page := range pages {
		router.GET(page, servePage)
	}
}

func servePage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": c.Request.URL.Path})
}
