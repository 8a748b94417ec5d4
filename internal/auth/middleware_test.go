package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/sessionstore"
)

func newGuardedRouter(store *sessionstore.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(store, Guard{}))
	for _, path := range []string{"/books", "/dashboard", "/admin/dashboard", "/auth/login", "/admin/login"} {
		router.GET(path, func(c *gin.Context) {
			c.String(http.StatusOK, "page")
		})
	}
	return router
}

func TestMiddleware_RedirectsBrowser(t *testing.T) {
	store := sessionstore.New(nil)
	store.Restore()
	router := newGuardedRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, PathUserLogin, w.Header().Get("Location"))
}

func TestMiddleware_JSONForAPIClients(t *testing.T) {
	store := sessionstore.New(nil)
	store.Restore()
	router := newGuardedRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), PathUserLogin)
}

func TestMiddleware_AllowsAuthenticated(t *testing.T) {
	store := sessionstore.New(nil)
	store.Restore()
	require.NoError(t, store.Set("tok", entities.UserSummary{Email: "r@e.c"}, entities.RoleUser))
	router := newGuardedRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_ReEvaluatesPerRequest(t *testing.T) {
	store := sessionstore.New(nil)
	store.Restore()
	require.NoError(t, store.Set("tok", entities.UserSummary{Email: "r@e.c"}, entities.RoleUser))
	router := newGuardedRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// Session cleared between navigations: next request is bounced.
	store.Clear()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
}
