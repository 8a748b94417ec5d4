package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/auth"
	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/sessionstore"
)

// AuthController exposes login, registration, logout, and the current
// session over the API.
type AuthController struct {
	service *auth.Service
	store   *sessionstore.Store
}

func NewAuthController(service *auth.Service, store *sessionstore.Store) *AuthController {
	return &AuthController{service: service, store: store}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates and establishes the session.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	// An absent role means no role policy: the session takes whatever
	// role the provider reports.
	snap, err := ac.service.Login(c.Request.Context(), req.Email, req.Password, entities.Role(req.Role))
	if err != nil {
		respondServiceError(c, err, "login")
		return
	}
	c.JSON(http.StatusOK, sessionResponse(snap))
}

// Register creates an account. The caller stays signed out; the
// account needs activation before it can log in.
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email and password are required")
		return
	}

	message, err := ac.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "register")
		return
	}
	respondSuccess(c, message)
}

// Logout clears the session. Always succeeds from the caller's view.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	ac.service.Logout(c.Request.Context())
	respondSuccess(c, "signed out")
}

// Session reports the current session state.
// GET /api/session
func (ac *AuthController) Session(c *gin.Context) {
	c.JSON(http.StatusOK, sessionResponse(ac.store.Get()))
}

func sessionResponse(snap sessionstore.Snapshot) gin.H {
	return gin.H{
		"isAuthenticated": snap.IsAuthenticated,
		"isAdmin":         snap.IsAdmin,
		"isLoading":       snap.IsLoading,
		"user":            snap.User,
		"role":            snap.Role,
	}
}
