// Package auth implements login, registration, and logout against the
// account provider, plus the route guard and the periodic token
// introspection job. The session store is the only place auth state
// lives; this package writes it and never caches a copy.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/errs"
	"github.com/nmhoang/libshelf/internal/sessionstore"
	"github.com/nmhoang/libshelf/internal/transport"
)

const (
	loginPath      = "/api/auth/login"
	registerPath   = "/api/auth/register"
	logoutPath     = "/api/auth/logout"
	introspectPath = "/api/auth/introspect"
)

// Service authenticates against the account provider.
type Service struct {
	store *sessionstore.Store
	api   *transport.Client
}

// NewService creates an auth service over the given session store and
// provider client.
func NewService(store *sessionstore.Store, api *transport.Client) *Service {
	return &Service{store: store, api: api}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates the credentials and commits the session triple
// to the store. When expectedRole is non-empty the provider's role
// must match it; on a mismatch the store is left untouched so a
// user-surface login can never mint an admin session or vice versa.
// An empty expectedRole accepts whatever role the provider reports.
func (s *Service) Login(ctx context.Context, email, password string, expectedRole entities.Role) (sessionstore.Snapshot, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return sessionstore.Snapshot{}, errs.NewValidation("email and password are required")
	}
	if expectedRole != "" && !expectedRole.Valid() {
		return sessionstore.Snapshot{}, errs.NewValidation("unknown role %q", expectedRole)
	}

	var payload map[string]any
	err := s.api.Do(ctx, http.MethodPost, loginPath, nil, loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		var se *transport.StatusError
		if errors.As(err, &se) {
			return sessionstore.Snapshot{}, &errs.AuthenticationError{Message: se.Message}
		}
		if errors.Is(err, transport.ErrUnauthorized) {
			return sessionstore.Snapshot{}, &errs.AuthenticationError{Message: "invalid email or password"}
		}
		return sessionstore.Snapshot{}, fmt.Errorf("login request failed: %w", err)
	}

	token, role, user := decodeLoginPayload(payload)
	if token == "" {
		return sessionstore.Snapshot{}, &errs.AuthenticationError{Message: "provider returned no token"}
	}
	if expectedRole != "" && role != expectedRole {
		return sessionstore.Snapshot{}, &errs.RoleMismatchError{Expected: expectedRole, Actual: role}
	}
	if role == "" {
		role = entities.RoleUser
	}
	if user.Email == "" {
		user.Email = email
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Email
	}
	user.Role = role

	if err := s.store.Set(token, user, role); err != nil {
		return sessionstore.Snapshot{}, err
	}
	return s.store.Get(), nil
}

// Register creates an account with the USER role and returns the
// provider's confirmation message. It does not sign the account in;
// activation happens out of band.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return "", errs.NewValidation("username, email and password are required")
	}

	var payload map[string]any
	err := s.api.Do(ctx, http.MethodPost, registerPath, nil, registerRequest{Username: username, Email: email, Password: password}, &payload)
	if err != nil {
		var se *transport.StatusError
		if errors.As(err, &se) {
			return "", &errs.AuthenticationError{Message: se.Message}
		}
		return "", fmt.Errorf("registration request failed: %w", err)
	}

	if msg := messageField(payload); msg != "" {
		return msg, nil
	}
	return "account created, check your email to activate it", nil
}

// Logout notifies the provider and clears the session. The provider
// call is best effort: the local session is cleared no matter what.
func (s *Service) Logout(ctx context.Context) {
	if s.store.Get().IsAuthenticated {
		if err := s.api.Do(ctx, http.MethodPost, logoutPath, nil, nil, nil); err != nil {
			log.Printf("logout request failed, clearing session anyway: %v", err)
		}
	}
	s.store.Clear()
}

// UpdateUser replaces the profile part of the session.
func (s *Service) UpdateUser(user entities.UserSummary) error {
	return s.store.UpdateUser(user)
}

// decodeLoginPayload probes the envelope shapes the provider is known
// to emit: {code,result:{token,role,user}}, {result:{token,...}} and
// the flat {token,role,user}.
func decodeLoginPayload(payload map[string]any) (string, entities.Role, entities.UserSummary) {
	if inner, ok := payload["result"].(map[string]any); ok {
		payload = inner
	}

	token, _ := payload["token"].(string)
	if token == "" {
		token, _ = payload["accessToken"].(string)
	}

	roleText, _ := payload["role"].(string)

	var user entities.UserSummary
	if u, ok := payload["user"].(map[string]any); ok {
		if id, ok := u["id"].(float64); ok {
			user.ID = int64(id)
		}
		user.Email, _ = u["email"].(string)
		user.DisplayName, _ = u["displayName"].(string)
		if user.DisplayName == "" {
			user.DisplayName, _ = u["username"].(string)
		}
		if roleText == "" {
			roleText, _ = u["role"].(string)
		}
	}

	return token, entities.Role(strings.ToUpper(strings.TrimSpace(roleText))), user
}

func messageField(payload map[string]any) string {
	if inner, ok := payload["result"].(map[string]any); ok {
		payload = inner
	}
	if msg, ok := payload["message"].(string); ok {
		return msg
	}
	if msg, ok := payload["result"].(string); ok {
		return msg
	}
	return ""
}
