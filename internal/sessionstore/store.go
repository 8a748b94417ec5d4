// Package sessionstore owns the in-process session: the bearer token,
// the user summary, and the role, with the derived authenticated and
// admin flags. The auth service is the only writer (plus the implicit
// logout hook wired into the transport); everything else reads
// snapshots through Get.
package sessionstore

import (
	"encoding/json"
	"sync"

	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/errs"
)

// Persistence is the injected key-value storage the session survives
// restarts through. Implementations are best-effort; a nil Persistence
// makes the store memory-only and Restore a no-op.
type Persistence interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Keys for the persisted session triple.
const (
	KeyToken = "libshelf.token"
	KeyUser  = "libshelf.user"
	KeyRole  = "libshelf.role"
)

// Snapshot is a read-only view of the session. IsAuthenticated is
// exactly "token present and user present"; IsAdmin is exactly
// "role is ADMIN".
type Snapshot struct {
	Token           string                `json:"-"`
	User            *entities.UserSummary `json:"user,omitempty"`
	Role            entities.Role         `json:"role,omitempty"`
	IsAuthenticated bool                  `json:"isAuthenticated"`
	IsAdmin         bool                  `json:"isAdmin"`
	IsLoading       bool                  `json:"isLoading"`
}

// Store holds the current session. Token and user are either both
// present or both absent; role is present iff user is present.
type Store struct {
	mu          sync.RWMutex
	token       string
	user        *entities.UserSummary
	role        entities.Role
	loading     bool
	persistence Persistence
}

// New creates an empty session store backed by the given persistence.
func New(p Persistence) *Store {
	return &Store{persistence: p, loading: true}
}

// Restore loads a previously persisted session. A missing or corrupt
// triple leaves the session empty and scrubs the partial remains; it
// never fails.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if s.persistence == nil {
		return
	}

	token, okToken := s.persistence.GetItem(KeyToken)
	rawUser, okUser := s.persistence.GetItem(KeyUser)
	rawRole, okRole := s.persistence.GetItem(KeyRole)
	if !okToken || !okUser || !okRole || token == "" {
		s.removePersisted()
		return
	}

	var user entities.UserSummary
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.removePersisted()
		return
	}
	role := entities.Role(rawRole)
	if !role.Valid() {
		s.removePersisted()
		return
	}

	s.token = token
	s.user = &user
	s.role = role
}

// Set atomically replaces the whole triple and persists it. A partial
// session is never allowed in.
func (s *Store) Set(token string, user entities.UserSummary, role entities.Role) error {
	if token == "" {
		return errs.NewValidation("session token must not be empty")
	}
	if user == (entities.UserSummary{}) {
		return errs.NewValidation("session user must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	u := user
	s.user = &u
	s.role = role
	s.loading = false

	s.persist()
	return nil
}

// UpdateUser replaces only the user field, keeping token and role.
func (s *Store) UpdateUser(user entities.UserSummary) error {
	if user == (entities.UserSummary{}) {
		return errs.NewValidation("session user must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.user == nil {
		return &errs.UnauthorizedError{}
	}

	u := user
	s.user = &u
	s.persist()
	return nil
}

// Clear drops the session from memory and persistence. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	s.role = ""
	s.loading = false
	s.removePersisted()
}

// Get returns a read-only snapshot of the current session.
func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user *entities.UserSummary
	if s.user != nil {
		u := *s.user
		user = &u
	}

	return Snapshot{
		Token:           s.token,
		User:            user,
		Role:            s.role,
		IsAuthenticated: s.token != "" && s.user != nil,
		IsAdmin:         s.role == entities.RoleAdmin,
		IsLoading:       s.loading,
	}
}

// Token satisfies the transport's token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// persist writes the current triple. Caller holds the lock.
func (s *Store) persist() {
	if s.persistence == nil || s.user == nil {
		return
	}

	rawUser, err := json.Marshal(s.user)
	if err != nil {
		return
	}
	_ = s.persistence.SetItem(KeyToken, s.token)
	_ = s.persistence.SetItem(KeyUser, string(rawUser))
	_ = s.persistence.SetItem(KeyRole, string(s.role))
}

// removePersisted scrubs the persisted triple. Caller holds the lock.
func (s *Store) removePersisted() {
	if s.persistence == nil {
		return
	}
	_ = s.persistence.RemoveItem(KeyToken)
	_ = s.persistence.RemoveItem(KeyUser)
	_ = s.persistence.RemoveItem(KeyRole)
}
