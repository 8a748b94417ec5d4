package sessionstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/errs"
)

// fakePersistence is an in-memory Persistence for store tests.
type fakePersistence struct {
	items map[string]string
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{items: make(map[string]string)}
}

func (p *fakePersistence) GetItem(key string) (string, bool) {
	v, ok := p.items[key]
	return v, ok
}

func (p *fakePersistence) SetItem(key, value string) error {
	p.items[key] = value
	return nil
}

func (p *fakePersistence) RemoveItem(key string) error {
	delete(p.items, key)
	return nil
}

func testUser() entities.UserSummary {
	return entities.UserSummary{
		ID:          7,
		Email:       "reader@example.com",
		DisplayName: "reader",
		Role:        entities.RoleUser,
	}
}

func TestSetAndGet(t *testing.T) {
	store := New(newFakePersistence())

	err := store.Set("tok-123", testUser(), entities.RoleUser)
	require.NoError(t, err)

	snap := store.Get()
	assert.True(t, snap.IsAuthenticated)
	assert.False(t, snap.IsAdmin)
	assert.Equal(t, "tok-123", snap.Token)
	assert.Equal(t, "reader@example.com", snap.User.Email)
}

func TestSetRejectsPartialSession(t *testing.T) {
	store := New(newFakePersistence())

	var verr *errs.ValidationError

	err := store.Set("", testUser(), entities.RoleUser)
	require.ErrorAs(t, err, &verr)

	err = store.Set("tok-123", entities.UserSummary{}, entities.RoleUser)
	require.ErrorAs(t, err, &verr)

	snap := store.Get()
	assert.False(t, snap.IsAuthenticated)
}

func TestClear(t *testing.T) {
	p := newFakePersistence()
	store := New(p)
	require.NoError(t, store.Set("tok-123", testUser(), entities.RoleAdmin))

	store.Clear()

	snap := store.Get()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, snap.IsAdmin)
	assert.Nil(t, snap.User)
	assert.Empty(t, p.items)

	// Clearing again is a no-op
	store.Clear()
	assert.False(t, store.Get().IsAuthenticated)
}

func TestIsAdminDerivation(t *testing.T) {
	store := New(nil)
	require.NoError(t, store.Set("tok-123", testUser(), entities.RoleAdmin))

	snap := store.Get()
	assert.True(t, snap.IsAuthenticated)
	assert.True(t, snap.IsAdmin)
}

func TestRestoreRoundTrip(t *testing.T) {
	p := newFakePersistence()
	first := New(p)
	require.NoError(t, first.Set("tok-456", testUser(), entities.RoleUser))

	// Simulate a process restart with the same persistence
	second := New(p)
	assert.True(t, second.Get().IsLoading)
	second.Restore()

	snap := second.Get()
	assert.False(t, snap.IsLoading)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "tok-456", snap.Token)
	assert.Equal(t, entities.RoleUser, snap.Role)
	assert.Equal(t, int64(7), snap.User.ID)
}

func TestRestoreCorruptData(t *testing.T) {
	t.Run("corrupt user JSON", func(t *testing.T) {
		p := newFakePersistence()
		p.items[KeyToken] = "tok"
		p.items[KeyUser] = "{not json"
		p.items[KeyRole] = "USER"

		store := New(p)
		store.Restore()

		assert.False(t, store.Get().IsAuthenticated)
		assert.Empty(t, p.items, "corrupt triple should be scrubbed")
	})

	t.Run("missing role", func(t *testing.T) {
		p := newFakePersistence()
		p.items[KeyToken] = "tok"
		p.items[KeyUser] = `{"id":1,"email":"a@b.c"}`

		store := New(p)
		store.Restore()

		assert.False(t, store.Get().IsAuthenticated)
	})

	t.Run("unknown role", func(t *testing.T) {
		p := newFakePersistence()
		p.items[KeyToken] = "tok"
		p.items[KeyUser] = `{"id":1,"email":"a@b.c"}`
		p.items[KeyRole] = "SUPERUSER"

		store := New(p)
		store.Restore()

		assert.False(t, store.Get().IsAuthenticated)
	})

	t.Run("nil persistence is a no-op", func(t *testing.T) {
		store := New(nil)
		store.Restore()
		assert.False(t, store.Get().IsAuthenticated)
	})
}

func TestUpdateUser(t *testing.T) {
	p := newFakePersistence()
	store := New(p)
	require.NoError(t, store.Set("tok-789", testUser(), entities.RoleUser))

	updated := testUser()
	updated.DisplayName = "renamed"
	require.NoError(t, store.UpdateUser(updated))

	snap := store.Get()
	assert.Equal(t, "renamed", snap.User.DisplayName)
	assert.Equal(t, "tok-789", snap.Token, "token untouched")
	assert.Equal(t, entities.RoleUser, snap.Role, "role untouched")

	// The change survives a restart
	second := New(p)
	second.Restore()
	assert.Equal(t, "renamed", second.Get().User.DisplayName)
}

func TestUpdateUserWithoutSession(t *testing.T) {
	store := New(nil)

	var uerr *errs.UnauthorizedError
	err := store.UpdateUser(testUser())
	assert.ErrorAs(t, err, &uerr)
}

func TestSnapshotIsACopy(t *testing.T) {
	store := New(nil)
	require.NoError(t, store.Set("tok", testUser(), entities.RoleUser))

	snap := store.Get()
	snap.User.Email = "mutated@example.com"

	assert.Equal(t, "reader@example.com", store.Get().User.Email)
}
