package shelf

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/errs"
	"github.com/nmhoang/libshelf/internal/sessionstore"
	"github.com/nmhoang/libshelf/internal/transport"
)

func newShelfFixture(t *testing.T, handler http.HandlerFunc) (*Service, *sessionstore.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := sessionstore.New(nil)
	store.Restore()
	require.NoError(t, store.Set("tok", entities.UserSummary{Email: "r@e.c"}, entities.RoleUser))

	client, err := transport.New(transport.Config{BaseURL: server.URL, Tokens: store})
	require.NoError(t, err)
	client.SetUnauthorizedHook(store.Clear)

	return NewService(store, client), store
}

func okEnvelope(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{"code": 200, "result": "ok"})
}

func TestService_RequiresSession(t *testing.T) {
	var requests int
	svc, store := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})
	store.Clear()

	ctx := context.Background()
	var unauth *errs.UnauthorizedError

	assert.ErrorAs(t, svc.AddToShelf(ctx, "1", "reading"), &unauth)
	assert.ErrorAs(t, svc.RemoveFromShelf(ctx, "1"), &unauth)
	assert.ErrorAs(t, svc.ChangeStatus(ctx, "1", entities.StatusReading, entities.StatusCompleted), &unauth)
	_, err := svc.Rate(ctx, "1", 4)
	assert.ErrorAs(t, err, &unauth)
	_, _, err = svc.ListByStatus(ctx, entities.StatusReading, 0)
	assert.ErrorAs(t, err, &unauth)
	_, err = svc.ListFolders(ctx)
	assert.ErrorAs(t, err, &unauth)

	assert.Zero(t, requests, "no request may be issued without a session")
}

func TestService_AddToShelf(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/home/editStatus/42", r.URL.Path)
		assert.Equal(t, "READING", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		okEnvelope(w)
	})

	require.NoError(t, svc.AddToShelf(context.Background(), "42", "reading"))
}

func TestService_AddToShelf_LabelVariants(t *testing.T) {
	var gotStatus string
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("status")
		okEnvelope(w)
	})

	tests := []struct {
		label string
		want  string
	}{
		{"want", "WANT_TO_READ"},
		{"Want_To_Read", "WANT_TO_READ"},
		{"READING", "READING"},
		{"completed", "FINISHED"},
		{"finished", "FINISHED"},
	}
	for _, tt := range tests {
		require.NoError(t, svc.AddToShelf(context.Background(), "1", tt.label))
		assert.Equal(t, tt.want, gotStatus, "label %q", tt.label)
	}
}

func TestService_AddToShelf_UnknownLabel(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid status must not reach the backend")
	})

	var vErr *errs.ValidationError
	assert.ErrorAs(t, svc.AddToShelf(context.Background(), "1", "someday"), &vErr)
}

func TestService_AddToShelf_Duplicate(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "already on shelf"})
	})

	err := svc.AddToShelf(context.Background(), "42", "reading")
	var dup *errs.DuplicateEntryError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "42", dup.BookID)
	assert.Equal(t, entities.StatusReading, dup.Status)
}

func TestService_RemoveFromShelf_IdempotentOn404(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, svc.RemoveFromShelf(context.Background(), "42"))
}

func TestService_ChangeStatus(t *testing.T) {
	var calls []string
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		okEnvelope(w)
	})

	err := svc.ChangeStatus(context.Background(), "42", entities.StatusWantToRead, entities.StatusReading)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "DELETE /home/editStatus/42?", calls[0])
	assert.Equal(t, "POST /home/editStatus/42?status=READING", calls[1])
}

func TestService_ChangeStatus_PartialFailure(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			okEnvelope(w)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "shelf limit reached"})
	})

	err := svc.ChangeStatus(context.Background(), "42", entities.StatusWantToRead, entities.StatusReading)

	var partial *errs.PartialStateError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "42", partial.BookID)
	assert.Equal(t, entities.StatusWantToRead, partial.Removed)
	assert.Equal(t, entities.StatusReading, partial.Failed)
	assert.Error(t, partial.Unwrap())
}

func TestService_ChangeStatus_RemoveFailureIsNotPartial(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
	})

	err := svc.ChangeStatus(context.Background(), "42", entities.StatusWantToRead, entities.StatusReading)

	var partial *errs.PartialStateError
	assert.False(t, errors.As(err, &partial), "remove failing first leaves the old state intact")
	var update *errs.ShelfUpdateError
	assert.ErrorAs(t, err, &update)
}

func TestService_ChangeStatus_SameStatusIsNoOp(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	assert.NoError(t, svc.ChangeStatus(context.Background(), "42", entities.StatusReading, entities.StatusReading))
}

func TestService_Rate(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/home/reviewBook/42", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("point"))
		json.NewEncoder(w).Encode(map[string]any{"code": 200, "result": map[string]any{"point": float64(4)}})
	})

	accepted, err := svc.Rate(context.Background(), "42", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, accepted)
}

func TestService_Rate_ServerValueWins(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		// Backend clamps and reports what it stored.
		json.NewEncoder(w).Encode(map[string]any{"code": 200, "result": map[string]any{"point": float64(5)}})
	})

	accepted, err := svc.Rate(context.Background(), "42", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, accepted)
}

func TestService_Rate_ValidatesLocally(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("out-of-range rating must not reach the backend")
	})

	var vErr *errs.ValidationError
	for _, stars := range []int{0, -1, 6, 100} {
		_, err := svc.Rate(context.Background(), "42", stars)
		assert.ErrorAs(t, err, &vErr, "stars=%d", stars)
	}
}

func TestService_ListByStatus(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/home/books/READING", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))
		json.NewEncoder(w).Encode(map[string]any{
			"code": 200,
			"result": map[string]any{
				"content":       []any{map[string]any{"id": float64(1), "title": "Dune"}},
				"totalElements": float64(41),
				"totalPages":    float64(3),
				"number":        float64(1),
				"size":          float64(20),
			},
		})
	})

	page, pagination, err := svc.ListByStatus(context.Background(), entities.StatusReading, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Dune", page[0].Title)
	assert.Equal(t, int64(41), pagination.TotalItems)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestService_ListByStatus_EmptyShelf(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code":   200,
			"result": map[string]any{"content": []any{}, "totalElements": float64(0)},
		})
	})

	page, _, err := svc.ListByStatus(context.Background(), entities.StatusWantToRead, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestService_Folders(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/home/addFBfolder":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]any{
				"code":   200,
				"result": map[string]any{"id": float64(3), "title": body["title"]},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/home/fbfolders":
			json.NewEncoder(w).Encode(map[string]any{
				"code": 200,
				"result": []any{
					map[string]any{"id": float64(3), "title": "Summer", "count": float64(2)},
				},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/home/addFB/42/favourites/3":
			okEnvelope(w)
		case r.Method == http.MethodDelete && r.URL.Path == "/home/fb/42":
			assert.Equal(t, "3", r.URL.Query().Get("listId"))
			okEnvelope(w)
		case r.Method == http.MethodDelete && r.URL.Path == "/home/fbfolder/3":
			okEnvelope(w)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, "Summer")
	require.NoError(t, err)
	assert.Equal(t, int64(3), folder.ID)
	assert.Equal(t, "Summer", folder.Title)

	folders, err := svc.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, int64(2), folders[0].Count)

	require.NoError(t, svc.AddToFolder(ctx, "42", 3))
	require.NoError(t, svc.RemoveFromFolder(ctx, "42", 3))
	require.NoError(t, svc.DeleteFolder(ctx, 3))
}

func TestService_CreateFolder_RequiresTitle(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	var vErr *errs.ValidationError
	_, err := svc.CreateFolder(context.Background(), "")
	assert.ErrorAs(t, err, &vErr)
}

func TestService_ListFolder(t *testing.T) {
	svc, _ := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/home/fb", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("listId"))
		json.NewEncoder(w).Encode(map[string]any{
			"code":   200,
			"result": []any{map[string]any{"title": "Solaris"}},
		})
	})

	page, _, err := svc.ListFolder(context.Background(), 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Solaris", page[0].Title)
}

func TestService_ImplicitLogoutOn401(t *testing.T) {
	svc, store := newShelfFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := svc.AddToShelf(context.Background(), "42", "reading")
	assert.ErrorIs(t, err, transport.ErrUnauthorized)
	assert.False(t, store.Get().IsAuthenticated)
}
