// Package shelf manages the signed-in user's reading shelves: the
// three fixed status shelves, per-book ratings, and custom folders.
// State lives on the backend; every operation here requires a session
// and checks for one before touching the network.
package shelf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nmhoang/libshelf/internal/books"
	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/errs"
	"github.com/nmhoang/libshelf/internal/sessionstore"
	"github.com/nmhoang/libshelf/internal/transport"
)

const defaultPageSize = 20

// Service talks to the shelf endpoints of the backend.
type Service struct {
	store *sessionstore.Store
	api   *transport.Client
}

// NewService creates a shelf service over the given session store and
// backend client.
func NewService(store *sessionstore.Store, api *transport.Client) *Service {
	return &Service{store: store, api: api}
}

func (s *Service) requireSession() error {
	if !s.store.Get().IsAuthenticated {
		return &errs.UnauthorizedError{}
	}
	return nil
}

// AddToShelf puts the book on the named status shelf. The status label
// is validated locally; an unknown label never reaches the wire. A
// book already on that shelf comes back as a DuplicateEntryError,
// which callers may treat as success.
func (s *Service) AddToShelf(ctx context.Context, bookID, statusLabel string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if bookID == "" {
		return errs.NewValidation("book id is required")
	}
	status, err := entities.ParseStatus(statusLabel)
	if err != nil {
		return errs.NewValidation("%v", err)
	}
	return s.addStatus(ctx, bookID, status)
}

func (s *Service) addStatus(ctx context.Context, bookID string, status entities.Status) error {
	query := url.Values{"status": {string(status)}}
	err := s.api.Do(ctx, http.MethodPost, "/home/editStatus/"+bookID, query, nil, nil)
	if err == nil {
		return nil
	}

	var se *transport.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusConflict {
		return &errs.DuplicateEntryError{BookID: bookID, Status: status}
	}
	if errors.Is(err, transport.ErrUnauthorized) {
		return err
	}
	return s.updateError("add to shelf", err)
}

// RemoveFromShelf takes the book off whichever status shelf it is on.
// Removing a book that is not shelved succeeds: remove is idempotent.
func (s *Service) RemoveFromShelf(ctx context.Context, bookID string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if bookID == "" {
		return errs.NewValidation("book id is required")
	}

	err := s.api.Do(ctx, http.MethodDelete, "/home/editStatus/"+bookID, nil, nil, nil)
	if err == nil {
		return nil
	}

	var se *transport.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil
	}
	if errors.Is(err, transport.ErrUnauthorized) {
		return err
	}
	return s.updateError("remove from shelf", err)
}

// ChangeStatus moves a book from one status shelf to another as a
// remove followed by an add. The two steps are not atomic: when the
// add fails after the remove succeeded the book is on no shelf, and
// the returned PartialStateError says so. Callers should re-query
// rather than trust their local idea of the shelf.
func (s *Service) ChangeStatus(ctx context.Context, bookID string, from, to entities.Status) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if bookID == "" {
		return errs.NewValidation("book id is required")
	}
	if from == to {
		return nil
	}

	if err := s.RemoveFromShelf(ctx, bookID); err != nil {
		return err
	}

	if err := s.addStatus(ctx, bookID, to); err != nil {
		var dup *errs.DuplicateEntryError
		if errors.As(err, &dup) {
			return nil
		}
		return &errs.PartialStateError{BookID: bookID, Removed: from, Failed: to, Err: err}
	}
	return nil
}

// Rate submits a 1..5 star rating and returns the value the backend
// accepted, which is authoritative over what was sent.
func (s *Service) Rate(ctx context.Context, bookID string, stars int) (int, error) {
	if err := s.requireSession(); err != nil {
		return 0, err
	}
	if bookID == "" {
		return 0, errs.NewValidation("book id is required")
	}
	if stars < 1 || stars > 5 {
		return 0, errs.NewValidation("rating must be between 1 and 5, got %d", stars)
	}

	var payload map[string]any
	query := url.Values{"point": {strconv.Itoa(stars)}}
	err := s.api.Do(ctx, http.MethodGet, "/home/reviewBook/"+bookID, query, nil, &payload)
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return 0, err
		}
		return 0, s.updateError("rate book", err)
	}

	if accepted, ok := acceptedRating(payload); ok {
		return accepted, nil
	}
	return stars, nil
}

// ListByStatus fetches one page of the books on a status shelf. An
// empty shelf is an empty slice, not an error.
func (s *Service) ListByStatus(ctx context.Context, status entities.Status, page int) ([]entities.Book, books.Pagination, error) {
	if err := s.requireSession(); err != nil {
		return nil, books.Pagination{}, err
	}
	if page < 0 {
		page = 0
	}

	query := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(defaultPageSize)},
	}
	return s.fetchBookPage(ctx, "/home/books/"+string(status), query, "list shelf")
}

// CreateFolder creates a named custom list and returns its identity.
func (s *Service) CreateFolder(ctx context.Context, title string) (entities.FolderSummary, error) {
	if err := s.requireSession(); err != nil {
		return entities.FolderSummary{}, err
	}
	if title == "" {
		return entities.FolderSummary{}, errs.NewValidation("folder title is required")
	}

	var payload map[string]any
	body := map[string]string{"title": title}
	if err := s.api.Do(ctx, http.MethodPost, "/home/addFBfolder", nil, body, &payload); err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return entities.FolderSummary{}, err
		}
		return entities.FolderSummary{}, s.updateError("create folder", err)
	}

	folder := entities.FolderSummary{Title: title}
	if inner, ok := payload["result"].(map[string]any); ok {
		payload = inner
	}
	if id, ok := payload["id"].(float64); ok {
		folder.ID = int64(id)
	}
	if t, ok := payload["title"].(string); ok && t != "" {
		folder.Title = t
	}
	return folder, nil
}

// DeleteFolder removes a folder. The books in it stay on their status
// shelves; only the custom list goes away.
func (s *Service) DeleteFolder(ctx context.Context, folderID int64) error {
	if err := s.requireSession(); err != nil {
		return err
	}

	err := s.api.Do(ctx, http.MethodDelete, "/home/fbfolder/"+strconv.FormatInt(folderID, 10), nil, nil, nil)
	if err == nil {
		return nil
	}
	var se *transport.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil
	}
	if errors.Is(err, transport.ErrUnauthorized) {
		return err
	}
	return s.updateError("delete folder", err)
}

// ListFolders returns the user's folders with per-folder book counts,
// without loading any book content.
func (s *Service) ListFolders(ctx context.Context) ([]entities.FolderSummary, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, "/home/fbfolders", nil, nil, &raw); err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return nil, err
		}
		return nil, s.updateError("list folders", err)
	}

	items, _, err := books.DecodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode folder listing: %w", err)
	}

	folders := make([]entities.FolderSummary, 0, len(items))
	for _, item := range items {
		var folder entities.FolderSummary
		if id, ok := item["id"].(float64); ok {
			folder.ID = int64(id)
		}
		folder.Title, _ = item["title"].(string)
		if count, ok := item["count"].(float64); ok {
			folder.Count = int64(count)
		} else if count, ok := item["bookCount"].(float64); ok {
			folder.Count = int64(count)
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

// AddToFolder puts a book into a folder. Folder membership is
// independent of the status shelves.
func (s *Service) AddToFolder(ctx context.Context, bookID string, folderID int64) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if bookID == "" {
		return errs.NewValidation("book id is required")
	}

	path := fmt.Sprintf("/home/addFB/%s/favourites/%d", bookID, folderID)
	err := s.api.Do(ctx, http.MethodPost, path, nil, nil, nil)
	if err == nil {
		return nil
	}
	var se *transport.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusConflict {
		return nil
	}
	if errors.Is(err, transport.ErrUnauthorized) {
		return err
	}
	return s.updateError("add to folder", err)
}

// RemoveFromFolder takes a book out of a folder.
func (s *Service) RemoveFromFolder(ctx context.Context, bookID string, folderID int64) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if bookID == "" {
		return errs.NewValidation("book id is required")
	}

	query := url.Values{"listId": {strconv.FormatInt(folderID, 10)}}
	err := s.api.Do(ctx, http.MethodDelete, "/home/fb/"+bookID, query, nil, nil)
	if err == nil {
		return nil
	}
	var se *transport.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil
	}
	if errors.Is(err, transport.ErrUnauthorized) {
		return err
	}
	return s.updateError("remove from folder", err)
}

// ListFolder fetches one page of a folder's books. Content is loaded
// only here, never as part of the folder listing.
func (s *Service) ListFolder(ctx context.Context, folderID int64, page int) ([]entities.Book, books.Pagination, error) {
	if err := s.requireSession(); err != nil {
		return nil, books.Pagination{}, err
	}
	if page < 0 {
		page = 0
	}

	query := url.Values{
		"listId": {strconv.FormatInt(folderID, 10)},
		"page":   {strconv.Itoa(page)},
		"size":   {strconv.Itoa(defaultPageSize)},
	}
	return s.fetchBookPage(ctx, "/home/fb", query, "list folder")
}

func (s *Service) fetchBookPage(ctx context.Context, path string, query url.Values, op string) ([]entities.Book, books.Pagination, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return nil, books.Pagination{}, err
		}
		return nil, books.Pagination{}, s.updateError(op, err)
	}

	items, pagination, err := books.DecodeEnvelope(raw)
	if err != nil {
		return nil, books.Pagination{}, fmt.Errorf("failed to decode book listing: %w", err)
	}

	page := make([]entities.Book, 0, len(items))
	for _, item := range items {
		page = append(page, books.Normalize(item))
	}
	return page, pagination, nil
}

func (s *Service) updateError(op string, err error) error {
	var se *transport.StatusError
	if errors.As(err, &se) {
		return &errs.ShelfUpdateError{Op: op, Message: se.Message, Err: err}
	}
	return &errs.ShelfUpdateError{Op: op, Err: err}
}

func acceptedRating(payload map[string]any) (int, bool) {
	if inner, ok := payload["result"].(map[string]any); ok {
		payload = inner
	}
	for _, key := range []string{"point", "rating", "stars"} {
		if v, ok := payload[key].(float64); ok {
			return int(v), true
		}
	}
	if v, ok := payload["result"].(float64); ok {
		return int(v), true
	}
	return 0, false
}
