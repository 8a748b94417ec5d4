package entities

import (
	"fmt"
	"strings"
)

// Status is one of the three fixed per-user reading shelves. The
// string value is the wire value the backend stores.
type Status string

const (
	StatusWantToRead Status = "WANT_TO_READ"
	StatusReading    Status = "READING"
	StatusCompleted  Status = "FINISHED"
)

// ParseStatus maps a UI-level status label onto the canonical
// three-value enum. Labels are matched case-insensitively.
func ParseStatus(label string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "want", "want_to_read", "want-to-read", "wanttoread":
		return StatusWantToRead, nil
	case "reading", "currently_reading":
		return StatusReading, nil
	case "finished", "completed", "read":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown reading status %q", label)
}

// ShelfEntry records membership of one book in one status shelf.
// Status changes are remove+add, never an in-place mutation.
type ShelfEntry struct {
	BookID   string `json:"bookId"`
	Status   Status `json:"status"`
	FolderID int64  `json:"folderId,omitempty"`
}

// Folder is a user-named custom list of books, independent of the
// three fixed status shelves. Content is queried lazily per folder.
type Folder struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Books       []Book `json:"books,omitempty"`
}

// FolderSummary is the listing shape for folders: identity plus the
// number of books, without the book records themselves.
type FolderSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Count int64  `json:"count"`
}
