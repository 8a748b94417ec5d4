// Package books turns the wildly different book payloads the catalog
// and shelf backends emit into one display-ready Book. Every field of
// the result is defined regardless of input shape.
package books

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nmhoang/libshelf/internal/entities"
)

const (
	// PlaceholderCover is used when no cover image can be resolved.
	PlaceholderCover = "/images/book-placeholder.png"

	defaultTitle       = "Untitled"
	defaultAuthor      = "Unknown Author"
	defaultDescription = "No description available."
	defaultPublisher   = "Project Gutenberg"
	defaultLanguage    = "English"
	unknownDate        = "Unknown"

	coverURLTemplate = "https://covers.openlibrary.org/b/id/%d-M.jpg"

	displayDateLayout = "January 2, 2006"
)

var authorSeparator = regexp.MustCompile(`;|,|\band\b`)

var subjectSeparator = regexp.MustCompile(`--|\|\||[,;/]`)

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"2006",
}

// Normalize maps one raw book payload to a Book. It never fails: any
// field it cannot interpret falls back to a sensible default.
func Normalize(raw map[string]any) entities.Book {
	if raw == nil {
		raw = map[string]any{}
	}
	if inner, ok := raw["result"].(map[string]any); ok {
		raw = inner
	}

	book := entities.Book{
		ID:          stringField(raw, "id", "bookId", "key", "workId"),
		Title:       stringField(raw, "title", "bookTitle", "name"),
		Subtitle:    stringField(raw, "subtitle"),
		Description: normalizeDescription(raw),
		FileURL:     stringField(raw, "fileUrl", "file_url", "downloadUrl"),
	}
	if book.Title == "" {
		book.Title = defaultTitle
	}

	book.Authors = normalizeAuthors(raw)
	book.PublishDateText, book.PublishYear = normalizePublishDate(raw)
	book.PublisherText = normalizePublisher(raw)
	book.Subjects = normalizeSubjects(raw)
	if len(book.Subjects) > 0 {
		book.Category = book.Subjects[0]
	}
	book.CoverURL = normalizeCover(raw)
	book.Pages = intField(raw, "pages", "numberOfPages", "number_of_pages_median")
	book.LanguageText = normalizeLanguage(raw)
	book.Rating = normalizeRating(raw)

	return book
}

func normalizeAuthors(raw map[string]any) []entities.Author {
	// Structured author lists first.
	if list, ok := raw["authors"].([]any); ok {
		var authors []entities.Author
		for _, item := range list {
			switch v := item.(type) {
			case map[string]any:
				name := stringField(v, "name", "fullName", "author")
				if name != "" {
					authors = append(authors, entities.Author{
						Name: name,
						Key:  stringField(v, "key", "id"),
					})
				}
			case string:
				if v = strings.TrimSpace(v); v != "" {
					authors = append(authors, entities.Author{Name: v})
				}
			}
		}
		if len(authors) > 0 {
			return authors
		}
	}

	if list, ok := raw["author_name"].([]any); ok {
		var authors []entities.Author
		for _, item := range list {
			if name, ok := item.(string); ok && strings.TrimSpace(name) != "" {
				authors = append(authors, entities.Author{Name: strings.TrimSpace(name)})
			}
		}
		if len(authors) > 0 {
			return authors
		}
	}

	// Flat string with separators: "A; B", "A and B", "A, B".
	if s := stringField(raw, "author", "authors", "bookAuthor"); s != "" {
		var authors []entities.Author
		for _, part := range authorSeparator.Split(s, -1) {
			if part = strings.TrimSpace(part); part != "" {
				authors = append(authors, entities.Author{Name: part})
			}
		}
		if len(authors) > 0 {
			return authors
		}
	}

	return []entities.Author{{Name: defaultAuthor}}
}

func normalizePublishDate(raw map[string]any) (string, string) {
	if year := intField(raw, "first_publish_year", "publishYear"); year > 0 {
		text := fmt.Sprintf("%d", year)
		return text, text
	}

	s := stringField(raw, "createdAt", "created_at", "publishDate", "publish_date", "publishedDate")
	if s == "" {
		return unknownDate, unknownDate
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(displayDateLayout), fmt.Sprintf("%d", t.Year())
		}
	}
	return unknownDate, unknownDate
}

func normalizePublisher(raw map[string]any) string {
	if list, ok := raw["publisher"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	if s := stringField(raw, "publisher", "publishers"); s != "" {
		return s
	}
	return defaultPublisher
}

func normalizeDescription(raw map[string]any) string {
	if s := stringField(raw, "description", "summary"); s != "" {
		return s
	}
	// Open Library work payloads nest the text under {value}.
	if m, ok := raw["description"].(map[string]any); ok {
		if s := stringField(m, "value"); s != "" {
			return s
		}
	}
	return defaultDescription
}

func normalizeSubjects(raw map[string]any) []string {
	source := raw["subject"]
	if source == nil {
		source = raw["subjects"]
	}
	if source == nil {
		source = raw["category"]
	}

	var parts []string
	switch v := source.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, subjectSeparator.Split(s, -1)...)
			}
		}
	case string:
		parts = subjectSeparator.Split(v, -1)
	}

	seen := make(map[string]struct{}, len(parts))
	var subjects []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		subjects = append(subjects, part)
	}
	return subjects
}

func normalizeCover(raw map[string]any) string {
	if s := stringField(raw, "coverImage", "cover_image", "coverUrl", "cover_url", "imageUrl", "thumbnail"); s != "" {
		return s
	}
	if id := intField(raw, "cover_i", "coverId", "cover_id"); id > 0 {
		return fmt.Sprintf(coverURLTemplate, id)
	}
	return PlaceholderCover
}

func normalizeLanguage(raw map[string]any) string {
	s := stringField(raw, "language", "languageText")
	if s == "" {
		if list, ok := raw["language"].([]any); ok {
			for _, item := range list {
				if v, ok := item.(string); ok && strings.TrimSpace(v) != "" {
					s = strings.TrimSpace(v)
					break
				}
			}
		}
	}
	if s == "" {
		return defaultLanguage
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func normalizeRating(raw map[string]any) entities.Rating {
	source := raw
	if m, ok := raw["rating"].(map[string]any); ok {
		source = m
	}

	rating := entities.Rating{
		Average:          floatField(source, "average", "averageRating", "ratings_average"),
		Count:            intField(source, "count", "ratingCount", "ratings_count"),
		WantToRead:       intField(source, "wantToRead", "wantToReadCount", "want_to_read_count"),
		CurrentlyReading: intField(source, "currentlyReading", "currentlyReadingCount", "currently_reading_count"),
		AlreadyRead:      intField(source, "alreadyRead", "alreadyReadCount", "already_read_count"),
	}

	if rating.Average < 0 {
		rating.Average = 0
	}
	if rating.Count < 0 {
		rating.Count = 0
	}
	if rating.WantToRead < 0 {
		rating.WantToRead = 0
	}
	if rating.CurrentlyReading < 0 {
		rating.CurrentlyReading = 0
	}
	if rating.AlreadyRead < 0 {
		rating.AlreadyRead = 0
	}
	return rating
}

// stringField returns the first non-empty string among the named keys.
// Numeric values are formatted so numeric IDs still land in string
// fields.
func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func intField(raw map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
				return n
			}
		}
	}
	return 0
}

func floatField(raw map[string]any, keys ...string) float64 {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			var f float64
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%f", &f); err == nil {
				return f
			}
		}
	}
	return 0
}
