package entities

// Author is one entry of a book's ordered author list. Key is the
// upstream author identifier when the source provides one.
type Author struct {
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
}

// Rating aggregates reader feedback for a book. All counters are
// server-side aggregates; the client never computes averages locally.
type Rating struct {
	Average          float64 `json:"average"`
	Count            int     `json:"count"`
	WantToRead       int     `json:"wantToRead"`
	CurrentlyReading int     `json:"currentlyReading"`
	AlreadyRead      int     `json:"alreadyRead"`
}

// Book is the canonical book representation consumed by all display
// logic, regardless of which upstream source produced the record.
// Instances are built by the books package and never mutated.
type Book struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Authors         []Author `json:"authors"`
	Description     string   `json:"description"`
	PublishDateText string   `json:"publishDate"`
	PublishYear     string   `json:"publishYear"`
	PublisherText   string   `json:"publisher"`
	Pages           int      `json:"pages"`
	LanguageText    string   `json:"language"`
	CoverURL        string   `json:"coverUrl"`
	Category        string   `json:"category,omitempty"`
	Subjects        []string `json:"subjects"`
	FileURL         string   `json:"fileUrl,omitempty"`
	Rating          Rating   `json:"rating"`
}
