// model/item.go
package model

import "time"

// ItemKind discriminates the four catalog tables. Item ids are only
// unique within a kind, so every reference carries both.
type ItemKind string

const (
	KindEBook         ItemKind = "ebook"
	KindPrintedBook   ItemKind = "printedbook"
	KindResearchPaper ItemKind = "researchpaper"
	KindAudiobook     ItemKind = "audiobook"
)

func ParseItemKind(s string) (ItemKind, bool) {
	switch ItemKind(s) {
	case KindEBook, KindPrintedBook, KindResearchPaper, KindAudiobook:
		return ItemKind(s), true
	}
	return "", false
}

// IsBook reports whether the kind shows up in browsing, trending and
// recommendations. Research papers have their own shelf.
func (k ItemKind) IsBook() bool {
	return k == KindEBook || k == KindPrintedBook || k == KindAudiobook
}

// Finable kinds accrue overdue fines. Digital items never do.
func (k ItemKind) Finable() bool {
	return k == KindPrintedBook || k == KindResearchPaper
}

type ItemRef struct {
	Kind ItemKind `json:"kind"`
	ID   int64    `json:"id"`
}

// Item is the flattened view over the four catalog tables. Kind-specific
// fields are zero for the other kinds.
type Item struct {
	Kind            ItemKind  `json:"kind"`
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	PublicationDate time.Time `json:"publication_date"`

	FileURL    string `json:"file_url,omitempty"`
	FileSizeMB int    `json:"file_size_mb,omitempty"`

	ISBN            string `json:"isbn,omitempty"`
	CopiesAvailable int    `json:"copies_available,omitempty"`

	DOI         string `json:"doi,omitempty"`
	AccessLevel string `json:"access_level,omitempty"`

	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Narrator        string `json:"narrator,omitempty"`
}

func (i *Item) Ref() ItemRef { return ItemRef{Kind: i.Kind, ID: i.ID} }
