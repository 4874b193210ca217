package catalog

// CreateItemReq is the union payload over the four item kinds; the
// kind-specific fields are validated in the service.
type CreateItemReq struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Genre           string `json:"genre" validate:"required"`
	PublicationDate string `json:"publication_date" validate:"required,datetime=2006-01-02"`

	FileURL    string `json:"file_url,omitempty"`
	FileSizeMB int    `json:"file_size_mb,omitempty"`

	ISBN            string `json:"isbn,omitempty"`
	CopiesAvailable int    `json:"copies_available,omitempty" validate:"gte=0"`

	DOI         string `json:"doi,omitempty"`
	AccessLevel string `json:"access_level,omitempty"`

	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Narrator        string `json:"narrator,omitempty"`
}
