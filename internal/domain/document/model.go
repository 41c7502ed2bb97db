package document

import "context"

// Page is the text extracted from a single PDF page.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Chunk is a window of extracted text. Page is 0 when the source page is unknown.
type Chunk struct {
	Index      int    `json:"index"`
	Page       int    `json:"page,omitempty"`
	Content    string `json:"content"`
	TokenCount int    `json:"tokenCount"`
}

// Document is the request scoped view of an uploaded file.
type Document struct {
	Name   string
	Path   string
	Hash   string
	Size   int64
	Pages  []Page
	Chunks []Chunk
}

// Info is the client facing description of a stored document.
type Info struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"sizeBytes"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
}

// Info summarizes the document for API responses.
func (d Document) Info() Info {
	return Info{
		ID:        d.Hash,
		Filename:  d.Name,
		SizeBytes: d.Size,
		Pages:     len(d.Pages),
		Chunks:    len(d.Chunks),
	}
}

// Loader extracts page text from raw PDF bytes.
type Loader interface {
	Load(ctx context.Context, data []byte) ([]Page, error)
}

// Splitter turns pages into overlapping chunks that keep page metadata.
type Splitter interface {
	Split(pages []Page) []Chunk
}
