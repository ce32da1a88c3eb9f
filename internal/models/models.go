package models

import "strconv"

// CatalogMatch represents one bibliographic record returned by the union catalog
type CatalogMatch struct {
	Title     string `json:"title" yaml:"title"`
	Author    string `json:"author" yaml:"author"`
	ISBN      string `json:"isbn" yaml:"isbn"`
	Publisher string `json:"publisher" yaml:"publisher"`
	Year      string `json:"year" yaml:"year"`
	Carrier   string `json:"carrier" yaml:"carrier"` // 338$a
}

// DuplicateStatus classifies the outcome of a duplicate check
type DuplicateStatus int

const (
	NotFound DuplicateStatus = iota
	Found
	Error
)

// Flag returns the value written to the duplicate column
func (s DuplicateStatus) Flag() string {
	switch s {
	case Found:
		return "JA"
	case Error:
		return "FEHLER"
	default:
		return "NEIN"
	}
}

func (s DuplicateStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Error:
		return "error"
	default:
		return "not-found"
	}
}

// SearchType records which query produced a result
type SearchType int

const (
	SearchNone SearchType = iota
	SearchISBN
	SearchTitle
)

func (t SearchType) String() string {
	switch t {
	case SearchISBN:
		return "isbn"
	case SearchTitle:
		return "title"
	default:
		return "none"
	}
}

// SearchResult is the outcome of one duplicate detection call
type SearchResult struct {
	Status     DuplicateStatus
	HitCount   int
	Matches    []CatalogMatch
	SearchType SearchType
	Err        error
}

// Annotation converts the result into the values attached to an output row
func (r SearchResult) Annotation() *DuplicateAnnotation {
	a := &DuplicateAnnotation{
		Status:     r.Status,
		HitCount:   r.HitCount,
		SearchType: r.SearchType,
	}
	if r.Err != nil {
		a.Status = Error
		a.Error = r.Err.Error()
	}
	if a.Status == Found && len(r.Matches) > 0 {
		a.Carrier = r.Matches[0].Carrier
		a.ISBN = r.Matches[0].ISBN
	}
	return a
}

// DuplicateAnnotation is the duplicate check outcome attached to one output row
type DuplicateAnnotation struct {
	Status     DuplicateStatus `yaml:"status"`
	HitCount   int             `yaml:"hit_count"`
	Carrier    string          `yaml:"carrier,omitempty"`
	ISBN       string          `yaml:"isbn,omitempty"`
	SearchType SearchType      `yaml:"search_type"`
	Error      string          `yaml:"error,omitempty"`
}

// Highlight reports whether the row should be visually emphasized in the artifact
func (a *DuplicateAnnotation) Highlight() bool {
	return a != nil && a.Status == Found
}

// CountValue is the value written to the hit count column.
// Error rows carry the error text instead of a number.
func (a *DuplicateAnnotation) CountValue() string {
	if a == nil {
		return ""
	}
	if a.Status == Error {
		return a.Error
	}
	return strconv.Itoa(a.HitCount)
}
