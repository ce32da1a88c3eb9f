package schema

import "strconv"

// Field identifies one column of the canonical import schema.
// The declaration order is the column order of the output artifact.
type Field int

const (
	Leader Field = iota
	FixedLength
	ISBN
	CatalogingAgency
	CatalogingLanguage
	DescriptionConventions
	Title
	Responsibility
	PublicationPlace
	Publisher
	PublicationDate
	ContentType
	ContentSource
	MediaType
	MediaSource
	CarrierType
	CarrierSource
	ShelfCode
	Library
	CallNumberSuffix
	SupplierCode
	Price
	SupplierTag
	Fund
	ShippingCode
	EditionNote
	InternalNote

	// Duplicate annotation columns, written by the annotator.
	DuplicateFlag
	HitCount
	MatchCarrier
	MatchISBN

	fieldCount
)

// CatalogFieldCount is the number of catalog fields preceding the annotation columns.
const CatalogFieldCount = int(DuplicateFlag)

// FieldCount is the total number of columns in a Record.
const FieldCount = int(fieldCount)

var names = [FieldCount]string{
	Leader:                 "LDR",
	FixedLength:            "008",
	ISBN:                   "020$a",
	CatalogingAgency:       "040$a",
	CatalogingLanguage:     "040$b",
	DescriptionConventions: "040$e",
	Title:                  "24510$a",
	Responsibility:         "24510$c",
	PublicationPlace:       "264$a",
	Publisher:              "264$b",
	PublicationDate:        "264$c",
	ContentType:            "336$b",
	ContentSource:          "336$2",
	MediaType:              "337$b",
	MediaSource:            "337$2",
	CarrierType:            "338$b",
	CarrierSource:          "338$2",
	ShelfCode:              "905$c",
	Library:                "905$n",
	CallNumberSuffix:       "905$o",
	SupplierCode:           "949$v",
	Price:                  "949$s",
	SupplierTag:            "949$x",
	Fund:                   "949$u",
	ShippingCode:           "949$w",
	EditionNote:            "949$d",
	InternalNote:           "949$z",
	DuplicateFlag:          "Dublette",
	HitCount:               "Anzahl Treffer",
	MatchCarrier:           "SRU 338$a",
	MatchISBN:              "SRU 020$a",
}

// Name returns the header name of the field.
func (f Field) Name() string {
	if f < 0 || int(f) >= FieldCount {
		return "Field(" + strconv.Itoa(int(f)) + ")"
	}
	return names[f]
}

func (f Field) String() string {
	return f.Name()
}

// Fields returns every field in column order.
func Fields() []Field {
	fields := make([]Field, FieldCount)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// Header returns the header row of the output artifact.
func Header() []string {
	header := make([]string, FieldCount)
	copy(header, names[:])
	return header
}

// Lookup finds a field by its header name.
func Lookup(name string) (Field, bool) {
	for i, n := range names {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// Record holds exactly one value per canonical field.
type Record [FieldCount]string

// Get returns the value of a field.
func (r *Record) Get(f Field) string {
	return r[f]
}

// Set replaces the value of a field.
func (r *Record) Set(f Field, value string) {
	r[f] = value
}

// Values returns the record as a positional slice in header order.
func (r *Record) Values() []string {
	values := make([]string, FieldCount)
	copy(values, r[:])
	return values
}
