package schema

import "strconv"

// SourceColumns maps canonical fields to the order-sheet column they are read from.
// Fields without an entry start empty.
var SourceColumns = map[Field]string{
	Library:        "Bibliothek",
	ISBN:           "ISBN",
	Responsibility: "Autor(en)",
	Title:          "Titel",
	Publisher:      "Verlag",
	Price:          "Preis Euro",
	Fund:           "Etat",
	EditionNote:    "Auflage/Ausgabe",
	InternalNote:   "Interne Bemerkung",
}

// Defaults holds the value substituted for an empty field.
type Defaults map[Field]string

// DefaultValues returns the static defaults for a run cataloged in the given year.
func DefaultValues(year int) Defaults {
	return Defaults{
		Leader:                 "#####nam#a22004095c#4500",
		FixedLength:            "######s###########||||######|00|#||####d",
		CatalogingAgency:       "CH-ZuSLS ETH",
		CatalogingLanguage:     "ger",
		DescriptionConventions: "rda",
		PublicationPlace:       "[s. l.]",
		PublicationDate:        strconv.Itoa(year),
		ContentType:            "txt",
		ContentSource:          "rdacontent",
		MediaType:              "n",
		MediaSource:            "rdamedia",
		CarrierType:            "nc",
		CarrierSource:          "rdacarrier",
		ShippingCode:           "100",
	}
}

// For returns the default for a field, or "" when the field has none.
func (d Defaults) For(f Field) string {
	return d[f]
}
