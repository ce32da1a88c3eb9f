package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/ordersheet/internal/records"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
)

// ImportRow is the parquet layout of one output row, in canonical column order.
type ImportRow struct {
	Leader                 string `parquet:"ldr"`
	FixedLength            string `parquet:"f008"`
	ISBN                   string `parquet:"f020_a"`
	CatalogingAgency       string `parquet:"f040_a"`
	CatalogingLanguage     string `parquet:"f040_b"`
	DescriptionConventions string `parquet:"f040_e"`
	Title                  string `parquet:"f24510_a"`
	Responsibility         string `parquet:"f24510_c"`
	PublicationPlace       string `parquet:"f264_a"`
	Publisher              string `parquet:"f264_b"`
	PublicationDate        string `parquet:"f264_c"`
	ContentType            string `parquet:"f336_b"`
	ContentSource          string `parquet:"f336_2"`
	MediaType              string `parquet:"f337_b"`
	MediaSource            string `parquet:"f337_2"`
	CarrierType            string `parquet:"f338_b"`
	CarrierSource          string `parquet:"f338_2"`
	ShelfCode              string `parquet:"f905_c"`
	Library                string `parquet:"f905_n"`
	CallNumberSuffix       string `parquet:"f905_o"`
	SupplierCode           string `parquet:"f949_v"`
	Price                  string `parquet:"f949_s"`
	SupplierTag            string `parquet:"f949_x"`
	Fund                   string `parquet:"f949_u"`
	ShippingCode           string `parquet:"f949_w"`
	EditionNote            string `parquet:"f949_d"`
	InternalNote           string `parquet:"f949_z"`
	DuplicateFlag          string `parquet:"dublette"`
	HitCount               string `parquet:"anzahl_treffer"`
	MatchCarrier           string `parquet:"sru_338_a"`
	MatchISBN              string `parquet:"sru_020_a"`
	Highlight              bool   `parquet:"highlight"`
}

// NewImportRow copies a row into its parquet layout.
func NewImportRow(row *records.Row) ImportRow {
	r := &row.Record
	return ImportRow{
		Leader:                 r.Get(schema.Leader),
		FixedLength:            r.Get(schema.FixedLength),
		ISBN:                   r.Get(schema.ISBN),
		CatalogingAgency:       r.Get(schema.CatalogingAgency),
		CatalogingLanguage:     r.Get(schema.CatalogingLanguage),
		DescriptionConventions: r.Get(schema.DescriptionConventions),
		Title:                  r.Get(schema.Title),
		Responsibility:         r.Get(schema.Responsibility),
		PublicationPlace:       r.Get(schema.PublicationPlace),
		Publisher:              r.Get(schema.Publisher),
		PublicationDate:        r.Get(schema.PublicationDate),
		ContentType:            r.Get(schema.ContentType),
		ContentSource:          r.Get(schema.ContentSource),
		MediaType:              r.Get(schema.MediaType),
		MediaSource:            r.Get(schema.MediaSource),
		CarrierType:            r.Get(schema.CarrierType),
		CarrierSource:          r.Get(schema.CarrierSource),
		ShelfCode:              r.Get(schema.ShelfCode),
		Library:                r.Get(schema.Library),
		CallNumberSuffix:       r.Get(schema.CallNumberSuffix),
		SupplierCode:           r.Get(schema.SupplierCode),
		Price:                  r.Get(schema.Price),
		SupplierTag:            r.Get(schema.SupplierTag),
		Fund:                   r.Get(schema.Fund),
		ShippingCode:           r.Get(schema.ShippingCode),
		EditionNote:            r.Get(schema.EditionNote),
		InternalNote:           r.Get(schema.InternalNote),
		DuplicateFlag:          r.Get(schema.DuplicateFlag),
		HitCount:               r.Get(schema.HitCount),
		MatchCarrier:           r.Get(schema.MatchCarrier),
		MatchISBN:              r.Get(schema.MatchISBN),
		Highlight:              row.Annotation.Highlight(),
	}
}

// WriteParquet writes every row of the table as a parquet file.
func WriteParquet(w io.Writer, t *records.Table) error {
	rows := make([]ImportRow, 0, t.Len())
	for _, row := range t.Rows {
		rows = append(rows, NewImportRow(row))
	}

	writer := parquet.NewGenericWriter[ImportRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet loads the rows of a parquet artifact.
func ReadParquet(path string) ([]ImportRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[ImportRow](pf)
	defer reader.Close()

	var out []ImportRow
	batch := make([]ImportRow, 128)
	for {
		n, err := reader.Read(batch)
		out = append(out, batch[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Read parquet artifact", "file", path, "rows", len(out))
	return out, nil
}

// Row converts the parquet layout back into an output row without annotation.
func (r ImportRow) Row() *records.Row {
	row := &records.Row{}
	values := []string{
		r.Leader, r.FixedLength, r.ISBN, r.CatalogingAgency, r.CatalogingLanguage,
		r.DescriptionConventions, r.Title, r.Responsibility, r.PublicationPlace,
		r.Publisher, r.PublicationDate, r.ContentType, r.ContentSource, r.MediaType,
		r.MediaSource, r.CarrierType, r.CarrierSource, r.ShelfCode, r.Library,
		r.CallNumberSuffix, r.SupplierCode, r.Price, r.SupplierTag, r.Fund,
		r.ShippingCode, r.EditionNote, r.InternalNote,
	}
	for i, v := range values {
		row.Record.Set(schema.Field(i), v)
	}
	return row
}
