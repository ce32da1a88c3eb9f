package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/ordersheet/internal/models"
)

// ErrDiagnostic is returned when the SRU server answers with a diagnostic instead of results.
var ErrDiagnostic = errors.New("SRU diagnostic")

type searchRetrieveResponse struct {
	XMLName         xml.Name     `xml:"http://www.loc.gov/zing/srw/ searchRetrieveResponse"`
	NumberOfRecords string       `xml:"http://www.loc.gov/zing/srw/ numberOfRecords"`
	Records         []srwRecord  `xml:"http://www.loc.gov/zing/srw/ records>record"`
	Diagnostics     []diagnostic `xml:"diagnostics>diagnostic"`
}

type srwRecord struct {
	RecordData struct {
		Records []marcRecord `xml:"http://www.loc.gov/MARC21/slim record"`
	} `xml:"http://www.loc.gov/zing/srw/ recordData"`
}

type diagnostic struct {
	URI     string `xml:"uri"`
	Message string `xml:"message"`
	Details string `xml:"details"`
}

type marcRecord struct {
	DataFields []dataField `xml:"datafield"`
}

type dataField struct {
	Tag       string     `xml:"tag,attr"`
	Subfields []subfield `xml:"subfield"`
}

type subfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// subfield returns the first value of tag$code, trimmed
func (r *marcRecord) subfield(tag, code string) string {
	for _, df := range r.DataFields {
		if df.Tag != tag {
			continue
		}
		for _, sf := range df.Subfields {
			if sf.Code == code {
				return strings.TrimSpace(sf.Value)
			}
		}
	}
	return ""
}

func (r *marcRecord) match() models.CatalogMatch {
	author := r.subfield("100", "a")
	if author == "" {
		author = r.subfield("700", "a")
	}
	return models.CatalogMatch{
		Title:     r.subfield("245", "a"),
		Author:    author,
		ISBN:      r.subfield("020", "a"),
		Publisher: r.subfield("264", "b"),
		Year:      r.subfield("264", "c"),
		Carrier:   r.subfield("338", "a"),
	}
}

// ParseResponse decodes an SRU searchRetrieve response carrying MARCXML records.
// A record without MARC data yields an empty match.
func ParseResponse(r io.Reader) (*SearchResponse, error) {
	var doc searchRetrieveResponse
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode SRU response: %w", err)
	}

	if len(doc.Diagnostics) > 0 {
		d := doc.Diagnostics[0]
		msg := strings.TrimSpace(d.Message)
		if details := strings.TrimSpace(d.Details); details != "" {
			msg += ": " + details
		}
		return nil, fmt.Errorf("%w: %s", ErrDiagnostic, msg)
	}

	count := 0
	if n := strings.TrimSpace(doc.NumberOfRecords); n != "" {
		var err error
		count, err = strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("invalid numberOfRecords %q: %w", n, err)
		}
	}

	result := &SearchResponse{Count: count}
	for _, rec := range doc.Records {
		if len(rec.RecordData.Records) == 0 {
			result.Matches = append(result.Matches, models.CatalogMatch{})
			continue
		}
		result.Matches = append(result.Matches, rec.RecordData.Records[0].match())
	}

	return result, nil
}
