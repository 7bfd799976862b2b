package feed

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// Record is one flat block of the feed, child element name to trimmed text.
type Record map[string]string

// ExtractRecords streams r and returns every element named element as a flat
// Record of its direct children. Decoding stops quietly at the first
// malformed token and returns whatever was read up to that point.
func ExtractRecords(r io.Reader, element string) []Record {
	records := []Record{}

	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	d.Strict = false

	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			log.Debug().Err(err).Str("element", element).Msg("Stopped extracting feed records")
			break
		}

		if ty, ok := tok.(xml.StartElement); ok && ty.Name.Local == element {
			record, complete := readRecord(d)
			if len(record) > 0 {
				records = append(records, record)
			}
			if !complete {
				break
			}
		}
	}

	return records
}

// readRecord consumes tokens up to the end of the current element. Nested
// elements deeper than one level are flattened into their text.
func readRecord(d *xml.Decoder) (Record, bool) {
	record := Record{}

	depth := 0
	field := ""
	var text strings.Builder

	for {
		tok, err := d.Token()
		if err != nil {
			return record, false
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				field = ty.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth >= 1 {
				text.Write(bytes.TrimSpace(ty))
			}
		case xml.EndElement:
			if depth == 0 {
				return record, true
			}
			if depth == 1 && field != "" {
				if _, exists := record[field]; !exists {
					record[field] = text.String()
				}
				field = ""
			}
			depth--
		}
	}
}
