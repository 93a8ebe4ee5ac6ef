// Package ingest parses reference-manager exports into paper records and
// splits attached full text into labeled sections for extraction.
package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/openlit/litgraph/pkg/common"
)

// FlexibleString can unmarshal from either string or number JSON values.
// Reference-manager exports are inconsistent about year and id fields.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// ExportEntry is a single record of a bibliographic export.
type ExportEntry struct {
	ID       FlexibleString `json:"id"`
	Citekey  string         `json:"citekey"`
	DOI      string         `json:"doi"`
	Title    string         `json:"title"`
	Abstract string         `json:"abstract"`
	Venue    string         `json:"venue"`
	Year     FlexibleString `json:"year"`
	Authors  []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"authors"`
	Attachments []struct {
		Path    string `json:"path"`
		Primary bool   `json:"primary"`
	} `json:"attachments"`
}

// ParseExport parses a bibliographic JSON export into an ordered
// sequence of Paper records. Entries that fail validation are skipped
// and reported as per-entry errors; one bad entry never fails the
// export.
func ParseExport(data []byte) ([]common.Paper, []error) {
	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing export JSON: %w", err)}
	}

	var papers []common.Paper
	var errs []error

	for i, entry := range entries {
		paper, err := entryToPaper(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err))
			continue
		}
		papers = append(papers, paper)
	}

	return papers, errs
}

func entryToPaper(entry ExportEntry) (common.Paper, error) {
	if entry.Title == "" {
		return common.Paper{}, fmt.Errorf("missing required field 'title'")
	}

	id := entry.Citekey
	if id == "" {
		id = entry.ID.String()
	}
	if id == "" {
		return common.Paper{}, fmt.Errorf("missing id and citekey")
	}

	authors := make([]common.Author, len(entry.Authors))
	for i, a := range entry.Authors {
		authors[i] = common.Author{First: a.First, Last: a.Last}
	}

	year := 0
	if entry.Year.String() != "" {
		parsed, err := strconv.Atoi(entry.Year.String())
		if err != nil {
			return common.Paper{}, fmt.Errorf("invalid year: %s", entry.Year.String())
		}
		year = parsed
	}

	// First primary attachment wins; a lone attachment counts as primary.
	documentKey := ""
	for _, att := range entry.Attachments {
		if att.Primary || documentKey == "" {
			documentKey = att.Path
		}
		if att.Primary {
			break
		}
	}

	return common.Paper{
		ID:          id,
		Title:       entry.Title,
		Authors:     authors,
		Abstract:    entry.Abstract,
		Venue:       entry.Venue,
		Year:        year,
		DOI:         entry.DOI,
		DocumentKey: documentKey,
	}, nil
}
