package ingest

import (
	"testing"

	"github.com/openlit/litgraph/pkg/common"
)

const exportFixture = `[
  {
    "id": "entry-1",
    "citekey": "smith2021transfer",
    "title": "Transfer Learning in Low-Resource Domains",
    "abstract": "We study transfer learning.",
    "venue": "Journal of ML",
    "year": 2021,
    "doi": "10.1000/xyz",
    "authors": [
      {"first": "Ada", "last": "Smith"},
      {"first": "Ben", "last": "Jones"}
    ],
    "attachments": [
      {"path": "papers/smith2021.pdf", "primary": true},
      {"path": "papers/smith2021-supp.pdf", "primary": false}
    ]
  },
  {
    "id": 42,
    "title": "Metadata Only Paper",
    "year": "2019",
    "authors": [{"last": "Lee"}]
  },
  {
    "id": "entry-3",
    "citekey": "broken",
    "year": "not-a-year",
    "title": "Bad Year Entry",
    "authors": [{"last": "Chen"}]
  },
  {
    "id": "entry-4",
    "authors": [{"last": "NoTitle"}]
  }
]`

func parseFixturePapers(t *testing.T) []common.Paper {
	t.Helper()
	papers, _ := ParseExport([]byte(exportFixture))
	return papers
}

func TestParseExport_ValidEntries(t *testing.T) {
	papers, errs := ParseExport([]byte(exportFixture))
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 entry errors, got %d", len(errs))
	}

	first := papers[0]
	if first.ID != "smith2021transfer" {
		t.Fatalf("expected citekey as id, got %q", first.ID)
	}
	if first.Year != 2021 {
		t.Fatalf("expected year 2021, got %d", first.Year)
	}
	if len(first.Authors) != 2 || first.Authors[0].Last != "Smith" {
		t.Fatalf("unexpected authors: %+v", first.Authors)
	}
	if first.DocumentKey != "papers/smith2021.pdf" {
		t.Fatalf("expected primary attachment, got %q", first.DocumentKey)
	}

	second := papers[1]
	if second.ID != "42" {
		t.Fatalf("expected numeric id coerced to string, got %q", second.ID)
	}
	if second.DocumentKey != "" {
		t.Fatalf("expected no document for metadata-only paper, got %q", second.DocumentKey)
	}
}

func TestParseExport_OrderPreserved(t *testing.T) {
	papers, _ := ParseExport([]byte(exportFixture))
	if papers[0].ID != "smith2021transfer" || papers[1].ID != "42" {
		t.Fatalf("export order not preserved: %q, %q", papers[0].ID, papers[1].ID)
	}
}

func TestParseExport_MalformedJSON(t *testing.T) {
	papers, errs := ParseExport([]byte("{not an array"))
	if papers != nil {
		t.Fatalf("expected no papers, got %d", len(papers))
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
}
