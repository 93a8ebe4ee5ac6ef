package ingest

import (
	"regexp"
	"strings"

	"github.com/openlit/litgraph/pkg/common"
)

// MinSectionLength is the minimum character count for a section to be
// worth extracting from; shorter sections are discarded.
const MinSectionLength = 100

// UnlabeledSection is the label used when no section headers are
// detected and the whole text is treated as one abstract-level section.
const UnlabeledSection = "abstract"

var sectionHeaderRe = regexp.MustCompile(`(?im)^\s*(?:\d+(?:\.\d+)*\.?\s+)?` +
	`(abstract|introduction|background|related works?|materials and methods|methods?|methodology|` +
	`experiments?|experimental setup|results?(?: and discussion)?|evaluation|discussion|analysis|` +
	`conclusions?|future work|limitations|acknowledge?ments|references)\s*:?\s*$`)

// NormalizeSectionLabel maps a detected header to its canonical label:
// lowercased, numbering stripped, trailing punctuation removed.
func NormalizeSectionLabel(header string) string {
	label := strings.ToLower(strings.TrimSpace(header))
	label = strings.TrimSuffix(label, ":")
	return strings.Join(strings.Fields(label), " ")
}

// SegmentText splits a paper's full text into labeled sections by
// detecting common section headers, including numbered variants like
// "1. Introduction". Sections with the same normalized label are merged
// by concatenation, and sections under MinSectionLength are discarded.
// When no headers are detected, the entire text becomes one unlabeled
// section subject to the same length rule.
func SegmentText(paperID, text string) []common.Section {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	matches := sectionHeaderRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return fallbackSection(paperID, text)
	}

	type span struct {
		label string
		start int
		end   int
	}

	spans := make([]span, 0, len(matches))
	for i, m := range matches {
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		spans = append(spans, span{
			label: NormalizeSectionLabel(text[m[2]:m[3]]),
			start: bodyStart,
			end:   bodyEnd,
		})
	}

	// Merge duplicate labels in first-seen order before applying the
	// length cutoff, so two short halves of a split section survive
	// together.
	order := make([]string, 0, len(spans))
	merged := make(map[string]*common.Section, len(spans))
	for _, sp := range spans {
		body := strings.TrimSpace(text[sp.start:sp.end])
		if body == "" {
			continue
		}
		if existing, ok := merged[sp.label]; ok {
			existing.Text = existing.Text + "\n" + body
			existing.End = sp.end
			continue
		}
		merged[sp.label] = &common.Section{
			PaperID: paperID,
			Label:   sp.label,
			Text:    body,
			Start:   sp.start,
			End:     sp.end,
		}
		order = append(order, sp.label)
	}

	sections := make([]common.Section, 0, len(order))
	for _, label := range order {
		section := merged[label]
		if len(section.Text) < MinSectionLength {
			continue
		}
		sections = append(sections, *section)
	}
	return sections
}

func fallbackSection(paperID, text string) []common.Section {
	body := strings.TrimSpace(text)
	if len(body) < MinSectionLength {
		return nil
	}
	return []common.Section{{
		PaperID: paperID,
		Label:   UnlabeledSection,
		Text:    body,
		Start:   0,
		End:     len(text),
	}}
}

// SegmentPapers segments every paper with full text and returns the
// mapping from paper ID to its sections. Papers without full text map to
// an empty slice, which downstream handles as metadata-only.
func SegmentPapers(papers []common.Paper) map[string][]common.Section {
	out := make(map[string][]common.Section, len(papers))
	for _, paper := range papers {
		out[paper.ID] = SegmentText(paper.ID, paper.FullText)
	}
	return out
}
