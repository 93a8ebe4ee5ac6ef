package graph

import (
	"fmt"
	"strings"
)

// sectionKind buckets normalized section labels into extraction
// profiles, since the useful entity mix differs between, say, a methods
// section and a discussion.
type sectionKind string

const (
	kindConceptual sectionKind = "conceptual"
	kindMethods    sectionKind = "methods"
	kindResults    sectionKind = "results"
	kindDiscussion sectionKind = "discussion"
	kindAbstract   sectionKind = "abstract"
)

var labelKinds = map[string]sectionKind{
	"introduction":          kindConceptual,
	"background":            kindConceptual,
	"related work":          kindConceptual,
	"related works":         kindConceptual,
	"methods":               kindMethods,
	"method":                kindMethods,
	"methodology":           kindMethods,
	"materials and methods": kindMethods,
	"experiments":           kindMethods,
	"experiment":            kindMethods,
	"experimental setup":    kindMethods,
	"results":               kindResults,
	"result":                kindResults,
	"results and discussion": kindResults,
	"evaluation":             kindResults,
	"analysis":               kindResults,
	"discussion":             kindDiscussion,
	"conclusion":             kindDiscussion,
	"conclusions":            kindDiscussion,
	"future work":            kindDiscussion,
	"limitations":            kindDiscussion,
	"abstract":               kindAbstract,
}

func kindForLabel(label string) sectionKind {
	if kind, ok := labelKinds[label]; ok {
		return kind
	}
	return kindAbstract
}

// typeBudget caps how many entities of each type the model is asked
// for, varying by section kind to keep responses focused.
type typeBudget struct {
	Concepts int
	Methods  int
	Datasets int
	Results  int
	Claims   int
}

var kindBudgets = map[sectionKind]typeBudget{
	kindConceptual: {Concepts: 8, Methods: 3, Datasets: 2, Results: 1, Claims: 3},
	kindMethods:    {Concepts: 4, Methods: 8, Datasets: 5, Results: 2, Claims: 1},
	kindResults:    {Concepts: 3, Methods: 3, Datasets: 3, Results: 8, Claims: 4},
	kindDiscussion: {Concepts: 5, Methods: 2, Datasets: 1, Results: 3, Claims: 8},
	kindAbstract:   {Concepts: 5, Methods: 4, Datasets: 3, Results: 3, Claims: 3},
}

const extractPromptTemplate = `
# Task Context
You are an assistant that extracts typed entities from a section of a scientific paper for a literature knowledge graph.

# Background Data
Paper title: %s
Section: %s

# Detailed Task Description & Rules
- Extract the most salient entities mentioned in the section text, grouped by type.
- Entity types and the maximum number to extract per type:
  * concepts: research concepts, topics and techniques as fields of study (at most %d)
  * methods: concrete methods, algorithms, models or procedures applied or proposed (at most %d)
  * datasets: named datasets, corpora or benchmarks (at most %d)
  * results: concrete findings or measured outcomes (at most %d)
  * claims: positions or conclusions the authors assert (at most %d)
- For every entity provide the exact evidence: a short verbatim quote from the section text where it is mentioned.
- Use the most common surface name for each entity, not a paraphrase.
- Do not invent entities that are not grounded in the section text.

# Output Formatting
Return a JSON object with the keys "concepts", "methods", "datasets", "results" and "claims", each holding a list of {"name": "...", "evidence": "..."} objects. Use empty lists for types with no entities.
`

// extractionPrompt builds the section-kind-specific system prompt.
func extractionPrompt(paperTitle, sectionLabel string) string {
	budget := kindBudgets[kindForLabel(sectionLabel)]
	return strings.TrimSpace(fmt.Sprintf(
		extractPromptTemplate,
		paperTitle,
		sectionLabel,
		budget.Concepts,
		budget.Methods,
		budget.Datasets,
		budget.Results,
		budget.Claims,
	))
}
