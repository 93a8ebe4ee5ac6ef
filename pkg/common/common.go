package common

import (
	"sort"
	"strings"
)

// Paper represents a single bibliographic record from a reference-manager
// export. Metadata is always present; FullText is empty when no document
// is attached. Papers are immutable after ingestion except for the
// EntityIDs back-links added during graph merging.
type Paper struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []Author `json:"authors"`
	Abstract string   `json:"abstract,omitempty"`
	Venue    string   `json:"venue,omitempty"`
	Year     int      `json:"year,omitempty"`
	DOI      string   `json:"doi,omitempty"`

	// DocumentKey references the attached full-text document, either a
	// local file path or an object-store key depending on the loader.
	DocumentKey string `json:"document_key,omitempty"`

	FullText  string   `json:"full_text,omitempty"`
	EntityIDs []string `json:"entity_ids,omitempty"`
}

// Author is one author of a paper, in citation order.
type Author struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last"`
}

// Section is a labeled span of a paper's full text. Sections are
// ephemeral: produced by segmentation, consumed by extraction, never
// persisted on their own.
type Section struct {
	PaperID string `json:"paper_id"`
	Label   string `json:"label"`
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// EntityType tags the kind of entity extracted from paper text.
type EntityType string

const (
	EntityConcept EntityType = "concept"
	EntityMethod  EntityType = "method"
	EntityDataset EntityType = "dataset"
	EntityResult  EntityType = "result"
	EntityClaim   EntityType = "claim"
)

// EntityTypes lists all known entity types in a stable order.
var EntityTypes = []EntityType{
	EntityConcept,
	EntityMethod,
	EntityDataset,
	EntityResult,
	EntityClaim,
}

// Evidence is one verbatim quote supporting an entity, attributed to the
// paper and section it was extracted from.
type Evidence struct {
	PaperID string `json:"paper_id"`
	Section string `json:"section"`
	Quote   string `json:"quote"`
}

// Entity is a node in the knowledge graph. Entities are shared across
// papers: the canonical ID is derived from the normalized name and type,
// so repeated extraction of the same concept resolves to one node.
type Entity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     EntityType `json:"type"`
	PaperIDs []string   `json:"paper_ids"`
	Evidence []Evidence `json:"evidence"`
}

// CanonicalEntityID derives the stable graph-wide identifier for an
// entity mention. Case and interior whitespace do not affect identity.
func CanonicalEntityID(name string, typ EntityType) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.Join(strings.Fields(normalized), "-")
	return string(typ) + ":" + normalized
}

// RelationType tags how a relationship was derived.
type RelationType string

const (
	RelationCooccurrence RelationType = "cooccurrence"
	RelationSemantic     RelationType = "semantic"
)

// Relationship is an undirected edge between two entities. Identity is
// (SourceID, TargetID) within one project; the pair is canonicalized so
// the lexically smaller entity ID is always the source. Weight only
// grows: merging the same edge twice accumulates, never overwrites.
type Relationship struct {
	SourceID   string       `json:"source_id"`
	TargetID   string       `json:"target_id"`
	Type       RelationType `json:"type"`
	Weight     float64      `json:"weight"`
	Similarity float64      `json:"similarity,omitempty"`
}

// CanonicalPair orders two entity IDs into the single stored ordering
// for an undirected edge.
func CanonicalPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Chunk is a unit of text sent to the embedding provider, cut from a
// section or an evidence span.
type Chunk struct {
	ID      string `json:"id"`
	PaperID string `json:"paper_id"`
	Section string `json:"section"`
	Text    string `json:"text"`
}

// EmbeddingVector is the embedding of one chunk. Vectors are written
// once and only ever replaced wholesale on re-embedding.
type EmbeddingVector struct {
	ChunkID string    `json:"chunk_id"`
	PaperID string    `json:"paper_id"`
	Vector  []float32 `json:"vector"`
}

// Cluster groups entities by structural proximity in the relationship
// graph. Cluster IDs are scoped to a single analysis run.
type Cluster struct {
	ID        int      `json:"id"`
	EntityIDs []string `json:"entity_ids"`
}

// Gap is a candidate missing connection between two clusters, surfaced
// as an under-explored research direction. Gaps are derived data and are
// regenerated wholesale on every analysis run.
type Gap struct {
	ClusterA int     `json:"cluster_a"`
	ClusterB int     `json:"cluster_b"`
	Score    float64 `json:"score"`
}

// CentralityMetric is the betweenness score of one entity over the graph
// snapshot of an analysis run.
type CentralityMetric struct {
	EntityID string  `json:"entity_id"`
	Score    float64 `json:"score"`
}

// AnalysisReport bundles the derived analytics of one analysis run.
// A new run supersedes the previous report wholesale.
type AnalysisReport struct {
	RunID      string             `json:"run_id"`
	ProjectID  string             `json:"project_id"`
	Clusters   []Cluster          `json:"clusters"`
	Gaps       []Gap              `json:"gaps"`
	Centrality []CentralityMetric `json:"centrality"`
}

// GraphSnapshot is the queryable view of a project's merged graph.
type GraphSnapshot struct {
	ProjectID     string         `json:"project_id"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// SortEntities orders entities by canonical ID for deterministic output.
func SortEntities(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].ID < entities[j].ID
	})
}

// SortRelationships orders edges by their canonical key for deterministic
// output.
func SortRelationships(relations []Relationship) {
	sort.Slice(relations, func(i, j int) bool {
		if relations[i].SourceID != relations[j].SourceID {
			return relations[i].SourceID < relations[j].SourceID
		}
		return relations[i].TargetID < relations[j].TargetID
	})
}
