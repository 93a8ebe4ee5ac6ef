// Package store defines the persistence interface for project
// knowledge graphs and shared helpers for its implementations.
package store

import (
	"context"

	"github.com/openlit/litgraph/pkg/common"
)

// GraphStorage persists and queries one project's knowledge graph:
// papers, merged entities and relationships, chunk embeddings and
// derived analysis reports.
type GraphStorage interface {
	// SavePapers stores the papers of one import, tagged with the
	// import ID so a failed import can be rolled back.
	SavePapers(ctx context.Context, projectID, importID string, papers []common.Paper) error

	// SaveEntities bulk-upserts entities. Re-saving an entity merges
	// paper references and evidence instead of overwriting.
	SaveEntities(ctx context.Context, projectID string, entities []common.Entity) error

	// UpsertRelationships adds edge weight on conflict rather than
	// overwriting, so repeated imports accumulate.
	UpsertRelationships(ctx context.Context, projectID string, relations []common.Relationship) error

	// SaveEmbeddings replaces the stored vectors for the given chunks.
	SaveEmbeddings(ctx context.Context, projectID string, vectors []common.EmbeddingVector) error

	// HasEmbeddings reports whether the project has any stored chunk
	// embeddings.
	HasEmbeddings(ctx context.Context, projectID string) (bool, error)

	GetGraph(ctx context.Context, projectID string) (common.GraphSnapshot, error)

	// SimilarEntityPairs returns candidate semantic relationships
	// between entities whose embeddings are closer than minSimilarity.
	SimilarEntityPairs(ctx context.Context, projectID string, minSimilarity float64, limit int) ([]common.Relationship, error)

	// SaveAnalysis stores a report, superseding the previous run.
	SaveAnalysis(ctx context.Context, report *common.AnalysisReport) error
	LatestAnalysis(ctx context.Context, projectID string) (*common.AnalysisReport, error)

	// RollbackImport removes the papers of one import together with
	// the entities and relationships no surviving paper references.
	RollbackImport(ctx context.Context, projectID, importID string) error
}
