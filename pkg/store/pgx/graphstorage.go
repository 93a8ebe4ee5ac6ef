// Package pgx implements store.GraphStorage on PostgreSQL with
// pgvector for embedding similarity search.
package pgx

import (
	"context"
	"sync"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openlit/litgraph/pkg/ai"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStorage implements the GraphStorage interface using PostgreSQL
// with pgvector. The AI client generates entity embeddings during
// SaveEntities; writes are serialized through a mutex.
type GraphDBStorage struct {
	conn     pgxIConn
	aiClient ai.GraphAIClient
	dbLock   sync.Mutex
}

// NewGraphDBStorageWithConnection creates a GraphDBStorage over an
// existing connection or pool. The AI client may be nil, in which case
// entities are stored without embeddings and semantic pair lookup finds
// nothing.
func NewGraphDBStorageWithConnection(
	ctx context.Context,
	conn pgxIConn,
	aiClient ai.GraphAIClient,
) (*GraphDBStorage, error) {
	return &GraphDBStorage{
		conn:     conn,
		aiClient: aiClient,
	}, nil
}
