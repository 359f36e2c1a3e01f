// Package vectorindex adapts a persistent chromem-go collection to the three
// operations the rest of the system needs: ingest chunks tagged with a
// document ID, delete all chunks for a document ID, and retrieve the top-k
// chunks for a query.
package vectorindex

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// metadata key tagging each chunk with its owning document record.
const fileIDKey = "file_id"

// Chunk is the unit of embedding and retrieval.
type Chunk struct {
	DocumentID uint
	Text       string
}

// Index is the vector index surface consumed by the services.
type Index interface {
	Ingest(ctx context.Context, chunks []Chunk) error
	DeleteByDocument(ctx context.Context, documentID uint) error
	Retrieve(ctx context.Context, query string, k int) ([]Chunk, error)
}

// ChromemIndex is a chromem-go backed Index persisted under a dedicated
// directory. A single handle is shared across all requests.
type ChromemIndex struct {
	collection *chromem.Collection
}

// NewChromemIndex opens (creating if absent) the on-disk index at persistDir.
func NewChromemIndex(persistDir, collectionName string, embed chromem.EmbeddingFunc) (*ChromemIndex, error) {
	db, err := chromem.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector index at %s failed: %w", persistDir, err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open collection %s failed: %w", collectionName, err)
	}
	return &ChromemIndex{collection: collection}, nil
}

// Ingest embeds and stores the chunks. Semantics are at-least-once: a partial
// failure may leave some chunks behind and is surfaced as an overall failure
// without rollback.
func (x *ChromemIndex) Ingest(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      uuid.NewString(),
			Content: c.Text,
			Metadata: map[string]string{
				fileIDKey: strconv.FormatUint(uint64(c.DocumentID), 10),
			},
		}
	}

	if err := x.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("ingest %d chunks failed: %w", len(chunks), err)
	}
	return nil
}

// DeleteByDocument removes every chunk tagged with documentID. Deleting a
// tag with no chunks succeeds with zero effect.
func (x *ChromemIndex) DeleteByDocument(ctx context.Context, documentID uint) error {
	if x.collection.Count() == 0 {
		return nil
	}
	where := map[string]string{fileIDKey: strconv.FormatUint(uint64(documentID), 10)}
	if err := x.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("delete chunks for document %d failed: %w", documentID, err)
	}
	return nil
}

// Retrieve returns up to k chunks nearest the query, in the index's own
// similarity order. k is clamped to the collection size.
func (x *ChromemIndex) Retrieve(ctx context.Context, query string, k int) ([]Chunk, error) {
	if k <= 0 {
		return nil, nil
	}
	if n := x.collection.Count(); n == 0 {
		return nil, nil
	} else if k > n {
		k = n
	}

	results, err := x.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	chunks := make([]Chunk, 0, len(results))
	for _, r := range results {
		id, _ := strconv.ParseUint(r.Metadata[fileIDKey], 10, 64)
		chunks = append(chunks, Chunk{
			DocumentID: uint(id),
			Text:       r.Content,
		})
	}
	return chunks, nil
}

// Count reports the number of stored chunks. Used by the health check.
func (x *ChromemIndex) Count() int {
	return x.collection.Count()
}
