package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pankajkkc01/RAG-application/internal/loader"
	"github.com/pankajkkc01/RAG-application/internal/model"
	"github.com/pankajkkc01/RAG-application/internal/repository"
	"github.com/pankajkkc01/RAG-application/internal/splitter"
	"github.com/pankajkkc01/RAG-application/internal/vectorindex"
)

// Indexer is the slice of the vector index the document pipeline consumes.
type Indexer interface {
	Ingest(ctx context.Context, chunks []vectorindex.Chunk) error
	DeleteByDocument(ctx context.Context, documentID uint) error
}

// DocumentService owns the upload pipeline (stage, record, store, chunk,
// ingest, compensate on failure) and document listing/deletion.
type DocumentService struct {
	docRepo    *repository.DocumentRepository
	index      Indexer
	splitter   *splitter.Splitter
	uploadDir  string
	stagingDir string
}

func NewDocumentService(
	docRepo *repository.DocumentRepository,
	index Indexer,
	split *splitter.Splitter,
	uploadDir, stagingDir string,
) *DocumentService {
	return &DocumentService{
		docRepo:    docRepo,
		index:      index,
		splitter:   split,
		uploadDir:  uploadDir,
		stagingDir: stagingDir,
	}
}

type UploadInput struct {
	Filename string
	File     io.Reader
}

type UploadResult struct {
	DocumentID uint `json:"file_id"`
	ChunkCount int  `json:"chunk_count"`
}

// Upload runs the full pipeline. Unsupported extensions are rejected before
// any side effect. On indexing failure the document record, any partially
// ingested chunks, and the stored file are all removed.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	filename := filepath.Base(strings.TrimSpace(input.Filename))
	if filename == "" || filename == "." {
		return nil, ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !loader.SupportedExtension(filename) {
		return nil, fmt.Errorf("%w: %s", loader.ErrUnsupportedFormat, ext)
	}

	stagingPath, err := s.stage(input.File, ext)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{Filename: filename}
	if err := s.docRepo.Create(doc); err != nil {
		_ = os.Remove(stagingPath)
		return nil, err
	}

	// Permanent storage is keyed by original filename; duplicates overwrite.
	permPath := filepath.Join(s.uploadDir, filename)
	if err := os.Rename(stagingPath, permPath); err != nil {
		_ = os.Remove(stagingPath)
		_ = s.docRepo.DeleteByID(doc.ID)
		return nil, fmt.Errorf("store uploaded file failed: %w", err)
	}

	chunkCount, err := s.indexDocument(ctx, permPath, doc.ID)
	if err != nil {
		log.Printf("index document %d (%s) failed: %v", doc.ID, filename, err)
		s.compensate(ctx, doc.ID, permPath)
		return nil, err
	}

	return &UploadResult{DocumentID: doc.ID, ChunkCount: chunkCount}, nil
}

// List returns document records, most recent first.
func (s *DocumentService) List() ([]model.Document, error) {
	return s.docRepo.List()
}

// Delete removes the document's chunks from the index and its record from
// the store. Both halves are idempotent; each reports success independently.
func (s *DocumentService) Delete(ctx context.Context, documentID uint) (deletedFromIndex, deletedFromStore bool) {
	if err := s.index.DeleteByDocument(ctx, documentID); err != nil {
		log.Printf("delete document %d from index failed: %v", documentID, err)
	} else {
		deletedFromIndex = true
	}
	if err := s.docRepo.DeleteByID(documentID); err != nil {
		log.Printf("delete document %d record failed: %v", documentID, err)
	} else {
		deletedFromStore = true
	}
	return deletedFromIndex, deletedFromStore
}

func (s *DocumentService) stage(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir failed: %w", err)
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir failed: %w", err)
	}

	path := filepath.Join(s.stagingDir, "upload_"+uuid.NewString()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staging file failed: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write staging file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staging file failed: %w", err)
	}
	return path, nil
}

func (s *DocumentService) indexDocument(ctx context.Context, path string, documentID uint) (int, error) {
	text, err := loader.ExtractText(path)
	if err != nil {
		return 0, err
	}
	pieces := s.splitter.Split(text)
	if len(pieces) == 0 {
		return 0, ErrNoExtractedText
	}

	chunks := make([]vectorindex.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = vectorindex.Chunk{DocumentID: documentID, Text: p}
	}
	if err := s.index.Ingest(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// compensate undoes a failed ingest: the document record, any partially
// ingested chunks, and the stored file.
func (s *DocumentService) compensate(ctx context.Context, documentID uint, permPath string) {
	if err := s.docRepo.DeleteByID(documentID); err != nil {
		log.Printf("compensating record delete for document %d failed: %v", documentID, err)
	}
	if err := s.index.DeleteByDocument(ctx, documentID); err != nil {
		log.Printf("compensating index delete for document %d failed: %v", documentID, err)
	}
	if err := os.Remove(permPath); err != nil && !os.IsNotExist(err) {
		log.Printf("compensating file delete %s failed: %v", permPath, err)
	}
}
