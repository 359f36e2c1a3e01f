package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/loader"
	"github.com/pankajkkc01/RAG-application/internal/model"
	"github.com/pankajkkc01/RAG-application/internal/repository"
	"github.com/pankajkkc01/RAG-application/internal/splitter"
	"github.com/pankajkkc01/RAG-application/internal/vectorindex"
)

type fakeIndexer struct {
	ingestErr error
	ingested  []vectorindex.Chunk
	deleted   []uint
}

func (f *fakeIndexer) Ingest(_ context.Context, chunks []vectorindex.Chunk) error {
	if f.ingestErr != nil {
		return f.ingestErr
	}
	f.ingested = append(f.ingested, chunks...)
	return nil
}

func (f *fakeIndexer) DeleteByDocument(_ context.Context, documentID uint) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}

func newTestDocumentService(t *testing.T, index Indexer) (*DocumentService, *gorm.DB, string) {
	t.Helper()
	db := newTestDB(t)
	uploadDir := t.TempDir()
	split := splitter.New(80, 10, func(s string) int { return len([]rune(s)) })
	svc := NewDocumentService(
		repository.NewDocumentRepository(db),
		index,
		split,
		uploadDir,
		filepath.Join(uploadDir, ".staging"),
	)
	return svc, db, uploadDir
}

const testHTML = `<html><body>
<h1>Handbook</h1>
<p>The first policy covers travel. The second policy covers equipment.</p>
<p>A longer paragraph follows with more detail about reimbursement timelines and the approvals each request needs before payment.</p>
</body></html>`

func TestUploadIndexesDocument(t *testing.T) {
	index := &fakeIndexer{}
	svc, db, uploadDir := newTestDocumentService(t, index)

	result, err := svc.Upload(context.Background(), UploadInput{
		Filename: "handbook.html",
		File:     strings.NewReader(testHTML),
	})
	require.NoError(t, err)

	assert.NotZero(t, result.DocumentID)
	assert.Equal(t, len(index.ingested), result.ChunkCount)
	require.NotEmpty(t, index.ingested)
	for _, c := range index.ingested {
		assert.Equal(t, result.DocumentID, c.DocumentID)
		assert.NotEmpty(t, c.Text)
	}

	// The file lands in permanent storage under its original name and the
	// staging area is left empty.
	_, err = os.Stat(filepath.Join(uploadDir, "handbook.html"))
	require.NoError(t, err)
	staged, err := os.ReadDir(filepath.Join(uploadDir, ".staging"))
	require.NoError(t, err)
	assert.Empty(t, staged)

	var doc model.Document
	require.NoError(t, db.First(&doc).Error)
	assert.Equal(t, "handbook.html", doc.Filename)
}

func TestUploadRejectsUnsupportedExtensionBeforeSideEffects(t *testing.T) {
	index := &fakeIndexer{}
	svc, db, uploadDir := newTestDocumentService(t, index)

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "notes.txt",
		File:     strings.NewReader("plain text"),
	})
	require.ErrorIs(t, err, loader.ErrUnsupportedFormat)

	var count int64
	require.NoError(t, db.Model(&model.Document{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, index.ingested)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file may be written for a rejected upload")
}

func TestUploadCompensatesOnIndexFailure(t *testing.T) {
	index := &fakeIndexer{ingestErr: errors.New("embedding endpoint down")}
	svc, db, uploadDir := newTestDocumentService(t, index)

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "handbook.html",
		File:     strings.NewReader(testHTML),
	})
	require.Error(t, err)

	// Compensation removes the record, any partial chunks, and the file.
	var count int64
	require.NoError(t, db.Model(&model.Document{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.NotEmpty(t, index.deleted)

	_, statErr := os.Stat(filepath.Join(uploadDir, "handbook.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploadRejectsEmptyExtraction(t *testing.T) {
	index := &fakeIndexer{}
	svc, db, _ := newTestDocumentService(t, index)

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "empty.html",
		File:     strings.NewReader("<html><body>   </body></html>"),
	})
	require.ErrorIs(t, err, ErrNoExtractedText)

	var count int64
	require.NoError(t, db.Model(&model.Document{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteReportsBothHalves(t *testing.T) {
	index := &fakeIndexer{}
	svc, db, _ := newTestDocumentService(t, index)
	require.NoError(t, db.Create(&model.Document{Filename: "handbook.html"}).Error)

	deletedFromIndex, deletedFromStore := svc.Delete(context.Background(), 1)
	assert.True(t, deletedFromIndex)
	assert.True(t, deletedFromStore)
	assert.Equal(t, []uint{1}, index.deleted)

	// Deleting an unknown document is idempotent on both halves.
	deletedFromIndex, deletedFromStore = svc.Delete(context.Background(), 99)
	assert.True(t, deletedFromIndex)
	assert.True(t, deletedFromStore)
}

func TestListReturnsMostRecentFirst(t *testing.T) {
	index := &fakeIndexer{}
	svc, db, _ := newTestDocumentService(t, index)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&model.Document{Filename: "older.html", CreatedAt: base}).Error)
	require.NoError(t, db.Create(&model.Document{Filename: "newer.html", CreatedAt: base.Add(time.Hour)}).Error)

	docs, err := svc.List()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "newer.html", docs[0].Filename)
	assert.Equal(t, "older.html", docs[1].Filename)
}
