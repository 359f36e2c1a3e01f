package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/ai"
	"github.com/pankajkkc01/RAG-application/internal/app"
	"github.com/pankajkkc01/RAG-application/internal/model"
	"github.com/pankajkkc01/RAG-application/internal/repository"
	"github.com/pankajkkc01/RAG-application/internal/transport/http/response"
	"github.com/pankajkkc01/RAG-application/internal/vectorindex"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChatModel struct {
	answer string
}

func (s *stubChatModel) Complete(context.Context, ai.ChatConfig, []ai.ChatMessage) (string, error) {
	return s.answer, nil
}

func (s *stubChatModel) StreamComplete(_ context.Context, _ ai.ChatConfig, _ []ai.ChatMessage, onChunk func(string) error) (string, error) {
	if err := onChunk(s.answer); err != nil {
		return "", err
	}
	return s.answer, nil
}

type stubRetriever struct{}

func (stubRetriever) Retrieve(context.Context, string, int) ([]vectorindex.Chunk, error) {
	return nil, nil
}

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ChatLog{}, &model.Feedback{}))
	return db
}

func newChatRouter(t *testing.T, answer string) *gin.Engine {
	t.Helper()
	db := newHandlerTestDB(t)
	svc := app.NewChatService(
		repository.NewChatLogRepository(db),
		repository.NewFeedbackRepository(db),
		stubRetriever{},
		&stubChatModel{answer: answer},
		nil,
		nil,
		ai.ChatConfig{Model: "gpt-4o-mini"},
		[]string{"gpt-4o", "gpt-4o-mini"},
		3,
	)
	h := NewChatHandler(svc)

	r := gin.New()
	r.POST("/api/v1/chat", h.Chat)
	r.GET("/api/v1/chat/history", h.History)
	r.POST("/api/v1/feedback", h.Feedback)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	r := newChatRouter(t, "Revenue grew twelve percent.")

	w := doJSON(r, http.MethodPost, "/api/v1/chat", gin.H{"question": "How did revenue do?"})
	require.Equal(t, http.StatusOK, w.Code)

	var payload response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, response.CodeOK, payload.Code)

	data, ok := payload.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Revenue grew twelve percent.", data["answer"])
	assert.NotEmpty(t, data["session_id"])
	assert.Equal(t, "gpt-4o-mini", data["model"])
}

func TestChatEndpointRejectsMissingQuestion(t *testing.T) {
	r := newChatRouter(t, "unused")

	w := doJSON(r, http.MethodPost, "/api/v1/chat", gin.H{"session_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpointRejectsUnknownModel(t *testing.T) {
	r := newChatRouter(t, "unused")

	w := doJSON(r, http.MethodPost, "/api/v1/chat", gin.H{"question": "hi", "model": "gpt-imaginary"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpointRequiresSessionID(t *testing.T) {
	r := newChatRouter(t, "unused")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackEndpoint(t *testing.T) {
	r := newChatRouter(t, "unused")

	w := doJSON(r, http.MethodPost, "/api/v1/feedback", gin.H{
		"session_id": "s1",
		"question":   "q",
		"answer":     "a",
		"feedback":   "like",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/feedback", gin.H{"session_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpointRejectsUnsupportedExtension(t *testing.T) {
	// The extension gate runs before the service, so a nil service is safe.
	h := NewDocumentHandler(nil, 0)
	r := gin.New()
	r.POST("/api/v1/documents", h.Upload)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported file type")
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	h := NewDocumentHandler(nil, 0)
	r := gin.New()
	r.POST("/api/v1/documents", h.Upload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpointRejectsIncompletePayload(t *testing.T) {
	h := NewUserHandler(nil)
	r := gin.New()
	r.POST("/api/v1/login", h.Login)

	w := doJSON(r, http.MethodPost, "/api/v1/login", gin.H{"name": "jane", "email": "jane@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
