package app

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/pankajkkc01/RAG-application/internal/ai"
	"github.com/pankajkkc01/RAG-application/internal/model"
	"github.com/pankajkkc01/RAG-application/internal/repository"
	"github.com/pankajkkc01/RAG-application/internal/vectorindex"
)

const defaultTopK = 3

// ChatModel is the completion surface the chain consumes.
type ChatModel interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
	StreamComplete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}

// Retriever is the slice of the vector index the chain consumes.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]vectorindex.Chunk, error)
}

// HistoryCache caches a session's reconstructed history between turns.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]ai.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []ai.ChatMessage) error
	Invalidate(ctx context.Context, sessionID string) error
}

// AuditPublisher hands write-only audit records to the async persist worker.
type AuditPublisher interface {
	PublishFeedback(ctx context.Context, fb model.Feedback) error
	PublishUserLogin(ctx context.Context, login model.UserLogin) error
}

// ChatService runs the conversational retrieval chain: contextualize the
// question against history, retrieve top-k chunks, compose the answer under
// the persona prompt, and append the turn to the chat log.
type ChatService struct {
	logRepo      *repository.ChatLogRepository
	feedbackRepo *repository.FeedbackRepository
	retriever    Retriever
	llm          ChatModel
	history      HistoryCache   // optional
	audit        AuditPublisher // optional; nil falls back to direct insert
	chatCfg      ai.ChatConfig
	allowed      []string
	topK         int
}

func NewChatService(
	logRepo *repository.ChatLogRepository,
	feedbackRepo *repository.FeedbackRepository,
	retriever Retriever,
	llm ChatModel,
	history HistoryCache,
	audit AuditPublisher,
	chatCfg ai.ChatConfig,
	allowedModels []string,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &ChatService{
		logRepo:      logRepo,
		feedbackRepo: feedbackRepo,
		retriever:    retriever,
		llm:          llm,
		history:      history,
		audit:        audit,
		chatCfg:      chatCfg,
		allowed:      allowedModels,
		topK:         topK,
	}
}

type ChatInput struct {
	SessionID string
	Question  string
	Model     string
}

type ChatResult struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

// Chat runs one turn and appends it to the session's log.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}
	cfg, err := s.resolveModel(input.Model)
	if err != nil {
		return nil, err
	}
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log.Printf("session %s Q: %s", sessionID, question)

	history, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.composeAnswerMessages(ctx, cfg, question, history)
	if err != nil {
		return nil, err
	}
	answer, err := s.llm.Complete(ctx, cfg, messages)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)

	if err := s.appendLog(ctx, sessionID, question, answer, cfg.Model); err != nil {
		return nil, err
	}
	return &ChatResult{Answer: answer, SessionID: sessionID, Model: cfg.Model}, nil
}

// StreamChat runs one turn, forwarding answer deltas to onChunk, then appends
// the completed turn to the session's log.
func (s *ChatService) StreamChat(ctx context.Context, input ChatInput, onChunk func(string) error) (*ChatResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}
	cfg, err := s.resolveModel(input.Model)
	if err != nil {
		return nil, err
	}
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.composeAnswerMessages(ctx, cfg, question, history)
	if err != nil {
		return nil, err
	}
	answer, err := s.llm.StreamComplete(ctx, cfg, messages, onChunk)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)

	if err := s.appendLog(ctx, sessionID, question, answer, cfg.Model); err != nil {
		return nil, err
	}
	return &ChatResult{Answer: answer, SessionID: sessionID, Model: cfg.Model}, nil
}

// History reconstructs the session's turns as alternating user/assistant
// messages in creation order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]ai.ChatMessage, error) {
	if s.history != nil {
		if cached, hit, err := s.history.GetHistory(ctx, sessionID); err == nil && hit {
			return cached, nil
		}
	}

	logs, err := s.logRepo.ListBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	messages := make([]ai.ChatMessage, 0, len(logs)*2)
	for _, l := range logs {
		messages = append(messages,
			ai.ChatMessage{Role: "user", Content: l.Question},
			ai.ChatMessage{Role: "assistant", Content: l.Answer},
		)
	}

	if s.history != nil {
		if err := s.history.SetHistory(ctx, sessionID, messages); err != nil {
			log.Printf("cache history for session %s failed: %v", sessionID, err)
		}
	}
	return messages, nil
}

// LogFeedback records user feedback on a Q/A pair.
func (s *ChatService) LogFeedback(ctx context.Context, fb model.Feedback) error {
	if strings.TrimSpace(fb.SessionID) == "" || strings.TrimSpace(fb.Feedback) == "" {
		return ErrInvalidInput
	}
	if s.audit != nil {
		return s.audit.PublishFeedback(ctx, fb)
	}
	return s.feedbackRepo.Create(&fb)
}

// composeAnswerMessages runs the contextualize and retrieve steps and builds
// the final answer prompt. Model-call failures propagate to the caller.
func (s *ChatService) composeAnswerMessages(
	ctx context.Context,
	cfg ai.ChatConfig,
	question string,
	history []ai.ChatMessage,
) ([]ai.ChatMessage, error) {
	standalone := question
	if len(history) > 0 {
		msgs := make([]ai.ChatMessage, 0, len(history)+2)
		msgs = append(msgs, ai.ChatMessage{Role: "system", Content: contextualizeSystemPrompt})
		msgs = append(msgs, history...)
		msgs = append(msgs, ai.ChatMessage{Role: "user", Content: question})

		rewritten, err := s.llm.Complete(ctx, cfg, msgs)
		if err != nil {
			return nil, err
		}
		if r := strings.TrimSpace(rewritten); r != "" {
			standalone = r
		}
	}

	chunks, err := s.retriever.Retrieve(ctx, standalone, s.topK)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	messages := make([]ai.ChatMessage, 0, len(history)+3)
	messages = append(messages,
		ai.ChatMessage{Role: "system", Content: personaSystemPrompt},
		ai.ChatMessage{Role: "system", Content: "Context: " + strings.Join(texts, "\n\n")},
	)
	messages = append(messages, history...)
	messages = append(messages, ai.ChatMessage{Role: "user", Content: question})
	return messages, nil
}

func (s *ChatService) appendLog(ctx context.Context, sessionID, question, answer, modelName string) error {
	entry := &model.ChatLog{
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
		Model:     modelName,
	}
	if err := s.logRepo.Create(entry); err != nil {
		return err
	}
	if s.history != nil {
		if err := s.history.Invalidate(ctx, sessionID); err != nil {
			log.Printf("invalidate history for session %s failed: %v", sessionID, err)
		}
	}
	return nil
}

// resolveModel maps an optional requested model name onto the chat config,
// rejecting names outside the allowed set.
func (s *ChatService) resolveModel(name string) (ai.ChatConfig, error) {
	cfg := s.chatCfg
	name = strings.TrimSpace(name)
	if name == "" {
		return cfg, nil
	}
	for _, allowed := range s.allowed {
		if name == allowed {
			cfg.Model = name
			return cfg, nil
		}
	}
	return ai.ChatConfig{}, ErrUnknownModel
}
