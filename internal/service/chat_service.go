package service

import (
	"context"
	"time"

	"plew-backend/internal/llm"
	logger "plew-backend/pkg/logging"
)

const tutorSystemPrompt = `You are a friendly English tutor helping Korean students prepare for the CSAT (수능) English reading section. Explain vocabulary, grammar, and reading strategies clearly and briefly. When the student shares a question, refer to its passage and answer choices. Answer in Korean unless the student writes in English.`

// fallbackReply keeps the tutor in character when the upstream model is
// unavailable; the student sees a retry prompt instead of a raw error.
const fallbackReply = "죄송해요, 지금은 답변을 생성할 수 없어요. 잠시 후 다시 시도해 주세요!"

// ChatInput is one tutoring turn.
type ChatInput struct {
	Message     string        `json:"message"`
	Question    string        `json:"question"`
	ChatHistory []llm.Message `json:"chatHistory"`
}

// ChatReply is the tutor's answer.
type ChatReply struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatService runs tutor turns against the LLM collaborator, gated by the
// usage meter.
type ChatService interface {
	Chat(ctx context.Context, input ChatInput) (*ChatReply, error)
}

type chatService struct {
	client llm.ChatClient
	usage  UsageService
}

func NewChatService(client llm.ChatClient, usage UsageService) ChatService {
	return &chatService{client: client, usage: usage}
}

func (s *chatService) Chat(ctx context.Context, input ChatInput) (*ChatReply, error) {
	// Budget gate runs before the upstream call; once the ceiling is hit no
	// further spend happens.
	if s.usage.IsLimitExceeded() {
		return nil, ErrBudgetExceeded
	}

	messages := make([]llm.Message, 0, len(input.ChatHistory)+2)
	if input.Question != "" {
		messages = append(messages, llm.Message{
			Role:    "user",
			Content: "Here is the question I'm working on:\n" + input.Question,
		})
	}
	messages = append(messages, input.ChatHistory...)
	messages = append(messages, llm.Message{Role: "user", Content: input.Message})

	response, usage, err := s.client.ChatCompletion(ctx, tutorSystemPrompt, messages)
	if err != nil {
		// Upstream failure degrades to an in-character message; nothing is
		// metered because nothing was generated.
		logger.Error("chat completion failed: %v", err)
		return &ChatReply{Response: fallbackReply, Timestamp: time.Now()}, nil
	}

	// The reply is already in hand; a metering failure must not take it away.
	if err := s.usage.Record(s.client.Model(), usage.PromptTokens, usage.CompletionTokens, "chat"); err != nil {
		logger.Error("usage record failed: %v", err)
	}

	return &ChatReply{Response: response, Timestamp: time.Now()}, nil
}
