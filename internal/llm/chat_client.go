package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one turn of chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage carries the token counts reported by the completion API; the usage
// meter turns these into dollars.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ChatClient defines the interface for the chat-completion collaborator.
type ChatClient interface {
	ChatCompletion(ctx context.Context, system string, messages []Message) (string, Usage, error)
	Model() string
}

type chatClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewChatClient(baseURL, apiKey, model string) ChatClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &chatClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second, // Set a timeout to avoid hanging requests
		},
	}
}

func (c *chatClient) Model() string {
	return c.model
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ChatCompletion sends the system prompt plus the conversation so far and
// returns the assistant's reply with its token usage.
func (c *chatClient) ChatCompletion(ctx context.Context, system string, messages []Message) (string, Usage, error) {
	payload := completionRequest{Model: c.model}
	if system != "" {
		payload.Messages = append(payload.Messages, Message{Role: "system", Content: system})
	}
	payload.Messages = append(payload.Messages, messages...)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", Usage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", Usage{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, err
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", Usage{}, fmt.Errorf("invalid completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", Usage{}, fmt.Errorf("completion API returned %d: %s", resp.StatusCode, msg)
	}
	if len(result.Choices) == 0 {
		return "", Usage{}, errors.New("completion response has no choices")
	}

	return result.Choices[0].Message.Content, result.Usage, nil
}
