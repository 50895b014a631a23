package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/mikeboe/web-researcher/pkg/config"
)

const (
	appName   = "web-researcher"
	userID    = "user" // single user
	agentName = "web_researcher"
)

// ErrConversationNotFound is returned for unknown conversation ids.
var ErrConversationNotFound = errors.New("conversation not found")

var ErrEmptyMessage = errors.New("message content is empty")

// Service runs research chats. Conversations live in memory for the lifetime of the process.
type Service struct {
	Client     *genai.Client
	Agent      agent.Agent
	Sessions   session.Service
	TitleModel string

	mu            sync.RWMutex
	conversations map[uuid.UUID]*conversation
}

type conversation struct {
	Conversation
	messages []Message
}

type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// StreamEvent represents a single event in the chat stream
type StreamEvent struct {
	Type    string      `json:"type"` // "content", "tool_call", "tool_result", "error", "done"
	Payload interface{} `json:"payload"`
}

func NewService(ctx context.Context, cfg *config.Config, tools *ResearchToolset) (*Service, error) {
	if cfg.GoogleApiKey == "" {
		return nil, errors.New("chat needs GOOGLE_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GoogleApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	modelClient, err := gemini.NewModel(ctx, cfg.ReasoningModel, &genai.ClientConfig{
		APIKey:  cfg.GoogleApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	researchAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       modelClient,
		Description: "A research assistant that investigates objectives on the web.",
		Instruction: "You are a helpful research assistant. When the user states a research objective or asks about something that needs current information, call the run_research tool with a clear research_query. Answer from the returned report: name the most important sources with their URLs, summarize what they say and list the suggested next actions. Do not invent sources that are not in the report.",
		Toolsets: []tool.Toolset{
			tools,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &Service{
		Client:        client,
		Agent:         researchAgent,
		Sessions:      session.InMemoryService(),
		TitleModel:    cfg.FastModel,
		conversations: make(map[uuid.UUID]*conversation),
	}, nil
}

func (s *Service) CreateConversation(ctx context.Context) (*Conversation, error) {
	id := uuid.New()
	if _, err := s.Sessions.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: id.String(),
	}); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	now := time.Now().UTC()
	conv := &conversation{Conversation: Conversation{ID: id, Title: "New conversation", CreatedAt: now, UpdatedAt: now}}

	s.mu.Lock()
	s.conversations[id] = conv
	s.mu.Unlock()

	c := conv.Conversation
	return &c, nil
}

// ListConversations returns the conversations, most recently updated first.
func (s *Service) ListConversations(ctx context.Context) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convs := make([]Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		convs = append(convs, c.Conversation)
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

func (s *Service) GetHistory(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return append([]Message(nil), conv.messages...), nil
}

// addMessage appends a message and reports how many messages the conversation now holds.
func (s *Service) addMessage(conversationID uuid.UUID, role, content string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return 0, ErrConversationNotFound
	}
	now := time.Now().UTC()
	conv.messages = append(conv.messages, Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	})
	conv.UpdatedAt = now
	return len(conv.messages), nil
}

func (s *Service) setTitle(conversationID uuid.UUID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[conversationID]; ok {
		conv.Title = title
	}
}

func (s *Service) SendMessage(ctx context.Context, conversationID uuid.UUID, content string) (iter.Seq2[StreamEvent, error], error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	count, err := s.addMessage(conversationID, "user", content)
	if err != nil {
		return nil, err
	}

	// The session already holds the earlier turns; the runner appends new events to it.
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          s.Agent,
		SessionService: s.Sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	userContent := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: content},
		},
	}

	return func(yield func(StreamEvent, error) bool) {
		slog.Info("Starting agent run", "conversation_id", conversationID)
		runCfg := agent.RunConfig{
			StreamingMode: agent.StreamingModeSSE,
		}

		var finalResponse strings.Builder
		for event, err := range r.Run(ctx, userID, conversationID.String(), userContent, runCfg) {
			if err != nil {
				slog.Error("Agent runner error", "error", err)
				yield(StreamEvent{Type: "error", Payload: err.Error()}, err)
				return
			}
			if event.LLMResponse.Content == nil {
				continue
			}

			for _, part := range event.LLMResponse.Content.Parts {
				if part.Text != "" {
					finalResponse.WriteString(part.Text)
					if !yield(StreamEvent{Type: "content", Payload: part.Text}, nil) {
						return
					}
				}
				if part.FunctionCall != nil {
					slog.Info("Agent tool call", "tool", part.FunctionCall.Name)
					if !yield(StreamEvent{Type: "tool_call", Payload: part.FunctionCall}, nil) {
						return
					}
				}
				if part.FunctionResponse != nil {
					slog.Info("Agent tool result", "tool", part.FunctionResponse.Name)
					if !yield(StreamEvent{Type: "tool_result", Payload: part.FunctionResponse}, nil) {
						return
					}
				}
			}
		}

		slog.Info("Agent run completed", "conversation_id", conversationID)
		if _, err := s.addMessage(conversationID, "model", finalResponse.String()); err != nil {
			slog.Error("Failed to store model message", "error", err)
		}

		if count == 1 {
			title, err := s.generateTitle(ctx, content, finalResponse.String())
			if err != nil {
				slog.Warn("Failed to generate conversation title", "error", err)
			} else if title != "" {
				s.setTitle(conversationID, title)
			}
		}

		yield(StreamEvent{Type: "done", Payload: "done"}, nil)
	}, nil
}

func (s *Service) generateTitle(ctx context.Context, userMsg, modelMsg string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	prompt := fmt.Sprintf("Generate a short, concise title (max 5 words) for this research conversation:\nUser: %s\nModel: %s", userMsg, modelMsg)

	returnSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type: genai.TypeString,
			},
		},
		Required: []string{"title"},
	}

	resp, err := s.Client.Models.GenerateContent(ctx, s.TitleModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   returnSchema,
	})
	if err != nil {
		return "", err
	}

	var respData struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &respData); err != nil {
		return "", fmt.Errorf("failed to unmarshal title response: %w", err)
	}
	return strings.TrimSpace(respData.Title), nil
}
