package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/session"

	"github.com/mikeboe/web-researcher/pkg/config"
	"github.com/mikeboe/web-researcher/pkg/research"
)

func newTestService() *Service {
	return &Service{
		Sessions:      session.InMemoryService(),
		conversations: make(map[uuid.UUID]*conversation),
	}
}

func TestRunResearch(t *testing.T) {
	var got research.ResearchRequest
	tools := NewResearchToolset(func(ctx context.Context, req research.ResearchRequest) (*research.ResearchResult, error) {
		got = req
		return &research.ResearchResult{
			QueriesUsed: research.SearchQuerySet{"qubits"},
			AnalyzedResults: []research.AnalyzedResult{
				{Title: "Qubits", URL: "https://a.example", Summary: "Error rates fell.", Importance: 8, ImportanceScored: true, NextActions: []string{"Read it"}},
			},
		}, nil
	})

	resp, err := tools.RunResearch(context.Background(), RunResearchArgs{ResearchQuery: "quantum", InitialQuery: "qubits"})
	require.NoError(t, err)
	assert.Equal(t, research.ResearchRequest{ResearchQuery: "quantum", InitialQuery: "qubits"}, got)
	assert.Contains(t, resp.Report, "# Research: quantum")
	assert.Contains(t, resp.Report, "https://a.example")
	assert.Contains(t, resp.Report, "- Read it")
}

func TestRunResearchErrors(t *testing.T) {
	called := false
	tools := NewResearchToolset(func(ctx context.Context, req research.ResearchRequest) (*research.ResearchResult, error) {
		called = true
		return nil, &research.InvalidRequestError{Field: "research_query", Reason: "must not be empty"}
	})

	_, err := tools.RunResearch(context.Background(), RunResearchArgs{ResearchQuery: "  "})
	assert.Error(t, err)
	assert.False(t, called)

	_, err = tools.RunResearch(context.Background(), RunResearchArgs{ResearchQuery: "x"})
	assert.ErrorIs(t, err, research.ErrInvalidRequest)
}

func TestConversations(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	first, err := s.CreateConversation(ctx)
	require.NoError(t, err)
	second, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	_, err = s.addMessage(first.ID, "user", "hello")
	require.NoError(t, err)

	convs, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, first.ID, convs[0].ID, "most recently updated first")
	assert.Equal(t, second.ID, convs[1].ID)

	history, err := s.GetHistory(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hello", history[0].Content)

	s.setTitle(first.ID, "Greetings")
	convs, _ = s.ListConversations(ctx)
	assert.Equal(t, "Greetings", convs[0].Title)

	_, err = s.GetHistory(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrConversationNotFound))
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	conv, err := s.CreateConversation(ctx)
	require.NoError(t, err)

	_, err = s.SendMessage(ctx, conv.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = s.SendMessage(ctx, uuid.New(), "hi")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestNewServiceNeedsKey(t *testing.T) {
	_, err := NewService(context.Background(), &config.Config{}, NewResearchToolset(nil))
	assert.Error(t, err)
}
