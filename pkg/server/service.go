package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mikeboe/web-researcher/pkg/research"
)

// EngineFactory builds a research engine that logs to logger.
type EngineFactory func(ctx context.Context, logger *slog.Logger) (*research.Engine, error)

type Service struct {
	NewEngine EngineFactory
	Logger    *slog.Logger
}

func NewService(newEngine EngineFactory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{NewEngine: newEngine, Logger: logger}
}

type ResearchRequest struct {
	ResearchQuery string `json:"research_query"`
	InitialQuery  string `json:"initial_query"`
	TopK          int    `json:"top_k"`
}

// ResearchResponse carries the result of a run with the stages it went through
// and the log records it produced.
type ResearchResponse struct {
	RunID  string                   `json:"run_id"`
	Stages []research.RunState      `json:"stages"`
	Result *research.ResearchResult `json:"result"`
	Logs   []LogEntry               `json:"logs"`
}

// Run executes one research request with a fresh engine whose logs are captured.
// Errors are *research.InvalidRequestError or an engine construction failure.
func (s *Service) Run(ctx context.Context, req ResearchRequest) (*ResearchResponse, error) {
	capture := NewCaptureHandler(s.Logger.Handler())
	engine, err := s.NewEngine(ctx, slog.New(capture))
	if err != nil {
		return nil, fmt.Errorf("failed to init engine: %w", err)
	}
	if req.TopK > 0 {
		engine.Config.TopK = req.TopK
	}

	resp := &ResearchResponse{Stages: []research.RunState{}}
	engine.OnStageChange = func(state research.RunState) {
		resp.RunID = state.RunID
		resp.Stages = append(resp.Stages, state)
	}

	result, err := engine.Research(ctx, research.ResearchRequest{
		ResearchQuery: req.ResearchQuery,
		InitialQuery:  req.InitialQuery,
	})
	if err != nil {
		return nil, err
	}

	resp.Result = result
	resp.Logs = capture.Entries()
	return resp, nil
}

// Research matches chat.ResearchFunc so the agent and MCP tools share the server's engine setup.
func (s *Service) Research(ctx context.Context, req research.ResearchRequest) (*research.ResearchResult, error) {
	resp, err := s.Run(ctx, ResearchRequest{ResearchQuery: req.ResearchQuery, InitialQuery: req.InitialQuery})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}
