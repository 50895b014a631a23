package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/mikeboe/web-researcher/pkg/research"
)

// ResearchFunc runs the research pipeline for one request.
type ResearchFunc func(ctx context.Context, req research.ResearchRequest) (*research.ResearchResult, error)

// ResearchToolset exposes the research pipeline to agents and MCP clients.
type ResearchToolset struct {
	Run ResearchFunc
}

func NewResearchToolset(run ResearchFunc) *ResearchToolset {
	return &ResearchToolset{Run: run}
}

func (t *ResearchToolset) Name() string {
	return "research_tools"
}

func (t *ResearchToolset) Tools(ctx agent.ReadonlyContext) ([]tool.Tool, error) {
	researchTool, err := functiontool.New[RunResearchArgs, RunResearchResp](
		functiontool.Config{
			Name:        "run_research",
			Description: "Search the web for a research objective, rank the results and analyze the most relevant pages. Returns a markdown report with summaries and next actions.",
		},
		t.runResearchTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create research tool: %w", err)
	}
	return []tool.Tool{researchTool}, nil
}

type RunResearchArgs struct {
	ResearchQuery string `json:"research_query" description:"The research objective to investigate"`
	InitialQuery  string `json:"initial_query,omitempty" description:"Optional first web search query (defaults to the objective)"`
}

type RunResearchResp struct {
	Report string `json:"report"`
}

// Wrapper for ADK tool interface
func (t *ResearchToolset) runResearchTool(ctx tool.Context, args RunResearchArgs) (RunResearchResp, error) {
	return t.RunResearch(ctx, args)
}

// RunResearch runs the pipeline and renders the result as a markdown report.
func (t *ResearchToolset) RunResearch(ctx context.Context, args RunResearchArgs) (RunResearchResp, error) {
	if strings.TrimSpace(args.ResearchQuery) == "" {
		return RunResearchResp{}, errors.New("research_query is required")
	}
	slog.Info("Run research tool", "research_query", args.ResearchQuery, "initial_query", args.InitialQuery)

	res, err := t.Run(ctx, research.ResearchRequest{ResearchQuery: args.ResearchQuery, InitialQuery: args.InitialQuery})
	if err != nil {
		return RunResearchResp{}, fmt.Errorf("research failed: %w", err)
	}

	var sb strings.Builder
	if err := research.WriteReport(&sb, args.ResearchQuery, res); err != nil {
		return RunResearchResp{}, err
	}
	return RunResearchResp{Report: sb.String()}, nil
}
