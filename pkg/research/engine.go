package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Stage is a state of the research pipeline.
type Stage int

const (
	StageInit Stage = iota
	StageQueriesGenerated
	StageSearched
	StageRanked
	StageTopKSelected
	StageAnalyzed
	StageFinalRanked
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageInit:             "init",
	StageQueriesGenerated: "queries_generated",
	StageSearched:         "searched",
	StageRanked:           "ranked",
	StageTopKSelected:     "top_k_selected",
	StageAnalyzed:         "analyzed",
	StageFinalRanked:      "final_ranked",
	StageDone:             "done",
	StageFailed:           "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// transitions lists the only successor of every non-terminal stage.
// StageFailed is entered from StageInit on an invalid request and is not listed here.
var transitions = map[Stage]Stage{
	StageInit:             StageQueriesGenerated,
	StageQueriesGenerated: StageSearched,
	StageSearched:         StageRanked,
	StageRanked:           StageTopKSelected,
	StageTopKSelected:     StageAnalyzed,
	StageAnalyzed:         StageFinalRanked,
	StageFinalRanked:      StageDone,
}

// Terminal reports whether no further transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// RunState is a snapshot of a run passed to Engine.OnStageChange.
type RunState struct {
	RunID      string `json:"run_id"`
	Stage      Stage  `json:"stage"`
	Queries    int    `json:"queries"`
	Hits       int    `json:"hits"`
	Ranked     int    `json:"ranked"`
	Candidates int    `json:"candidates"`
	Analyzed   int    `json:"analyzed"`
}

// Engine drives one research pipeline per Research call.
// It holds no per-run state, so one Engine may serve sequential and concurrent calls.
type Engine struct {
	Config        Config
	Search        SearchGateway
	Scraper       Scraper
	LLM           LLMGateway
	Logger        *slog.Logger
	OnStageChange func(state RunState)
}

func NewEngine(cfg Config, search SearchGateway, scraper Scraper, llm LLMGateway) *Engine {
	return &Engine{
		Config:  cfg.withDefaults(),
		Search:  search,
		Scraper: scraper,
		LLM:     llm,
		Logger:  slog.Default(),
	}
}

// run carries the request-scoped data of a single pipeline execution.
type run struct {
	id      string
	req     ResearchRequest
	cfg     Config
	logger  *slog.Logger
	stage   Stage
	queries SearchQuerySet
	hits    []SearchHit
	ranked  []RankedResult
	top     []RankedResult
	results []AnalyzedResult
}

// Research runs the pipeline for req. The only error it returns is *InvalidRequestError;
// collaborator failures shrink the result instead.
func (e *Engine) Research(ctx context.Context, req ResearchRequest) (*ResearchResult, error) {
	logger := orDefault(e.Logger)

	r := &run{
		id:     uuid.NewString(),
		req:    req,
		cfg:    e.Config.withDefaults(),
		stage:  StageInit,
		hits:   []SearchHit{},
		ranked: []RankedResult{},
	}
	r.logger = logger.With("run_id", r.id)

	if err := validateRequest(&r.req); err != nil {
		r.logger.Error("Rejecting research request", "error", err)
		r.stage = StageFailed
		e.notify(r)
		return nil, err
	}

	r.logger.Info("Starting research", "research_query", r.req.ResearchQuery, "initial_query", r.req.InitialQuery)
	e.notify(r)

	for !r.stage.Terminal() {
		e.advance(ctx, r)
		e.notify(r)
	}

	r.logger.Info("Research complete",
		"queries", len(r.queries),
		"ranked", len(r.ranked),
		"analyzed", len(r.results))

	return &ResearchResult{
		QueriesUsed:     r.queries,
		RankedResults:   r.ranked,
		AnalyzedResults: r.results,
	}, nil
}

func validateRequest(req *ResearchRequest) error {
	req.ResearchQuery = strings.TrimSpace(req.ResearchQuery)
	req.InitialQuery = strings.TrimSpace(req.InitialQuery)
	if req.ResearchQuery == "" {
		return &InvalidRequestError{Field: "research_query", Reason: "must not be empty"}
	}
	if req.InitialQuery == "" {
		req.InitialQuery = req.ResearchQuery
	}
	return nil
}

// advance performs the work of the transition leaving r.stage and moves r to the next stage.
func (e *Engine) advance(ctx context.Context, r *run) {
	next, ok := transitions[r.stage]
	if !ok {
		panic(fmt.Sprintf("research: no transition from %s", r.stage))
	}

	switch next {
	case StageQueriesGenerated:
		r.queries = e.queryGenerator(r).Generate(ctx, r.req.ResearchQuery, r.req.InitialQuery)
	case StageSearched:
		r.hits = e.searchAll(ctx, r)
	case StageRanked:
		r.ranked = e.searchRanker(r).Rank(ctx, r.req.ResearchQuery, r.hits)
	case StageTopKSelected:
		r.top = r.ranked[:min(r.cfg.TopK, len(r.ranked))]
	case StageAnalyzed:
		r.results = e.analyzeAll(ctx, r)
	case StageFinalRanked:
		r.results = e.websiteRanker(r).Rank(ctx, r.req.ResearchQuery, r.results)
	case StageDone:
	}

	r.logger.Debug("Stage transition", "from", r.stage, "to", next)
	r.stage = next
}

func (e *Engine) notify(r *run) {
	if e.OnStageChange == nil {
		return
	}
	e.OnStageChange(RunState{
		RunID:      r.id,
		Stage:      r.stage,
		Queries:    len(r.queries),
		Hits:       len(r.hits),
		Ranked:     len(r.ranked),
		Candidates: len(r.top),
		Analyzed:   len(r.results),
	})
}

// searchAll issues every query concurrently and merges the hits in query order,
// keeping the first occurrence of each normalized URL.
func (e *Engine) searchAll(ctx context.Context, r *run) []SearchHit {
	perQuery := make([][]SearchHit, len(r.queries))

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Concurrency)
	for i, query := range r.queries {
		g.Go(func() error {
			callCtx, cancel := callContext(ctx, r.cfg.CallTimeout)
			defer cancel()

			hits, err := e.Search.Search(callCtx, query)
			if err != nil {
				r.logger.Warn("Search failed", "stage", "search", "query", query, "error", err)
				return nil
			}
			if len(hits) > r.cfg.MaxResultsPerQuery {
				hits = hits[:r.cfg.MaxResultsPerQuery]
			}
			r.logger.Info("Search successful", "query", query, "count", len(hits))
			perQuery[i] = hits
			return nil
		})
	}
	_ = g.Wait()

	var all []SearchHit
	for _, hits := range perQuery {
		all = append(all, hits...)
	}
	unique := dedupeHits(all)
	r.logger.Info("Aggregated search results", "total", len(all), "unique", len(unique))
	return unique
}

// analyzeAll analyzes the selected candidates concurrently. Failed candidates are dropped;
// the survivors keep candidate order.
func (e *Engine) analyzeAll(ctx context.Context, r *run) []AnalyzedResult {
	analyzer := e.contentAnalyzer(r)
	slots := make([]*AnalyzedResult, len(r.top))

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Concurrency)
	for i, candidate := range r.top {
		g.Go(func() error {
			r.logger.Info("Analyzing source", "title", candidate.Title, "url", candidate.URL)
			result, err := analyzer.Analyze(ctx, r.req.ResearchQuery, candidate)
			if err != nil {
				r.logger.Warn("Dropping candidate", "stage", "analyze", "url", candidate.URL, "error", err)
				return nil
			}
			slots[i] = &result
			return nil
		})
	}
	_ = g.Wait()

	results := make([]AnalyzedResult, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			results = append(results, *s)
		}
	}
	return results
}

func (e *Engine) queryGenerator(r *run) *QueryGenerator {
	return &QueryGenerator{
		LLM:      e.LLM,
		Count:    r.cfg.QueryCount,
		Language: r.cfg.QueryLanguage,
		Timeout:  r.cfg.CallTimeout,
		Logger:   r.logger,
	}
}

func (e *Engine) searchRanker(r *run) *SearchRanker {
	return &SearchRanker{
		LLM:         e.LLM,
		BatchSize:   r.cfg.RankBatchSize,
		Concurrency: r.cfg.Concurrency,
		Timeout:     r.cfg.CallTimeout,
		Logger:      r.logger,
	}
}

func (e *Engine) contentAnalyzer(r *run) *ContentAnalyzer {
	return &ContentAnalyzer{
		Scraper:         e.Scraper,
		LLM:             e.LLM,
		MaxContentChars: r.cfg.MaxContentChars,
		Timeout:         r.cfg.CallTimeout,
		Logger:          r.logger,
	}
}

func (e *Engine) websiteRanker(r *run) *WebsiteRanker {
	return &WebsiteRanker{
		LLM:         e.LLM,
		Concurrency: r.cfg.Concurrency,
		Timeout:     r.cfg.CallTimeout,
		Logger:      r.logger,
	}
}
