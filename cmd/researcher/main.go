package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/web-researcher/pkg/config"
	"github.com/mikeboe/web-researcher/pkg/research"
)

const suggestionCount = 5

var (
	objective    string
	initialQuery string
	topK         int
	queryCount   int
	provider     string
	backend      string
	jsonOutput   bool
	verbose      bool
)

func main() {
	// A missing .env file is fine as long as the variables are set.
	_ = godotenv.Load()
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "researcher",
		Short: "A terminal-based web research assistant",
		Long:  `researcher generates search queries for an objective, ranks the results, analyzes the most relevant pages and suggests next actions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			applyFlags(cmd, cfg)

			engine, err := cfg.NewEngine(ctx, slog.Default())
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("objective") {
				// Interactive Mode
				if err := chooseObjective(ctx, engine.LLM, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
					return err
				}
			}

			result, err := engine.Research(ctx, research.ResearchRequest{ResearchQuery: objective, InitialQuery: initialQuery})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return research.WriteReport(os.Stdout, objective, result)
		},
	}

	rootCmd.Flags().StringVarP(&objective, "objective", "o", "", "The research objective")
	rootCmd.Flags().StringVarP(&initialQuery, "query", "q", "", "The first search query (defaults to the objective)")
	rootCmd.Flags().IntVarP(&topK, "top-k", "k", cfg.TopK, "Number of ranked results to analyze")
	rootCmd.Flags().IntVarP(&queryCount, "queries", "n", cfg.QueryCount, "Maximum number of search queries, the initial one included")
	rootCmd.Flags().StringVarP(&provider, "provider", "p", cfg.SearchProvider, "Search provider: google, tavily, duckduckgo or arxiv")
	rootCmd.Flags().StringVar(&backend, "backend", cfg.LLMBackend, "LLM backend: chain or genai")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = topK
	}
	if cmd.Flags().Changed("queries") {
		cfg.QueryCount = queryCount
	}
	if cmd.Flags().Changed("provider") {
		cfg.SearchProvider = provider
	}
	if cmd.Flags().Changed("backend") {
		cfg.LLMBackend = backend
	}
}

// chooseObjective asks for an initial query, offers objectives derived from it and
// sets objective and initialQuery from the user's choice.
func chooseObjective(ctx context.Context, llm research.LLMGateway, in *bufio.Reader, out io.Writer) error {
	fmt.Fprint(out, "Enter your initial search query: ")
	input, _ := in.ReadString('\n')
	initialQuery = strings.TrimSpace(input)
	if initialQuery == "" {
		return fmt.Errorf("initial query cannot be empty")
	}

	suggestions, err := research.SuggestObjectives(ctx, llm, initialQuery, suggestionCount)
	if err != nil {
		slog.Warn("Could not suggest objectives", "error", err)
	}

	if len(suggestions) > 0 {
		fmt.Fprintln(out, "\nSuggested research objectives:")
		for i, s := range suggestions {
			fmt.Fprintf(out, "%d. %s\n", i+1, s)
		}
		fmt.Fprint(out, "\nPick a number, or type your own objective: ")
	} else {
		fmt.Fprint(out, "Enter your research objective: ")
	}

	input, _ = in.ReadString('\n')
	objective = pickObjective(strings.TrimSpace(input), suggestions, initialQuery)
	fmt.Fprintf(out, "\nResearching: %s\n\n", objective)
	return nil
}

// pickObjective resolves the user's answer: a suggestion number, free text, or nothing
// (which falls back to the first suggestion and then to the initial query).
func pickObjective(answer string, suggestions []string, initial string) string {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(suggestions) {
		return suggestions[n-1]
	}
	if answer != "" {
		return answer
	}
	if len(suggestions) > 0 {
		return suggestions[0]
	}
	return initial
}
