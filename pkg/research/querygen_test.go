package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeQueries(t *testing.T) {
	tests := []struct {
		name      string
		initial   string
		generated []string
		limit     int
		want      SearchQuerySet
	}{
		{
			name:      "Initial first",
			initial:   "seed",
			generated: []string{"a", "b"},
			limit:     4,
			want:      SearchQuerySet{"seed", "a", "b"},
		},
		{
			name:      "Drops copies of initial and repeats",
			initial:   "Quantum Computing",
			generated: []string{"quantum  computing", "error correction", "Error Correction", "  "},
			limit:     4,
			want:      SearchQuerySet{"Quantum Computing", "error correction"},
		},
		{
			name:      "Strips quotes",
			initial:   "seed",
			generated: []string{`"qubit fidelity"`},
			limit:     4,
			want:      SearchQuerySet{"seed", "qubit fidelity"},
		},
		{
			name:      "Capped at limit",
			initial:   "seed",
			generated: []string{"a", "b", "c", "d"},
			limit:     3,
			want:      SearchQuerySet{"seed", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeQueries(tt.initial, tt.generated, tt.limit))
		})
	}
}

func TestQueryGeneratorLanguageInPrompt(t *testing.T) {
	var prompt string
	llm := &recordingLLM{answer: `{"queries": ["Quantencomputer Durchbruch"]}`, prompt: &prompt}
	g := &QueryGenerator{LLM: llm, Count: 3, Language: "German", Logger: discardLogger()}

	got := g.Generate(context.Background(), "quantum breakthroughs", "quantum 2025")
	assert.Equal(t, SearchQuerySet{"quantum 2025", "Quantencomputer Durchbruch"}, got)
	assert.Contains(t, prompt, "Write every query in German.")
	assert.Contains(t, prompt, "Generate 2 additional web search queries")
}

func TestQueryGeneratorSingleQuerySkipsLLM(t *testing.T) {
	llm := &fakeLLM{}
	g := &QueryGenerator{LLM: llm, Count: 1, Logger: discardLogger()}

	assert.Equal(t, SearchQuerySet{"seed"}, g.Generate(context.Background(), "objective", "seed"))
	assert.Zero(t, llm.callCount(ModeGenerateQueries))
}

func TestQueryGeneratorMalformedAnswer(t *testing.T) {
	llm := &recordingLLM{answer: "Sure! Here are some ideas: quantum, qubits"}
	g := &QueryGenerator{LLM: llm, Count: 4, Logger: discardLogger()}

	assert.Equal(t, SearchQuerySet{"seed"}, g.Generate(context.Background(), "objective", "seed"))
}

// recordingLLM returns a fixed answer and remembers the last prompt.
type recordingLLM struct {
	answer string
	prompt *string
}

func (r *recordingLLM) Complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	if r.prompt != nil {
		*r.prompt = prompt
	}
	return r.answer, nil
}
