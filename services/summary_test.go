package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"realty-analyzer/llm"
	"realty-analyzer/utils"
)

func stubGenerator(text string, err error) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, string, int) (string, error) {
		return text, err
	})
}

func TestSummarizerCompare(t *testing.T) {
	s := NewSummarizer(nil, 100, time.Second, utils.NewDiscardLogger())
	got := s.Compare("aundh", "ambegaon budruk")
	want := "Demand comparison between Aundh and Ambegaon Budruk based on flat units sold."
	if got != want {
		t.Errorf("Compare: got %q, want %q", got, want)
	}
}

func TestSummarizerAnalyzeWithoutGenerator(t *testing.T) {
	s := NewSummarizer(nil, 100, time.Second, utils.NewDiscardLogger())
	got := s.Analyze(context.Background(), "pune", 5500, 30)
	want := "Pune has an average flat price of ₹5500 and total 30 units sold."
	if got != want {
		t.Errorf("Analyze: got %q, want %q", got, want)
	}
}

func TestSummarizerAnalyzeUsesGenerator(t *testing.T) {
	var gotPrompt string
	var gotMax int
	gen := llm.GeneratorFunc(func(_ context.Context, prompt string, maxTokens int) (string, error) {
		gotPrompt, gotMax = prompt, maxTokens
		return "  Pune is a steady market.\n", nil
	})
	s := NewSummarizer(gen, 100, time.Second, utils.NewDiscardLogger())

	got := s.Analyze(context.Background(), "pune", 5500, 30)
	if got != "Pune is a steady market." {
		t.Errorf("Analyze: got %q", got)
	}
	wantPrompt := "Give a short summary of real estate data for Pune. Average flat price is ₹5500 and total units sold is 30."
	if gotPrompt != wantPrompt {
		t.Errorf("prompt: got %q, want %q", gotPrompt, wantPrompt)
	}
	if gotMax != 100 {
		t.Errorf("maxTokens: got %d, want 100", gotMax)
	}
}

func TestSummarizerAnalyzeFallsBackOnError(t *testing.T) {
	s := NewSummarizer(stubGenerator("", errors.New("rate limited")), 100, time.Second, utils.NewDiscardLogger())
	got := s.Analyze(context.Background(), "pune", 5500, 30)
	want := "Pune has an average flat price of ₹5500 and total 30 units sold. (LLM error: rate limited)"
	if got != want {
		t.Errorf("Analyze: got %q, want %q", got, want)
	}
}

func TestSummarizerAnalyzeFallsBackOnEmptyText(t *testing.T) {
	s := NewSummarizer(stubGenerator("   ", nil), 100, time.Second, utils.NewDiscardLogger())
	got := s.Analyze(context.Background(), "pune", 1, 2)
	if !strings.HasPrefix(got, "Pune has an average flat price of ₹1 and total 2 units sold. (LLM error:") {
		t.Errorf("Analyze: got %q", got)
	}
}

func TestSummarizerAnalyzeRecoversPanic(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, string, int) (string, error) {
		panic("nil pointer in client")
	})
	s := NewSummarizer(gen, 100, time.Second, utils.NewDiscardLogger())
	got := s.Analyze(context.Background(), "wakad", 7000, 9)
	if !strings.HasPrefix(got, "Wakad has an average flat price of ₹7000 and total 9 units sold. (LLM error:") {
		t.Errorf("Analyze: got %q", got)
	}
}

func TestSummarizerAnalyzeBoundedByTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	gen := llm.GeneratorFunc(func(context.Context, string, int) (string, error) {
		<-block // ignores ctx on purpose
		return "too late", nil
	})
	s := NewSummarizer(gen, 100, 30*time.Millisecond, utils.NewDiscardLogger())

	start := time.Now()
	got := s.Analyze(context.Background(), "pune", 5500, 30)
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Analyze should return once the timeout passes")
	}
	if !strings.Contains(got, "(LLM error: context deadline exceeded)") {
		t.Errorf("Analyze: got %q", got)
	}
}
