package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"realty-analyzer/llm"
	"realty-analyzer/metrics"
	"realty-analyzer/utils"
)

// Summarizer writes the text summary of a query result. Analyze summaries
// may come from a Generator; the templated sentence is used whenever the
// generator is absent or fails.
type Summarizer struct {
	gen       llm.Generator
	maxTokens int
	timeout   time.Duration
	logger    *utils.Logger
}

// NewSummarizer creates a Summarizer. gen may be nil.
func NewSummarizer(gen llm.Generator, maxTokens int, timeout time.Duration, logger *utils.Logger) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = 100
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Summarizer{gen: gen, maxTokens: maxTokens, timeout: timeout, logger: logger}
}

// Compare returns the fixed comparison sentence.
func (s *Summarizer) Compare(area1, area2 string) string {
	return fmt.Sprintf("Demand comparison between %s and %s based on flat units sold.",
		utils.TitleCase(area1), utils.TitleCase(area2))
}

// AnalyzePrompt is the prompt sent to the generator for an area.
func AnalyzePrompt(area string, avgPrice, totalUnits int64) string {
	return fmt.Sprintf("Give a short summary of real estate data for %s. "+
		"Average flat price is ₹%d and total units sold is %d.",
		utils.TitleCase(area), avgPrice, totalUnits)
}

// AnalyzeFallback is the templated Analyze summary.
func AnalyzeFallback(area string, avgPrice, totalUnits int64) string {
	return fmt.Sprintf("%s has an average flat price of ₹%d and total %d units sold.",
		utils.TitleCase(area), avgPrice, totalUnits)
}

// Analyze returns a generated summary, or the templated one. It never
// fails and never waits longer than the configured timeout.
func (s *Summarizer) Analyze(ctx context.Context, area string, avgPrice, totalUnits int64) string {
	fallback := AnalyzeFallback(area, avgPrice, totalUnits)
	if s.gen == nil {
		metrics.SummaryFallbackTotal.WithLabelValues("disabled").Inc()
		return fallback
	}

	text, err := s.generate(ctx, AnalyzePrompt(area, avgPrice, totalUnits))
	if err != nil {
		s.logger.Warn("[summary] generation failed for %q, using template: %v", area, err)
		metrics.SummaryFallbackTotal.WithLabelValues("error").Inc()
		return fmt.Sprintf("%s (LLM error: %v)", fallback, err)
	}
	return text
}

type genResult struct {
	text string
	err  error
}

// generate runs the generator in its own goroutine so a generator that
// ignores ctx still cannot hold the request past the deadline.
func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan genResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- genResult{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := s.gen.Generate(ctx, prompt, s.maxTokens)
		done <- genResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return "", fmt.Errorf("empty completion")
		}
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
