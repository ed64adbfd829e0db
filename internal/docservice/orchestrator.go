// Copyright 2025 Legal Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package docservice orchestrates contextual document analysis: segmentation,
// structure and summary extraction, problem detection and suggestion
// generation, with per-stage caching and degradation when the completion
// service is unavailable. Analyze never fails; callers always receive a
// best-effort result.
package docservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/your-org/legal-assistant/internal/analyzer"
	"github.com/your-org/legal-assistant/internal/cache"
	"github.com/your-org/legal-assistant/internal/llm"
	"github.com/your-org/legal-assistant/internal/segmenter"
	"go.uber.org/zap"
)

const (
	// DefaultAnalysisCeiling is the document length above which the text is
	// reduced to a head+tail analysis view.
	DefaultAnalysisCeiling = 12000
	// analysisViewSeparator joins the head and tail chunks of a reduced view.
	analysisViewSeparator = "\n\n...\n\n"
	// suggestionTemperature keeps LLM suggestions focused.
	suggestionTemperature = 0.3
	// suggestionMaxTokens bounds the LLM suggestion response.
	suggestionMaxTokens = 500
)

// Cache task names used to derive stage fingerprints.
const (
	taskSections    = "doc-sections"
	taskSummary     = "doc-summary"
	taskProblems    = "doc-problems"
	taskSuggestions = "doc-suggestions"
)

type stageStatus int

const (
	stageOK stageStatus = iota
	stageDegraded
)

// CompletionService is the slice of the LLM client the orchestrator needs.
type CompletionService interface {
	Complete(ctx context.Context, prompt string, opts llm.Options) (*llm.Completion, error)
}

// HistoryStore records analysis results, best effort.
type HistoryStore interface {
	AppendAnalysisHistory(ctx context.Context, documentID string, payload []byte) error
}

// Config holds orchestrator tuning.
type Config struct {
	MaxChunkSize    int
	AnalysisCeiling int
	CacheTTL        time.Duration
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:    segmenter.DefaultMaxChunkSize,
		AnalysisCeiling: DefaultAnalysisCeiling,
		CacheTTL:        cache.AssistantTTL,
	}
}

// Service coordinates the analysis pipeline.
type Service struct {
	config     Config
	cache      *cache.Cache
	completion CompletionService
	history    HistoryStore
	logger     *zap.Logger
}

// NewService creates an analysis orchestrator. The cache, completion service
// and history store are all optional: a nil cache means every stage runs
// fresh, a nil completion service keeps suggestions heuristic, a nil history
// store skips history recording.
func NewService(config Config, c *cache.Cache, completion CompletionService, history HistoryStore, logger *zap.Logger) *Service {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = segmenter.DefaultMaxChunkSize
	}
	if config.AnalysisCeiling <= 0 {
		config.AnalysisCeiling = DefaultAnalysisCeiling
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = cache.AssistantTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		config:     config,
		cache:      c,
		completion: completion,
		history:    history,
		logger:     logger,
	}
}

// Analyze runs the full pipeline over a document and returns a best-effort
// ContextualAnalysis. Stage failures are local: a failing stage leaves its
// slot empty or degraded, never aborting the pipeline, and Analyze never
// panics or returns an error to the caller.
func (s *Service) Analyze(ctx context.Context, documentText, documentID, documentName string) *analyzer.ContextualAnalysis {
	start := time.Now()
	view := s.analysisView(documentText)

	// Stage 2: structure and summary are independent and run concurrently.
	var (
		wg       sync.WaitGroup
		sections []analyzer.DocumentSection
		summary  *analyzer.DocumentSummary
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer s.recoverStage("sections")
		sections = s.analyzeSections(view, documentID)
	}()
	go func() {
		defer wg.Done()
		defer s.recoverStage("summary")
		summary = s.summarize(view, documentID)
	}()
	wg.Wait()

	// Stage 3 consumes the sections, stage 4 the problems.
	problems := s.detectProblems(view, sections, documentID)
	suggestions, suggestionStatus := s.suggest(ctx, view, problems, documentID, documentName)

	result := &analyzer.ContextualAnalysis{
		Structure: &analyzer.DocumentStructure{
			Sections: sections,
			Problems: problems,
		},
		Summary:                summary,
		ImprovementSuggestions: suggestions,
		Degraded:               suggestionStatus == stageDegraded,
	}

	s.appendHistory(ctx, documentID, documentName, result)

	s.logger.Info("Document analysis completed",
		zap.String("document_id", documentID),
		zap.String("document_name", documentName),
		zap.Int("sections", len(sections)),
		zap.Int("problems", len(problems)),
		zap.Int("suggestions", len(suggestions)),
		zap.Bool("degraded", result.Degraded),
		zap.Duration("elapsed", time.Since(start)))

	return result
}

// analysisView bounds the text fed to the analysis stages. Documents above
// the ceiling are reduced to the first and last chunks of a segmentation,
// preserving head and tail context.
func (s *Service) analysisView(text string) string {
	if len(text) <= s.config.AnalysisCeiling {
		return text
	}

	chunks := segmenter.Segment(text, s.config.MaxChunkSize)
	if len(chunks) <= 1 {
		return text
	}

	s.logger.Debug("Reducing oversized document to head+tail view",
		zap.Int("length", len(text)),
		zap.Int("chunks", len(chunks)))

	return chunks[0] + analysisViewSeparator + chunks[len(chunks)-1]
}

func (s *Service) analyzeSections(view, documentID string) []analyzer.DocumentSection {
	key := cache.Fingerprint(taskSections, documentID, view)
	if v, ok := s.cache.Get(key); ok {
		if sections, ok := v.([]analyzer.DocumentSection); ok {
			return sections
		}
	}

	sections := analyzer.AnalyzeSections(view)
	s.cache.Set(key, sections, s.config.CacheTTL)
	return sections
}

func (s *Service) summarize(view, documentID string) *analyzer.DocumentSummary {
	key := cache.Fingerprint(taskSummary, documentID, view)
	if v, ok := s.cache.Get(key); ok {
		if summary, ok := v.(*analyzer.DocumentSummary); ok {
			return summary
		}
	}

	summary := analyzer.Summarize(view)
	if summary != nil {
		s.cache.Set(key, summary, s.config.CacheTTL)
	}
	return summary
}

func (s *Service) detectProblems(view string, sections []analyzer.DocumentSection, documentID string) []analyzer.DocumentProblem {
	key := cache.Fingerprint(taskProblems, documentID, view)
	if v, ok := s.cache.Get(key); ok {
		if problems, ok := v.([]analyzer.DocumentProblem); ok {
			return problems
		}
	}

	problems := analyzer.DetectProblems(view, sections)
	s.cache.Set(key, problems, s.config.CacheTTL)
	return problems
}

// suggest generates improvement suggestions, preferring the completion
// service when one is configured and falling back to heuristic suggestions
// on any failure.
func (s *Service) suggest(ctx context.Context, view string, problems []analyzer.DocumentProblem, documentID, documentName string) ([]string, stageStatus) {
	key := cache.Fingerprint(taskSuggestions, documentID, view)
	if v, ok := s.cache.Get(key); ok {
		if suggestions, ok := v.([]string); ok {
			return suggestions, stageOK
		}
	}

	if s.completion == nil {
		suggestions := analyzer.SuggestImprovements(problems)
		s.cache.Set(key, suggestions, s.config.CacheTTL)
		return suggestions, stageOK
	}

	completion, err := s.completion.Complete(ctx, buildSuggestionPrompt(documentName, view, problems), llm.Options{
		Temperature: suggestionTemperature,
		MaxTokens:   suggestionMaxTokens,
	})
	if err != nil {
		s.logger.Warn("Suggestion stage degraded to heuristic output",
			zap.String("document_id", documentID),
			zap.Error(err))
		return analyzer.SuggestImprovements(problems), stageDegraded
	}

	suggestions := parseSuggestionLines(completion.Text)
	if len(suggestions) == 0 {
		suggestions = analyzer.SuggestImprovements(problems)
	}
	s.cache.Set(key, suggestions, s.config.CacheTTL)
	return suggestions, stageOK
}

// appendHistory records the analysis result, best effort. Failures are
// logged and never affect the returned analysis.
func (s *Service) appendHistory(ctx context.Context, documentID, documentName string, result *analyzer.ContextualAnalysis) {
	if s.history == nil || documentID == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"document_name": documentName,
		"analysis":      result,
		"analyzed_at":   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("Failed to marshal analysis history payload", zap.Error(err))
		return
	}

	if err := s.history.AppendAnalysisHistory(ctx, documentID, payload); err != nil {
		s.logger.Warn("Failed to append analysis history",
			zap.String("document_id", documentID),
			zap.Error(err))
	}
}

func (s *Service) recoverStage(stage string) {
	if r := recover(); r != nil {
		s.logger.Error("Analysis stage panicked",
			zap.String("stage", stage),
			zap.Any("panic", r))
	}
}

func buildSuggestionPrompt(documentName, view string, problems []analyzer.DocumentProblem) string {
	var b strings.Builder
	b.WriteString("Você é um assistente jurídico especializado em direito brasileiro. ")
	b.WriteString("Analise o documento abaixo e liste sugestões objetivas de melhoria, uma por linha.\n\n")
	if documentName != "" {
		fmt.Fprintf(&b, "Documento: %s\n\n", documentName)
	}
	if len(problems) > 0 {
		b.WriteString("Problemas já identificados:\n")
		for _, p := range problems {
			fmt.Fprintf(&b, "- [%s] %s\n", p.Severity, p.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("Texto:\n")
	b.WriteString(view)
	return b.String()
}

// parseSuggestionLines splits a completion into suggestion entries, dropping
// list markers and blank lines.
func parseSuggestionLines(text string) []string {
	var suggestions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. )")
		line = strings.TrimSpace(line)
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	if len(suggestions) > analyzerMaxSuggestions {
		suggestions = suggestions[:analyzerMaxSuggestions]
	}
	return suggestions
}

// analyzerMaxSuggestions mirrors the heuristic suggestion cap.
const analyzerMaxSuggestions = 8
