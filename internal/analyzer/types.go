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

// Package analyzer provides heuristic document analysis for Brazilian legal
// texts: structural section detection, problem detection (missing sections,
// ordering, terminology, citations) and paragraph-based summarization. All
// functions in this package are pure and deterministic.
package analyzer

// SectionKind classifies a structural section of a legal document.
type SectionKind string

const (
	// SectionIntroduction marks introductory material (relatório, preliminares).
	SectionIntroduction SectionKind = "introduction"
	// SectionDevelopment marks the body of the document (mérito, fundamentação).
	SectionDevelopment SectionKind = "development"
	// SectionConclusion marks closing material (conclusão, dispositivo).
	SectionConclusion SectionKind = "conclusion"
	// SectionArgumentation marks argumentative passages.
	SectionArgumentation SectionKind = "argumentation"
	// SectionCitation marks quoted doctrine or jurisprudence.
	SectionCitation SectionKind = "citation"
	// SectionOther marks title-like paragraphs that match no content rule.
	SectionOther SectionKind = "other"
)

// ProblemKind classifies a detected document problem.
type ProblemKind string

const (
	// ProblemInconsistency marks internally inconsistent content.
	ProblemInconsistency ProblemKind = "inconsistency"
	// ProblemMissingSection marks an expected section that was not found.
	ProblemMissingSection ProblemKind = "missing_section"
	// ProblemWrongOrder marks sections appearing out of canonical order.
	ProblemWrongOrder ProblemKind = "wrong_order"
	// ProblemInvalidCitation marks citations without a verifiable reference.
	ProblemInvalidCitation ProblemKind = "invalid_citation"
	// ProblemTerminology marks inconsistent use of equivalent legal terms.
	ProblemTerminology ProblemKind = "terminology"
)

// Severity indicates how serious a detected problem is.
type Severity string

const (
	// SeverityHigh indicates a problem that compromises the document.
	SeverityHigh Severity = "high"
	// SeverityMedium indicates a problem that should be addressed.
	SeverityMedium Severity = "medium"
	// SeverityLow indicates a stylistic or consistency issue.
	SeverityLow Severity = "low"
)

// DocumentSection represents one structural section found in a document.
// Sections are emitted in document order with non-decreasing StartOffset.
type DocumentSection struct {
	Kind        SectionKind `json:"kind"`
	Title       string      `json:"title"`
	StartOffset int         `json:"startOffset"`
	Excerpt     string      `json:"excerpt"`
	Level       int         `json:"level"`
}

// DocumentProblem represents one issue detected in a document.
type DocumentProblem struct {
	Kind        ProblemKind `json:"kind"`
	Description string      `json:"description"`
	Location    int         `json:"location"`
	Suggestion  string      `json:"suggestion,omitempty"`
	Severity    Severity    `json:"severity"`
}

// SummaryOutline is the three-part outline of a document summary.
type SummaryOutline struct {
	Introduction  string   `json:"introduction,omitempty"`
	MainArguments []string `json:"mainArguments"`
	Conclusion    string   `json:"conclusion,omitempty"`
}

// DocumentSummary is a short synopsis derived from paragraph structure.
type DocumentSummary struct {
	Overview  string         `json:"overview"`
	KeyPoints []string       `json:"keyPoints"`
	Outline   SummaryOutline `json:"outline"`
}

// DocumentStructure groups the sections and problems found in one analysis.
type DocumentStructure struct {
	Sections []DocumentSection `json:"sections"`
	Problems []DocumentProblem `json:"problems"`
}

// ContextualAnalysis is the aggregate returned to callers. It is constructed
// once per analysis request and never mutated afterwards, so it is safe to
// cache and serialize. Degraded is set when any stage fell back to contingency
// output (for example, the suggestion stage when the completion service is
// unavailable).
type ContextualAnalysis struct {
	Structure              *DocumentStructure `json:"structure,omitempty"`
	Summary                *DocumentSummary   `json:"summary,omitempty"`
	ImprovementSuggestions []string           `json:"improvementSuggestions,omitempty"`
	Degraded               bool               `json:"degraded,omitempty"`
}
