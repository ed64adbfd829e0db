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

package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

// canonicalOrder is the expected relative sequence of structural kinds used
// by the order detector. Kinds absent from this list are ignored.
var canonicalOrder = []SectionKind{
	SectionIntroduction,
	SectionDevelopment,
	SectionArgumentation,
	SectionConclusion,
}

// terminologyGroups lists sets of interchangeable legal terms. Mixing terms
// from the same group in one document is flagged as inconsistent.
var terminologyGroups = [][]string{
	{"autor", "requerente", "demandante", "postulante"},
	{"réu", "requerido", "demandado", "acionado"},
	{"contrato", "avença", "pacto", "ajuste"},
	{"sentença", "decisum", "julgado"},
}

var (
	quotedSpanPattern    = regexp.MustCompile(`["“«][^"”»]{15,}["”»]`)
	legalRefPattern      = regexp.MustCompile(`(?i)\b(artigo|lei|decreto)\b`)
	refNumberPattern     = regexp.MustCompile(`^[\s.ºª°nN]{0,6}\d`)
	parentheticalPattern = regexp.MustCompile(`^\s*\(`)
)

// DetectMissingSections flags the absence of introduction, development and
// conclusion sections. The introduction problem points at the document start,
// the conclusion problem at the document end.
func DetectMissingSections(text string, sections []DocumentSection) []DocumentProblem {
	found := make(map[SectionKind]bool, len(sections))
	for _, s := range sections {
		found[s.Kind] = true
	}

	var problems []DocumentProblem
	if !found[SectionIntroduction] {
		problems = append(problems, DocumentProblem{
			Kind:        ProblemMissingSection,
			Description: "O documento não possui uma seção de introdução identificável",
			Location:    0,
			Suggestion:  "Adicione uma introdução apresentando o contexto e o objeto do documento",
			Severity:    SeverityHigh,
		})
	}
	if !found[SectionDevelopment] && !found[SectionArgumentation] {
		problems = append(problems, DocumentProblem{
			Kind:        ProblemMissingSection,
			Description: "O documento não possui uma seção de desenvolvimento ou fundamentação",
			Location:    len(text) / 2,
			Suggestion:  "Desenvolva a fundamentação jurídica do documento",
			Severity:    SeverityMedium,
		})
	}
	if !found[SectionConclusion] {
		problems = append(problems, DocumentProblem{
			Kind:        ProblemMissingSection,
			Description: "O documento não possui uma seção de conclusão identificável",
			Location:    len(text),
			Suggestion:  "Adicione uma conclusão ou seção de pedidos ao final do documento",
			Severity:    SeverityHigh,
		})
	}
	return problems
}

// DetectOrderProblems verifies that sections follow the canonical order. The
// check is a fold over the highest canonical index seen so far; the first
// backward transition found is reported and the scan stops, so at most one
// wrong_order problem is produced per document.
func DetectOrderProblems(sections []DocumentSection) []DocumentProblem {
	highest := -1
	for _, s := range sections {
		idx := canonicalIndex(s.Kind)
		if idx < 0 {
			continue
		}
		if idx < highest {
			return []DocumentProblem{{
				Kind: ProblemWrongOrder,
				Description: fmt.Sprintf("A seção %q aparece após uma seção que deveria sucedê-la na estrutura convencional",
					s.Kind),
				Location:   s.StartOffset,
				Suggestion: "Reordene as seções seguindo a sequência introdução, desenvolvimento, argumentação e conclusão",
				Severity:   SeverityMedium,
			}}
		}
		if idx > highest {
			highest = idx
		}
	}
	return nil
}

func canonicalIndex(kind SectionKind) int {
	for i, k := range canonicalOrder {
		if k == kind {
			return i
		}
	}
	return -1
}

// DetectTerminology flags documents that mix interchangeable terms from the
// same synonym group. Every non-dominant term is reported relative to the
// most frequent one.
func DetectTerminology(text string) []DocumentProblem {
	lower := strings.ToLower(text)
	words := splitWords(lower)

	var problems []DocumentProblem
	for _, group := range terminologyGroups {
		counts := make(map[string]int, len(group))
		distinct := 0
		for _, term := range group {
			if n := words[term]; n > 0 {
				counts[term] = n
				distinct++
			}
		}
		if distinct < 2 {
			continue
		}

		dominant := ""
		for _, term := range group {
			if counts[term] > 0 && (dominant == "" || counts[term] > counts[dominant]) {
				dominant = term
			}
		}

		for _, term := range group {
			if term == dominant || counts[term] == 0 {
				continue
			}
			problems = append(problems, DocumentProblem{
				Kind: ProblemTerminology,
				Description: fmt.Sprintf("Uso inconsistente de terminologia: %q (%d ocorrências) e %q (%d ocorrências) referem-se ao mesmo conceito",
					dominant, counts[dominant], term, counts[term]),
				Location:   strings.Index(lower, term),
				Suggestion: fmt.Sprintf("Padronize o uso do termo %q em todo o documento", dominant),
				Severity:   SeverityLow,
			})
		}
	}
	return problems
}

// splitWords tokenizes lowercased text on non-letter boundaries and returns
// occurrence counts per word.
func splitWords(lower string) map[string]int {
	counts := make(map[string]int)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !isLetter(r)
	})
	for _, w := range fields {
		counts[w]++
	}
	return counts
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x00C0
}

// DetectCitationProblems flags quoted spans of fifteen or more characters
// that are not immediately followed by a parenthetical reference, and
// mentions of artigo/lei/decreto that are not followed by a number.
func DetectCitationProblems(text string) []DocumentProblem {
	var problems []DocumentProblem

	for _, loc := range quotedSpanPattern.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if !parentheticalPattern.MatchString(rest) {
			problems = append(problems, DocumentProblem{
				Kind:        ProblemInvalidCitation,
				Description: "Citação direta sem referência entre parênteses logo após o trecho citado",
				Location:    loc[0],
				Suggestion:  "Inclua a referência da citação no formato (AUTOR, ano, p. X)",
				Severity:    SeverityHigh,
			})
		}
	}

	for _, loc := range legalRefPattern.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if !refNumberPattern.MatchString(rest) {
			problems = append(problems, DocumentProblem{
				Kind:        ProblemInvalidCitation,
				Description: fmt.Sprintf("Referência normativa %q sem numeração", text[loc[0]:loc[1]]),
				Location:    loc[0],
				Suggestion:  "Complete a referência com o número do dispositivo legal",
				Severity:    SeverityMedium,
			})
		}
	}

	return problems
}

// DetectProblems runs every detector over the document and concatenates the
// results in a stable order.
func DetectProblems(text string, sections []DocumentSection) []DocumentProblem {
	var problems []DocumentProblem
	problems = append(problems, DetectMissingSections(text, sections)...)
	problems = append(problems, DetectOrderProblems(sections)...)
	problems = append(problems, DetectTerminology(text)...)
	problems = append(problems, DetectCitationProblems(text)...)
	return problems
}
