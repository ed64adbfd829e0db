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

// maxSuggestions caps the improvement suggestion list.
const maxSuggestions = 8

// genericSuggestions maps problem kinds to fallback advice used when a
// problem carries no suggestion of its own.
var genericSuggestions = map[ProblemKind]string{
	ProblemMissingSection:  "Revise a estrutura do documento para incluir as seções convencionais",
	ProblemWrongOrder:      "Reorganize as seções seguindo a estrutura convencional de peças jurídicas",
	ProblemTerminology:     "Padronize a terminologia utilizada ao longo do documento",
	ProblemInvalidCitation: "Revise as citações e referências normativas do documento",
	ProblemInconsistency:   "Revise o documento em busca de afirmações contraditórias",
}

// SuggestImprovements derives an ordered, deduplicated list of improvement
// suggestions from detected problems.
func SuggestImprovements(problems []DocumentProblem) []string {
	seen := make(map[string]bool, len(problems))
	var suggestions []string

	for _, p := range problems {
		if len(suggestions) >= maxSuggestions {
			break
		}
		suggestion := p.Suggestion
		if suggestion == "" {
			suggestion = genericSuggestions[p.Kind]
		}
		if suggestion == "" || seen[suggestion] {
			continue
		}
		seen[suggestion] = true
		suggestions = append(suggestions, suggestion)
	}

	return suggestions
}
