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

import "regexp"

// sectionRule pairs a compiled pattern with the section kind it assigns.
// Rules are evaluated in order and the first match wins, so more specific
// patterns must come before more general ones.
type sectionRule struct {
	kind    SectionKind
	pattern *regexp.Regexp
}

// sectionRules is the ordered classification table for paragraph kinds.
// Keywords cover the vocabulary of Brazilian petitions, rulings and opinions.
var sectionRules = []sectionRule{
	{
		kind: SectionIntroduction,
		pattern: regexp.MustCompile(`(?i)\b(introdu[cç][aã]o|considera[cç][oõ]es\s+iniciais|preliminarmente|do\s+relat[oó]rio|dos\s+fatos|exm[oa]\.?\s+senhor)`),
	},
	{
		kind: SectionConclusion,
		pattern: regexp.MustCompile(`(?i)\b(conclus[aã]o|considera[cç][oõ]es\s+finais|dispositivo|ante\s+o\s+exposto|diante\s+do\s+exposto|pelo\s+exposto|isto\s+posto|dos\s+pedidos)`),
	},
	{
		kind: SectionArgumentation,
		pattern: regexp.MustCompile(`(?i)\b(argumenta[cç][aã]o|das\s+raz[oõ]es|alega[cç][oõ]es|sustenta(?:-se)?|demonstra(?:-se)?|resta\s+evidente)`),
	},
	{
		kind: SectionDevelopment,
		pattern: regexp.MustCompile(`(?i)\b(desenvolvimento|do\s+m[eé]rito|fundamenta[cç][aã]o|dos\s+fundamentos|do\s+direito|an[aá]lise)`),
	},
	{
		kind:    SectionCitation,
		pattern: regexp.MustCompile(`["“«][^"”»]{15,}["”»]`),
	},
}

// titleLinePattern matches a first line that looks like a heading: starts with
// an uppercase letter or digit and carries only word characters and light
// punctuation.
var titleLinePattern = regexp.MustCompile(`^[A-ZÀ-Ý0-9][\pL\pN\s\-–.,:;()ºª°]*$`)

// classifyParagraph returns the kind assigned by the first matching rule and
// whether any rule matched.
func classifyParagraph(paragraph string) (SectionKind, bool) {
	for _, rule := range sectionRules {
		if rule.pattern.MatchString(paragraph) {
			return rule.kind, true
		}
	}
	return SectionOther, false
}

// looksLikeTitle reports whether a paragraph's first line reads as a heading.
func looksLikeTitle(firstLine string) bool {
	if firstLine == "" || len(firstLine) > 120 {
		return false
	}
	return titleLinePattern.MatchString(firstLine)
}
