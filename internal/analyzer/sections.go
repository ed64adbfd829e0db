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

import "strings"

const (
	// maxExcerptLength bounds the excerpt carried on each section.
	maxExcerptLength = 120
	// maxTitleLength bounds the title carried on each section.
	maxTitleLength = 80
	// paragraphSeparatorLength accounts for the blank line between paragraphs
	// when accumulating offsets.
	paragraphSeparatorLength = 2
)

// AnalyzeSections scans document text for structural sections using the
// ordered rule table. Paragraphs are delimited by blank lines; each non-empty
// paragraph is tested against the rules and the first match wins. A paragraph
// whose first line looks like a heading but matches no rule is still emitted
// as kind "other". StartOffset is the running character offset of each
// paragraph and is non-decreasing across the returned slice.
func AnalyzeSections(text string) []DocumentSection {
	var sections []DocumentSection
	offset := 0

	for _, paragraph := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			offset += len(paragraph) + paragraphSeparatorLength
			continue
		}

		firstLine := trimmed
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
			firstLine = strings.TrimSpace(trimmed[:idx])
		}

		kind, matched := classifyParagraph(trimmed)
		isTitle := looksLikeTitle(firstLine)

		if matched || isTitle {
			level := 2
			if isTitle {
				level = 1
			}
			sections = append(sections, DocumentSection{
				Kind:        kind,
				Title:       Truncate(firstLine, maxTitleLength),
				StartOffset: offset,
				Excerpt:     Truncate(trimmed, maxExcerptLength),
				Level:       level,
			})
		}

		offset += len(paragraph) + paragraphSeparatorLength
	}

	return sections
}

// Truncate shortens text to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
