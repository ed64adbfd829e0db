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
	// minSummaryLength is the minimum text length for a summary to be produced.
	minSummaryLength = 100
	// keyPointMinLength is the paragraph length that contributes a key point.
	keyPointMinLength = 100
	// fillerMinLength and fillerMaxLength bound short paragraphs used as
	// filler key points when fewer than minKeyPoints were found.
	fillerMinLength = 30
	fillerMaxLength = 100
	// argumentMinLength is the paragraph length that contributes an argument.
	argumentMinLength = 80
	// maxKeyPoints caps the key point list.
	maxKeyPoints = 5
	// minKeyPoints is the target below which filler paragraphs are used.
	minKeyPoints = 3
	// maxArguments caps the main argument list.
	maxArguments = 3
	// argumentTruncateLength bounds each main argument entry.
	argumentTruncateLength = 150
	// overviewTruncateLength bounds each half of the overview.
	overviewTruncateLength = 200
)

// Summarize derives a short synopsis from paragraph structure. It returns nil
// when the text is empty or shorter than the minimum threshold. The first two
// paragraphs feed the introduction, the last two feed the conclusion, and
// middle paragraphs become key points and main arguments.
func Summarize(text string) *DocumentSummary {
	if len(strings.TrimSpace(text)) < minSummaryLength {
		return nil
	}

	paragraphs := nonEmptyParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	introEnd := min(2, len(paragraphs))
	conclStart := max(len(paragraphs)-2, introEnd)

	intro := strings.Join(paragraphs[:introEnd], " ")
	concl := strings.Join(paragraphs[conclStart:], " ")
	middle := paragraphs[introEnd:conclStart]

	keyPoints := extractKeyPoints(middle)
	arguments := extractArguments(middle)

	overview := Truncate(intro, overviewTruncateLength)
	if concl != "" {
		overview += " " + Truncate(concl, overviewTruncateLength)
	}

	return &DocumentSummary{
		Overview:  overview,
		KeyPoints: keyPoints,
		Outline: SummaryOutline{
			Introduction:  Truncate(intro, argumentTruncateLength),
			MainArguments: arguments,
			Conclusion:    Truncate(concl, argumentTruncateLength),
		},
	}
}

// nonEmptyParagraphs splits text on blank lines and trims each paragraph,
// dropping empty ones.
func nonEmptyParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// extractKeyPoints takes the first sentence of each sufficiently long middle
// paragraph, topping up with short paragraphs when too few were found.
func extractKeyPoints(middle []string) []string {
	var points []string
	for _, p := range middle {
		if len(points) >= maxKeyPoints {
			break
		}
		if len(p) > keyPointMinLength {
			points = append(points, firstSentence(p))
		}
	}

	if len(points) < minKeyPoints {
		for _, p := range middle {
			if len(points) >= maxKeyPoints {
				break
			}
			if len(p) >= fillerMinLength && len(p) <= fillerMaxLength {
				points = append(points, p)
			}
		}
	}

	if points == nil {
		points = []string{}
	}
	return points
}

// extractArguments turns long middle paragraphs into truncated argument
// entries.
func extractArguments(middle []string) []string {
	var arguments []string
	for _, p := range middle {
		if len(arguments) >= maxArguments {
			break
		}
		if len(p) > argumentMinLength {
			arguments = append(arguments, Truncate(p, argumentTruncateLength))
		}
	}
	if arguments == nil {
		arguments = []string{}
	}
	return arguments
}

// firstSentence returns the text up to and including the first sentence
// terminator, or the whole text when none is found.
func firstSentence(text string) string {
	for _, ender := range []string{". ", "! ", "? "} {
		if idx := strings.Index(text, ender); idx >= 0 {
			return text[:idx+1]
		}
	}
	return text
}
