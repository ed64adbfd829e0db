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

// Package segmenter splits long documents into bounded-size chunks along
// paragraph boundaries for downstream analysis and prompting.
package segmenter

import "strings"

const (
	// DefaultMaxChunkSize is the default upper bound on chunk length.
	DefaultMaxChunkSize = 8000
	// paragraphSeparator delimits paragraphs both for splitting and when
	// packing paragraphs back into a chunk.
	paragraphSeparator = "\n\n"
)

// Segment splits text into chunks of at most maxChunkSize characters,
// breaking on blank-line paragraph boundaries and greedily packing
// paragraphs. A single paragraph longer than maxChunkSize is hard-split at
// the byte boundary, accepting mid-sentence cuts. Text at or below the limit
// is returned unchanged as a single chunk; empty text yields no chunks.
//
// Joining the returned chunks with a blank line reproduces the original text
// exactly, except across hard splits, where the pieces concatenate directly.
func Segment(text string, maxChunkSize int) []string {
	if text == "" {
		return nil
	}
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if len(paragraph) > maxChunkSize {
			flush()
			for len(paragraph) > maxChunkSize {
				chunks = append(chunks, paragraph[:maxChunkSize])
				paragraph = paragraph[maxChunkSize:]
			}
			current.WriteString(paragraph)
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraphSeparator)+len(paragraph) > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(paragraphSeparator)
		}
		current.WriteString(paragraph)
	}

	flush()
	return chunks
}
