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

package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentEmptyText(t *testing.T) {
	assert.Nil(t, Segment("", 100))
}

func TestSegmentTextWithinLimit(t *testing.T) {
	text := "Primeiro parágrafo.\n\nSegundo parágrafo."

	chunks := Segment(text, DefaultMaxChunkSize)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSegmentSplitsOnParagraphBoundaries(t *testing.T) {
	paragraphs := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := Segment(text, 90)

	require.Len(t, chunks, 2)
	assert.Equal(t, paragraphs[0]+"\n\n"+paragraphs[1], chunks[0])
	assert.Equal(t, paragraphs[2], chunks[1])
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 90)
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 10; i++ {
		paragraphs = append(paragraphs, strings.Repeat("parágrafo ", 5+i))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := Segment(text, 200)

	require.NotEmpty(t, chunks)
	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, "\n\n"))
}

func TestSegmentHardSplitsOversizedParagraph(t *testing.T) {
	text := strings.Repeat("x", 25)

	chunks := Segment(text, 10)

	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("x", 10), chunks[0])
	assert.Equal(t, strings.Repeat("x", 10), chunks[1])
	assert.Equal(t, strings.Repeat("x", 5), chunks[2])
	// Hard-split pieces concatenate directly back to the original.
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSegmentOversizedParagraphBetweenNormalOnes(t *testing.T) {
	first := strings.Repeat("a", 20)
	huge := strings.Repeat("b", 70)
	last := strings.Repeat("c", 20)
	text := first + "\n\n" + huge + "\n\n" + last

	chunks := Segment(text, 30)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 30)
	}
	assert.Equal(t,
		strings.ReplaceAll(text, "\n\n", ""),
		strings.ReplaceAll(strings.Join(chunks, ""), "\n\n", ""))
}

func TestSegmentNonPositiveLimitUsesDefault(t *testing.T) {
	text := strings.Repeat("a", 100)

	chunks := Segment(text, 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}
