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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMissingSectionsConclusionAbsent(t *testing.T) {
	text := "INTRODUÇÃO\n\n" +
		"o presente parecer examina a validade do contrato.\n\n" +
		"DESENVOLVIMENTO\n\n" +
		"a cláusula quinta estabelece obrigações recíprocas."
	sections := AnalyzeSections(text)

	problems := DetectMissingSections(text, sections)

	require.Len(t, problems, 1)
	assert.Equal(t, ProblemMissingSection, problems[0].Kind)
	assert.Equal(t, SeverityHigh, problems[0].Severity)
	assert.Equal(t, len(text), problems[0].Location)
	assert.Contains(t, problems[0].Description, "conclusão")
}

func TestDetectMissingSectionsAllAbsent(t *testing.T) {
	text := "texto corrido sem qualquer estrutura reconhecível"

	problems := DetectMissingSections(text, nil)

	require.Len(t, problems, 3)
	assert.Equal(t, 0, problems[0].Location)
	assert.Equal(t, len(text)/2, problems[1].Location)
	assert.Equal(t, len(text), problems[2].Location)
	assert.Equal(t, SeverityMedium, problems[1].Severity)
}

func TestDetectMissingSectionsArgumentationCountsAsDevelopment(t *testing.T) {
	sections := []DocumentSection{
		{Kind: SectionIntroduction},
		{Kind: SectionArgumentation},
		{Kind: SectionConclusion},
	}

	problems := DetectMissingSections("texto", sections)

	assert.Empty(t, problems)
}

func TestDetectOrderProblems(t *testing.T) {
	tests := []struct {
		name     string
		sections []DocumentSection
		expected int
	}{
		{
			name: "canonical order",
			sections: []DocumentSection{
				{Kind: SectionIntroduction, StartOffset: 0},
				{Kind: SectionDevelopment, StartOffset: 100},
				{Kind: SectionConclusion, StartOffset: 200},
			},
			expected: 0,
		},
		{
			name: "conclusion before introduction",
			sections: []DocumentSection{
				{Kind: SectionConclusion, StartOffset: 0},
				{Kind: SectionIntroduction, StartOffset: 100},
			},
			expected: 1,
		},
		{
			name: "multiple violations report once",
			sections: []DocumentSection{
				{Kind: SectionConclusion, StartOffset: 0},
				{Kind: SectionDevelopment, StartOffset: 50},
				{Kind: SectionIntroduction, StartOffset: 100},
			},
			expected: 1,
		},
		{
			name: "non canonical kinds are ignored",
			sections: []DocumentSection{
				{Kind: SectionIntroduction, StartOffset: 0},
				{Kind: SectionCitation, StartOffset: 50},
				{Kind: SectionOther, StartOffset: 80},
				{Kind: SectionConclusion, StartOffset: 100},
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := DetectOrderProblems(tt.sections)

			require.Len(t, problems, tt.expected)
			if tt.expected > 0 {
				assert.Equal(t, ProblemWrongOrder, problems[0].Kind)
				assert.Equal(t, SeverityMedium, problems[0].Severity)
			}
		})
	}
}

func TestDetectOrderProblemsReportsFirstBackwardTransition(t *testing.T) {
	sections := []DocumentSection{
		{Kind: SectionDevelopment, StartOffset: 0},
		{Kind: SectionIntroduction, StartOffset: 40},
	}

	problems := DetectOrderProblems(sections)

	require.Len(t, problems, 1)
	assert.Equal(t, 40, problems[0].Location)
}

func TestDetectTerminologyMixedTerms(t *testing.T) {
	text := "O autor alega inadimplemento. O autor juntou provas. " +
		"O autor reitera o pedido. O requerente anexou documentos."

	problems := DetectTerminology(text)

	require.Len(t, problems, 1)
	assert.Equal(t, ProblemTerminology, problems[0].Kind)
	assert.Equal(t, SeverityLow, problems[0].Severity)
	assert.Contains(t, problems[0].Description, `"autor" (3 ocorrências)`)
	assert.Contains(t, problems[0].Description, `"requerente" (1 ocorrências)`)
	assert.Equal(t, strings.Index(strings.ToLower(text), "requerente"), problems[0].Location)
	assert.Contains(t, problems[0].Suggestion, "autor")
}

func TestDetectTerminologySingleTermIsConsistent(t *testing.T) {
	text := "O autor alega. O autor comprova. O autor requer."

	assert.Empty(t, DetectTerminology(text))
}

func TestDetectTerminologyMatchesWholeWordsOnly(t *testing.T) {
	// "autora" is a different token and must not count as "autor".
	text := "A autora alega inadimplemento. A autora comprova. O requerente anexou."

	assert.Empty(t, DetectTerminology(text))
}

func TestDetectTerminologyIsDeterministic(t *testing.T) {
	text := "O réu contestou. O requerido silenciou. O contrato e a avença foram juntados pelo réu."

	first := DetectTerminology(text)
	second := DetectTerminology(text)

	assert.Equal(t, first, second)
}

func TestDetectCitationProblems(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
		severity Severity
	}{
		{
			name:     "quoted span with reference",
			text:     `conforme lição doutrinária: "a posse é a exteriorização do domínio sobre a coisa" (PEREIRA, 2019, p. 45)`,
			expected: 0,
		},
		{
			name:     "quoted span without reference",
			text:     `conforme lição doutrinária: "a posse é a exteriorização do domínio sobre a coisa" e nada mais`,
			expected: 1,
			severity: SeverityHigh,
		},
		{
			name:     "legal reference with number",
			text:     "nos termos do artigo 186 do Código Civil e da Lei nº 8.078",
			expected: 0,
		},
		{
			name:     "legal reference without number",
			text:     "conforme dispõe a lei aplicável ao caso concreto",
			expected: 1,
			severity: SeverityMedium,
		},
		{
			name:     "short quote is not a citation",
			text:     `o termo "contrato" aparece entre aspas`,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := DetectCitationProblems(tt.text)

			require.Len(t, problems, tt.expected)
			if tt.expected > 0 {
				assert.Equal(t, ProblemInvalidCitation, problems[0].Kind)
				assert.Equal(t, tt.severity, problems[0].Severity)
			}
		})
	}
}

func TestDetectProblemsConcatenatesAllDetectors(t *testing.T) {
	text := "CONCLUSÃO\n\n" +
		"pelo exposto, o autor requer a condenação do requerente conforme a lei."
	sections := AnalyzeSections(text)

	problems := DetectProblems(text, sections)

	kinds := make(map[ProblemKind]int)
	for _, p := range problems {
		kinds[p.Kind]++
	}

	// Missing introduction and development, mixed autor/requerente, and a
	// legal reference without a number.
	assert.GreaterOrEqual(t, kinds[ProblemMissingSection], 2)
	assert.Equal(t, 1, kinds[ProblemTerminology])
	assert.Equal(t, 1, kinds[ProblemInvalidCitation])
}

func TestDetectProblemsIsDeterministic(t *testing.T) {
	text := "INTRODUÇÃO\n\no autor e o requerente divergem quanto ao contrato e à avença."
	sections := AnalyzeSections(text)

	first := DetectProblems(text, sections)
	second := DetectProblems(text, sections)

	assert.Equal(t, first, second)
}
