package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here is the analysis:\n{\"a\":1}\nHope that helps!", `{"a":1}`},
		{"no object", "no braces here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}

func TestParseQualification(t *testing.T) {
	q, err := parseQualification("```json\n" + goodJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, 85, q.LeadScore)
	assert.Equal(t, "Acme Widgets", q.CompanyName)
}

func TestParseQualificationRepairsTrailingComma(t *testing.T) {
	raw := `{"lead_score": 70, "company_name": "Acme", "recommended_action": "Qualified",}`

	q, err := parseQualification(raw)
	require.NoError(t, err)
	assert.Equal(t, 70, q.LeadScore)
}

func TestParseQualificationRejectsOutOfRangeScore(t *testing.T) {
	_, err := parseQualification(`{"lead_score": 150, "recommended_action": "Qualified"}`)
	require.Error(t, err)

	_, err = parseQualification(`{"lead_score": -5, "recommended_action": "Qualified"}`)
	require.Error(t, err)
}

func TestParseQualificationNormalizesAction(t *testing.T) {
	q, err := parseQualification(`{"lead_score": 50, "recommended_action": "maybe?"}`)
	require.NoError(t, err)
	assert.Equal(t, "Further Research", q.RecommendedAction)
}

func TestParseQualificationNoJSON(t *testing.T) {
	_, err := parseQualification("the lead looks promising")
	require.Error(t, err)
}

func TestBuildPromptTruncatesContent(t *testing.T) {
	content := make([]byte, 10000)
	for i := range content {
		content[i] = 'x'
	}

	prompt := buildPrompt("https://acme.example", string(content), "", profileForTest(), 8000)
	assert.Less(t, len(prompt), 9500, "content capped at 8000 characters plus template")
	assert.Contains(t, prompt, "https://acme.example")
	assert.Contains(t, prompt, "Respond ONLY with valid JSON")
}

func TestBuildPromptIncludesProfileAndContext(t *testing.T) {
	prompt := buildPrompt("https://acme.example", "# Acme", "[1] (doc.md)\nsome context", profileForTest(), 8000)

	assert.Contains(t, prompt, "https://sells.group")
	assert.Contains(t, prompt, "Research automation")
	assert.Contains(t, prompt, "COMPANY KNOWLEDGE BASE")
	assert.Contains(t, prompt, "some context")
}

func TestBuildPromptEmptyProfileFields(t *testing.T) {
	prompt := buildPrompt("https://acme.example", "# Acme", "", model.Profile{}, 8000)
	assert.Contains(t, prompt, "- Website: N/A")
}

func profileForTest() model.Profile {
	return model.Profile{
		Website:          "https://sells.group",
		ValueProposition: "Research automation",
		ICP:              "B2B SaaS",
	}
}
