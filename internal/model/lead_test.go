package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualificationValidate(t *testing.T) {
	tests := []struct {
		name       string
		q          Qualification
		wantErr    bool
		wantAction string
	}{
		{
			name:       "valid qualified",
			q:          Qualification{LeadScore: 85, RecommendedAction: "Qualified"},
			wantAction: "Qualified",
		},
		{
			name:       "valid boundary zero",
			q:          Qualification{LeadScore: 0, RecommendedAction: "Disqualified"},
			wantAction: "Disqualified",
		},
		{
			name:       "valid boundary hundred",
			q:          Qualification{LeadScore: 100, RecommendedAction: "Qualified"},
			wantAction: "Qualified",
		},
		{
			name:    "score above range",
			q:       Qualification{LeadScore: 101},
			wantErr: true,
		},
		{
			name:    "negative score",
			q:       Qualification{LeadScore: -1},
			wantErr: true,
		},
		{
			name:       "unknown action normalized",
			q:          Qualification{LeadScore: 50, RecommendedAction: "Buy Now!!"},
			wantAction: "Further Research",
		},
		{
			name:       "empty action normalized",
			q:          Qualification{LeadScore: 50},
			wantAction: "Further Research",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, tt.q.RecommendedAction)
		})
	}
}

func TestApplyQualification(t *testing.T) {
	l := Lead{URL: "https://acme-example.com", Status: LeadStatusScrapeFailed, Error: "old"}
	l.ApplyQualification(Qualification{
		LeadScore:         72,
		CompanyName:       "Acme",
		Industry:          "B2B SaaS",
		RecommendedAction: "Qualified",
	})

	require.NotNil(t, l.Score)
	assert.Equal(t, 72, *l.Score)
	assert.Equal(t, LeadStatusAnalyzed, l.Status)
	assert.Equal(t, FailureNone, l.FailureKind)
	assert.Empty(t, l.Error)
	assert.True(t, l.IsQualified())
}

func TestIsQualifiedThreshold(t *testing.T) {
	score := func(n int) *int { return &n }

	assert.False(t, (&Lead{}).IsQualified(), "no score is never qualified")
	assert.False(t, (&Lead{Score: score(69)}).IsQualified())
	assert.True(t, (&Lead{Score: score(70)}).IsQualified())
}

func TestLeadID(t *testing.T) {
	a := LeadID("https://acme-example.com")
	b := LeadID("https://acme-example.com")
	c := LeadID("https://other-example.com")

	assert.Len(t, a, 12)
	assert.Equal(t, a, b, "same URL derives the same id")
	assert.NotEqual(t, a, c)

	// Trailing slash and surrounding whitespace do not change identity.
	assert.Equal(t, a, LeadID(" https://acme-example.com/ "))
}
