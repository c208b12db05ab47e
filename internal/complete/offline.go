package complete

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scrape"
)

// offlineIndustries mirrors the variety of the live models' output.
var offlineIndustries = []string{
	"B2B SaaS",
	"Enterprise Software",
	"Data Analytics",
	"Cybersecurity",
	"Marketing Technology",
	"Cloud Infrastructure",
	"AI/Machine Learning",
	"Customer Success",
}

var offlineFitReasons = []string{
	"Strong alignment with our ICP in terms of company size and technology stack",
	"Excellent fit - they serve similar customer segments and face challenges we solve",
	"Good potential - their growth stage matches our ideal customer profile",
	"Moderate fit - some alignment but may need further qualification",
	"Limited alignment with our ICP, but worth exploring specific use cases",
}

// OfflineCompleter emits a deterministic qualification without network
// access. The URL hash fixes the score in [45, 94], so re-analyzing the
// same URL always yields the same result.
type OfflineCompleter struct{}

// NewOffline returns the deterministic offline completer.
func NewOffline() *OfflineCompleter {
	return &OfflineCompleter{}
}

func (c *OfflineCompleter) Name() string {
	return "offline"
}

func (c *OfflineCompleter) Complete(_ context.Context, req Request) (string, error) {
	hash := scrape.URLHash(req.URL)
	score := int(45 + hash%50)
	industry := offlineIndustries[hash%uint64(len(offlineIndustries))]
	fitReason := offlineFitReasons[hash%uint64(len(offlineFitReasons))]
	company := companyFromPrompt(req.Prompt)

	qualified := score >= model.QualifiedScore
	action := model.ActionDisqualified
	switch {
	case qualified:
		action = model.ActionQualified
	case score >= model.WarmScore:
		action = model.ActionFurtherResearch
	}

	fitStrength := "moderate"
	fitDetail := "Further research needed to validate budget authority and immediate need."
	if qualified {
		fitStrength = "strong"
		fitDetail = "Their technology-forward approach and enterprise focus make them an ideal prospect."
	}

	q := model.Qualification{
		LeadScore: score,
		ScoreRationale: fmt.Sprintf(
			"Based on the website analysis, %s scores %d/100. They operate in %s which aligns with our target market. %s. The company demonstrates strong digital presence and appears to have the budget for enterprise solutions.",
			company, score, industry, fitReason),
		CompanyName: company,
		Industry:    industry,
		KeyInsights: fmt.Sprintf(
			"- %s focuses on enterprise B2B solutions\n- Strong emphasis on innovation and modern technology stack\n- Active in the %s space with proven customer base\n- Website demonstrates professional brand positioning\n- Clear value proposition aligned with market needs",
			company, industry),
		FitAnalysis: fmt.Sprintf(
			"The company shows %s alignment with our ICP. They operate in the %s sector and demonstrate characteristics of companies that benefit from our solution. %s",
			fitStrength, industry, fitDetail),
		PersonalizedEmail: fmt.Sprintf(
			"Subject: %s + [Your Company]: Streamlining %s Operations\n\nHi [Name],\n\nI came across %s and was impressed by your work in %s.\n\nMany companies in your space face challenges with [relevant pain point]. We've helped similar organizations achieve [specific outcome].\n\nWould you be open to a brief 15-minute call to explore if there's a fit?\n\nBest regards,\n[Your Name]",
			company, industry, company, industry),
		SMSDraft: fmt.Sprintf(
			"Hi! Saw %s's work in %s. We help similar companies [benefit]. Quick chat?",
			company, industry),
		RecommendedAction: string(action),
	}

	out, err := json.Marshal(q)
	if err != nil {
		return "", eris.Wrap(err, "complete: marshal offline qualification")
	}
	return string(out), nil
}

// companyFromPrompt pulls the company name from the first markdown
// heading of the scraped content embedded in the prompt.
func companyFromPrompt(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return "Test Company"
}
