package analyzer

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// systemPrompt frames every completion request.
const systemPrompt = "You are an expert B2B lead qualification analyst. " +
	"You analyze company website content and score companies as potential leads. " +
	"You always respond with valid JSON and nothing else."

// strictReminder is appended on the re-prompt after a parse failure.
const strictReminder = "\n\nYour previous response was not valid JSON. " +
	"Respond with ONLY the JSON object. No markdown fences, no commentary."

// buildPrompt assembles the analysis prompt from the operator profile,
// the optional knowledge-base context, and the scraped content.
func buildPrompt(url, content, kbContext string, profile model.Profile, maxContentLen int) string {
	if maxContentLen > 0 {
		runes := []rune(content)
		if len(runes) > maxContentLen {
			content = string(runes[:maxContentLen])
		}
	}

	var b strings.Builder
	b.WriteString("Analyze the following company website content and score it as a potential lead.\n\n")
	b.WriteString("USER PROFILE (Your Company):\n")
	fmt.Fprintf(&b, "- Website: %s\n", orNA(profile.Website))
	fmt.Fprintf(&b, "- Value Proposition: %s\n", orNA(profile.ValueProposition))
	fmt.Fprintf(&b, "- Ideal Customer Profile: %s\n", orNA(profile.ICP))

	if kbContext != "" {
		b.WriteString("\nCOMPANY KNOWLEDGE BASE (use this to inform your analysis):\n")
		b.WriteString(kbContext)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nCOMPANY WEBSITE CONTENT (scraped from %s):\n%s\n", url, content)

	b.WriteString(`
Provide a detailed analysis in the following JSON format:
{
    "lead_score": <integer 0-100>,
    "score_rationale": "<detailed explanation of the score>",
    "company_name": "<extracted company name>",
    "industry": "<identified industry>",
    "key_insights": "<3-5 key insights about the company>",
    "fit_analysis": "<why they are/aren't a good fit for our ICP>",
    "personalized_email": "<draft a personalized outreach email referencing specific content from their website>",
    "sms_draft": "<draft a short SMS message (max 160 chars)>",
    "recommended_action": "<Qualified/Disqualified/Further Research>"
}

Be specific and reference actual content found on their website.`)
	if kbContext != "" {
		b.WriteString(" Use insights from the company knowledge base to personalize the outreach.")
	}
	b.WriteString("\n\nIMPORTANT: Respond ONLY with valid JSON, no other text before or after.")

	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
