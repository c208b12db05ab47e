package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// LeadStatus represents the terminal state of an analysis.
type LeadStatus string

const (
	LeadStatusAnalyzed         LeadStatus = "analyzed"
	LeadStatusScrapeFailed     LeadStatus = "scrape_failed"
	LeadStatusCompletionFailed LeadStatus = "completion_failed"

	// LeadStatusFailed marks a bulk entry that never reached the pipeline,
	// such as a URL rejected before scraping. These are reported to the
	// caller but not persisted.
	LeadStatusFailed LeadStatus = "failed"
)

// FailureKind classifies why a pipeline step failed. It lets callers
// distinguish "the service is down" from "the service answered oddly".
type FailureKind string

const (
	FailureNone                 FailureKind = ""
	FailureInvalidInput         FailureKind = "invalid_input"
	FailureProviderUnavailable  FailureKind = "provider_unavailable"
	FailureParse                FailureKind = "parse_failure"
	FailurePersistence          FailureKind = "persistence_failure"
	FailureConfigurationMissing FailureKind = "configuration_missing"
)

// RecommendedAction is the qualification verdict attached to a scored lead.
type RecommendedAction string

const (
	ActionQualified       RecommendedAction = "Qualified"
	ActionDisqualified    RecommendedAction = "Disqualified"
	ActionFurtherResearch RecommendedAction = "Further Research"
)

// Scoring thresholds.
const (
	QualifiedScore = 70
	WarmScore      = 60
)

// Qualification is the structured payload parsed from a completion
// provider's response.
type Qualification struct {
	LeadScore         int    `json:"lead_score"`
	ScoreRationale    string `json:"score_rationale"`
	CompanyName       string `json:"company_name"`
	Industry          string `json:"industry"`
	KeyInsights       string `json:"key_insights"`
	FitAnalysis       string `json:"fit_analysis"`
	PersonalizedEmail string `json:"personalized_email"`
	SMSDraft          string `json:"sms_draft"`
	RecommendedAction string `json:"recommended_action"`
}

// Validate checks the score range and normalizes the recommended action.
func (q *Qualification) Validate() error {
	if q.LeadScore < 0 || q.LeadScore > 100 {
		return eris.Errorf("model: lead score %d out of range [0,100]", q.LeadScore)
	}
	switch RecommendedAction(q.RecommendedAction) {
	case ActionQualified, ActionDisqualified, ActionFurtherResearch:
	default:
		q.RecommendedAction = string(ActionFurtherResearch)
	}
	return nil
}

// Lead is one stored qualification result for a scraped URL.
type Lead struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Scraped content (truncated preview) and its status.
	ScrapedContent string `json:"scraped_content,omitempty"`
	PageTitle      string `json:"page_title,omitempty"`

	// Qualification fields. Score is nil for a failed analysis; a failed
	// scrape never carries a fabricated score.
	Score             *int   `json:"score,omitempty"`
	CompanyName       string `json:"company_name,omitempty"`
	Industry          string `json:"industry,omitempty"`
	ScoreRationale    string `json:"score_rationale,omitempty"`
	KeyInsights       string `json:"key_insights,omitempty"`
	FitAnalysis       string `json:"fit_analysis,omitempty"`
	EmailDraft        string `json:"email_draft,omitempty"`
	SMSDraft          string `json:"sms_draft,omitempty"`
	RecommendedAction string `json:"recommended_action,omitempty"`

	// Provenance.
	Provider    string `json:"provider,omitempty"`
	UsedContext bool   `json:"used_context"`
	OfflineMode bool   `json:"offline_mode"`

	Status      LeadStatus  `json:"status"`
	FailureKind FailureKind `json:"failure_kind,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// ApplyQualification copies a validated qualification onto the lead and
// marks it analyzed.
func (l *Lead) ApplyQualification(q Qualification) {
	score := q.LeadScore
	l.Score = &score
	l.CompanyName = q.CompanyName
	l.Industry = q.Industry
	l.ScoreRationale = q.ScoreRationale
	l.KeyInsights = q.KeyInsights
	l.FitAnalysis = q.FitAnalysis
	l.EmailDraft = q.PersonalizedEmail
	l.SMSDraft = q.SMSDraft
	l.RecommendedAction = q.RecommendedAction
	l.Status = LeadStatusAnalyzed
	l.FailureKind = FailureNone
	l.Error = ""
}

// IsQualified reports whether the lead meets the qualification threshold.
func (l *Lead) IsQualified() bool {
	return l.Score != nil && *l.Score >= QualifiedScore
}

// LeadID derives a stable identifier from the source URL.
func LeadID(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimRight(strings.TrimSpace(url), "/")))
	return hex.EncodeToString(sum[:])[:12]
}
