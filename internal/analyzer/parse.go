package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// parseQualification turns raw model output into a validated
// Qualification. Markdown fences and surrounding prose are stripped
// first; if strict parsing still fails, the repairer gets one shot.
func parseQualification(raw string) (*model.Qualification, error) {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return nil, eris.New("analyzer: response contains no JSON object")
	}

	var q model.Qualification
	if err := json.Unmarshal([]byte(cleaned), &q); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return nil, eris.Wrap(err, "analyzer: parse qualification")
		}
		if err := json.Unmarshal([]byte(repaired), &q); err != nil {
			return nil, eris.Wrap(err, "analyzer: parse repaired qualification")
		}
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// cleanJSON strips markdown fences and extracts the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
