// Package leadstore persists analyzed leads as a single JSON collection
// written atomically, so a crash mid-save never corrupts history.
package leadstore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/atomicfile"
	"github.com/sells-group/leadscout/internal/model"
)

// Store reads and writes the lead collection. A mutex serializes
// writers; the analysis pipeline is sequential but the dashboard server
// is not.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store backed by the given JSON file.
func New(path string) *Store {
	return &Store{path: path}
}

// Filter narrows List results. Zero values leave a dimension open.
type Filter struct {
	MinScore    int
	Status      model.LeadStatus
	OfflineOnly bool
	Limit       int
}

// Load reads the full collection. A missing file is an empty collection.
func (s *Store) Load() ([]model.Lead, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "leadstore: read")
	}
	if len(data) == 0 {
		return nil, nil
	}

	var leads []model.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, eris.Wrap(err, "leadstore: unmarshal")
	}
	return leads, nil
}

// Save records a lead. An existing entry with the same ID is replaced in
// place; when newEntry is set, a disambiguated copy is appended instead
// so earlier analyses of the same URL are kept.
func (s *Store) Save(lead *model.Lead, newEntry bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := s.Load()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	lead.UpdatedAt = now
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}

	idx := indexByID(leads, lead.ID)
	switch {
	case idx < 0:
		leads = append(leads, *lead)
	case newEntry:
		lead.ID = disambiguate(leads, lead.ID)
		lead.CreatedAt = now
		leads = append(leads, *lead)
	default:
		lead.CreatedAt = leads[idx].CreatedAt
		leads[idx] = *lead
	}

	if err := s.write(leads); err != nil {
		return err
	}
	zap.L().Info("leadstore: saved lead",
		zap.String("id", lead.ID),
		zap.String("url", lead.URL),
		zap.String("status", string(lead.Status)))
	return nil
}

// Get returns the lead with the given ID, or nil.
func (s *Store) Get(id string) (*model.Lead, error) {
	leads, err := s.Load()
	if err != nil {
		return nil, err
	}
	if idx := indexByID(leads, id); idx >= 0 {
		lead := leads[idx]
		return &lead, nil
	}
	return nil, nil
}

// Delete removes the lead with the given ID. Deleting an unknown ID is
// an error so callers can report it.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := s.Load()
	if err != nil {
		return err
	}
	idx := indexByID(leads, id)
	if idx < 0 {
		return eris.Errorf("leadstore: lead %s not found", id)
	}
	leads = append(leads[:idx], leads[idx+1:]...)

	if err := s.write(leads); err != nil {
		return err
	}
	zap.L().Info("leadstore: deleted lead", zap.String("id", id))
	return nil
}

// List returns leads matching the filter, newest first.
func (s *Store) List(f Filter) ([]model.Lead, error) {
	leads, err := s.Load()
	if err != nil {
		return nil, err
	}

	var out []model.Lead
	for _, lead := range leads {
		if f.MinScore > 0 && (lead.Score == nil || *lead.Score < f.MinScore) {
			continue
		}
		if f.Status != "" && lead.Status != f.Status {
			continue
		}
		if f.OfflineOnly && !lead.OfflineMode {
			continue
		}
		out = append(out, lead)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Stats summarizes the collection for the dashboard.
type Stats struct {
	Total             int            `json:"total"`
	Qualified         int            `json:"qualified"`
	QualificationRate float64        `json:"qualification_rate"`
	AverageScore      float64        `json:"average_score"`
	MinScore          int            `json:"min_score"`
	MaxScore          int            `json:"max_score"`
	Failed            int            `json:"failed"`
	Industries        map[string]int `json:"industries"`
	TopIndustry       string         `json:"top_industry,omitempty"`
}

// Stats computes collection statistics. Failed analyses count toward
// Total and Failed but not toward score aggregates.
func (s *Store) Stats() (*Stats, error) {
	leads, err := s.Load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Industries: map[string]int{}}
	stats.Total = len(leads)

	var scoreSum, scored int
	for _, lead := range leads {
		if lead.Status != model.LeadStatusAnalyzed {
			stats.Failed++
		}
		if lead.Industry != "" {
			stats.Industries[lead.Industry]++
		}
		if lead.Score == nil {
			continue
		}
		score := *lead.Score
		scoreSum += score
		scored++
		if scored == 1 || score < stats.MinScore {
			stats.MinScore = score
		}
		if score > stats.MaxScore {
			stats.MaxScore = score
		}
		if lead.IsQualified() {
			stats.Qualified++
		}
	}

	if scored > 0 {
		stats.AverageScore = float64(scoreSum) / float64(scored)
		stats.QualificationRate = float64(stats.Qualified) / float64(scored) * 100
	}

	var topCount int
	for industry, count := range stats.Industries {
		if count > topCount || (count == topCount && industry < stats.TopIndustry) {
			stats.TopIndustry = industry
			topCount = count
		}
	}
	return stats, nil
}

func (s *Store) write(leads []model.Lead) error {
	if leads == nil {
		leads = []model.Lead{}
	}
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return eris.Wrap(err, "leadstore: marshal")
	}
	return atomicfile.WriteFile(s.path, data, 0o644)
}

func indexByID(leads []model.Lead, id string) int {
	for i := range leads {
		if leads[i].ID == id {
			return i
		}
	}
	return -1
}

// disambiguate appends the first free "-N" suffix so repeated analyses
// of the same URL coexist as separate entries.
func disambiguate(leads []model.Lead, id string) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if indexByID(leads, candidate) < 0 {
			return candidate
		}
	}
}
