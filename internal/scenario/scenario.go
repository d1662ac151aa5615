// package scenario seeds the query cache with fixed correction pages for offline previews
package scenario

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/query"
	"github.com/desertthunder/correx/internal/shared"
)

//go:embed scenarios.yaml
var fixtures []byte

// DefaultKey is the scenario used when none is named.
const DefaultKey = "pending_update"

// Scenario is a complete set of query results for one correction page.
type Scenario struct {
	Key       string
	Label     string
	Caption   string
	Detail    *models.Correction
	Diff      *models.CorrectionDiff
	Revisions []models.CorrectionRevisionSummary
	History   []models.CorrectionHistoryItem
	Compare   map[int]*models.CorrectionDiff // keyed by the compare (base) correction id
}

// CompareIDs returns the seeded compare targets in ascending order.
func (s Scenario) CompareIDs() []int {
	ids := make([]int, 0, len(s.Compare))
	for id := range s.Compare {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Seed writes every result of the scenario into c. No producer runs for a seeded key.
func (s Scenario) Seed(c *query.Cache) error {
	id := s.Detail.ID
	seeds := []struct {
		key   query.Key
		value any
	}{
		{query.DetailKey(id), s.Detail},
		{query.DiffKey(id), s.Diff},
		{query.RevisionsKey(id), s.Revisions},
		{query.HistoryKey(s.Detail.EntityType, s.Detail.EntityID), s.History},
	}
	for _, seed := range seeds {
		if err := c.Set(seed.key, seed.value); err != nil {
			return fmt.Errorf("failed to seed %s: %w", seed.key, err)
		}
	}
	for _, base := range s.CompareIDs() {
		if err := query.Seed(c, query.CompareKey(base, id), s.Compare[base]); err != nil {
			return fmt.Errorf("failed to seed compare %d: %w", base, err)
		}
	}
	return nil
}

type userDoc struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

func (u userDoc) model() models.CorrectionUserSummary {
	return models.CorrectionUserSummary{ID: u.ID, Name: u.Name}
}

type correctionDoc struct {
	ID         int        `yaml:"id"`
	Status     string     `yaml:"status"`
	Type       string     `yaml:"type"`
	EntityType string     `yaml:"entity_type"`
	EntityID   int        `yaml:"entity_id"`
	CreatedAt  time.Time  `yaml:"created_at"`
	HandledAt  *time.Time `yaml:"handled_at"`
}

type historyDoc struct {
	ID          int        `yaml:"id"`
	Type        string     `yaml:"type"`
	CreatedAt   time.Time  `yaml:"created_at"`
	HandledAt   *time.Time `yaml:"handled_at"`
	Description string     `yaml:"description"`
	Author      userDoc    `yaml:"author"`
}

type revisionDoc struct {
	EntityHistoryID int     `yaml:"entity_history_id"`
	Author          userDoc `yaml:"author"`
	Description     string  `yaml:"description"`
}

type changeDoc struct {
	Path   string  `yaml:"path"`
	Before *string `yaml:"before"`
	After  *string `yaml:"after"`
}

type diffDoc struct {
	EntityID           int         `yaml:"entity_id"`
	EntityType         string      `yaml:"entity_type"`
	BaseCorrectionID   *int        `yaml:"base_correction_id"`
	BaseHistoryID      *int        `yaml:"base_history_id"`
	TargetCorrectionID int         `yaml:"target_correction_id"`
	TargetHistoryID    int         `yaml:"target_history_id"`
	Changes            []changeDoc `yaml:"changes"`
}

func (d diffDoc) model() *models.CorrectionDiff {
	changes := make([]models.CorrectionDiffEntry, len(d.Changes))
	for i, c := range d.Changes {
		changes[i] = models.CorrectionDiffEntry{Path: c.Path, Before: c.Before, After: c.After}
	}
	return &models.CorrectionDiff{
		EntityID:           d.EntityID,
		EntityType:         models.EntityType(d.EntityType),
		BaseCorrectionID:   d.BaseCorrectionID,
		BaseHistoryID:      d.BaseHistoryID,
		TargetCorrectionID: d.TargetCorrectionID,
		TargetHistoryID:    d.TargetHistoryID,
		Changes:            changes,
	}
}

type scenarioDoc struct {
	Key       string          `yaml:"key"`
	Label     string          `yaml:"label"`
	Caption   string          `yaml:"caption"`
	Detail    correctionDoc   `yaml:"detail"`
	Diff      diffDoc         `yaml:"diff"`
	Revisions []revisionDoc   `yaml:"revisions"`
	History   []historyDoc    `yaml:"history"`
	Compare   map[int]diffDoc `yaml:"compare"`
}

func (d scenarioDoc) model() (Scenario, error) {
	s := Scenario{
		Key:     d.Key,
		Label:   d.Label,
		Caption: d.Caption,
		Detail: &models.Correction{
			ID:         d.Detail.ID,
			Status:     models.CorrectionStatus(d.Detail.Status),
			Type:       models.CorrectionType(d.Detail.Type),
			EntityType: models.EntityType(d.Detail.EntityType),
			EntityID:   d.Detail.EntityID,
			CreatedAt:  d.Detail.CreatedAt,
			HandledAt:  d.Detail.HandledAt,
		},
		Diff:      d.Diff.model(),
		Revisions: make([]models.CorrectionRevisionSummary, len(d.Revisions)),
		History:   make([]models.CorrectionHistoryItem, len(d.History)),
		Compare:   make(map[int]*models.CorrectionDiff, len(d.Compare)),
	}
	for i, r := range d.Revisions {
		s.Revisions[i] = models.CorrectionRevisionSummary{EntityHistoryID: r.EntityHistoryID, Author: r.Author.model(), Description: r.Description}
	}
	for i, h := range d.History {
		s.History[i] = models.CorrectionHistoryItem{
			ID:          h.ID,
			Type:        models.CorrectionType(h.Type),
			CreatedAt:   h.CreatedAt,
			HandledAt:   h.HandledAt,
			Description: h.Description,
			Author:      h.Author.model(),
		}
	}
	for base, diff := range d.Compare {
		s.Compare[base] = diff.model()
	}

	if err := s.validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", d.Key, err)
	}
	return s, nil
}

func (s Scenario) validate() error {
	if err := s.Detail.Validate(); err != nil {
		return err
	}
	if err := s.Diff.Validate(); err != nil {
		return err
	}
	for _, r := range s.Revisions {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, h := range s.History {
		if err := h.Validate(); err != nil {
			return err
		}
	}
	for _, d := range s.Compare {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

var (
	loadOnce  sync.Once
	scenarios []Scenario
	loadErr   error
)

// Parse decodes scenarios from YAML.
func Parse(data []byte) ([]Scenario, error) {
	var doc struct {
		Scenarios []scenarioDoc `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse scenarios: %w", shared.ErrInvalidConfig, err)
	}

	out := make([]Scenario, 0, len(doc.Scenarios))
	for _, d := range doc.Scenarios {
		s, err := d.model()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// All returns the embedded scenarios in their declared order.
func All() ([]Scenario, error) {
	loadOnce.Do(func() {
		scenarios, loadErr = Parse(fixtures)
	})
	return scenarios, loadErr
}

// Keys lists the embedded scenario keys.
func Keys() []string {
	all, err := All()
	if err != nil {
		return nil
	}
	keys := make([]string, len(all))
	for i, s := range all {
		keys[i] = s.Key
	}
	return keys
}

// Find returns the scenario named key. An empty key selects [DefaultKey].
func Find(key string) (Scenario, error) {
	if key == "" {
		key = DefaultKey
	}
	all, err := All()
	if err != nil {
		return Scenario{}, err
	}
	i := slices.IndexFunc(all, func(s Scenario) bool { return s.Key == key })
	if i < 0 {
		return Scenario{}, fmt.Errorf("%w: unknown scenario %q (%v)", shared.ErrInvalidArgument, key, Keys())
	}
	return all[i], nil
}
