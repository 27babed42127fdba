package extract

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/match"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// RuleExtractor is the deterministic fallback when no model is
// configured: it scans the description for catalog labels. It proposes
// mentions only; linking them back to ids stays the pipeline's job.
type RuleExtractor struct {
	labels []labelPattern
}

type labelPattern struct {
	entityType model.EntityType
	label      string
	normalized string
}

// NewRuleExtractor indexes the catalog labels to scan for. Entries with
// labels that normalize to nothing are skipped.
func NewRuleExtractor(entries []model.CatalogEntry) *RuleExtractor {
	e := &RuleExtractor{}
	seen := make(map[string]bool)
	for _, entry := range entries {
		norm := match.Normalize(entry.Label)
		if norm == "" {
			continue
		}
		key := string(entry.EntityType) + "\x00" + norm
		if seen[key] {
			continue
		}
		seen[key] = true
		e.labels = append(e.labels, labelPattern{
			entityType: entry.EntityType,
			label:      entry.Label,
			normalized: norm,
		})
	}
	return e
}

// Extract returns one candidate per catalog label whose normalized form
// appears in the normalized description, in catalog order. Deterministic
// for a fixed description and catalog.
func (e *RuleExtractor) Extract(_ context.Context, description string) ([]model.CandidateReference, error) {
	if strings.TrimSpace(description) == "" {
		return nil, eris.New("extract: empty description")
	}

	text := " " + match.Normalize(description) + " "
	var out []model.CandidateReference
	for _, lp := range e.labels {
		if strings.Contains(text, " "+lp.normalized+" ") {
			out = append(out, model.CandidateReference{
				EntityType: lp.entityType,
				Label:      lp.label,
			})
		}
	}
	return sanitize(out), nil
}
