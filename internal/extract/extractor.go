// Package extract turns free-text task descriptions into candidate
// entity references. The resolution pipeline consumes its output as an
// opaque list; anything malformed is dropped at this boundary so the
// pipeline only ever sees validated candidates.
package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// Extractor proposes candidate references for one task description.
type Extractor interface {
	Extract(ctx context.Context, description string) ([]model.CandidateReference, error)
}

// sanitize validates raw extractor output, dropping malformed entries.
// Extraction is an external collaborator; its garbage is logged and
// discarded here, never forwarded to the pipeline.
func sanitize(raw []model.CandidateReference) []model.CandidateReference {
	out := make([]model.CandidateReference, 0, len(raw))
	for _, c := range raw {
		if err := c.Validate(); err != nil {
			zap.L().Warn("extract: dropping malformed candidate",
				zap.String("entity_type", string(c.EntityType)),
				zap.String("label", c.Label),
				zap.Error(err),
			)
			continue
		}
		out = append(out, c)
	}
	return out
}
