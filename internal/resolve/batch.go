package resolve

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// DefaultConcurrency bounds the per-batch resolution workers.
const DefaultConcurrency = 8

// Batch resolves many candidates against one immutable snapshot.
// Candidates are independent and share only read access to the snapshot,
// so they run concurrently; results keep input order. The first contract
// violation aborts the batch.
func (r *Resolver) Batch(ctx context.Context, candidates []model.CandidateReference, snap *Snapshot, concurrency int) ([]model.ResolutionVerdict, error) {
	if snap == nil {
		return nil, eris.New("resolve: nil catalog snapshot")
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	verdicts := make([]model.ResolutionVerdict, len(candidates))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, cand := range candidates {
		g.Go(func() error {
			v, err := r.Resolve(cand, snap)
			if err != nil {
				return eris.Wrapf(err, "resolve: batch candidate %d", i)
			}
			verdicts[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}
