package agent

import (
	"context"

	"github.com/jonathan/career-pilot/internal/types"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of analyzing one job in a batch
type BatchResult struct {
	Job      types.JobListing
	Analysis *types.JobAnalysis
	Err      error
}

// AnalyzeMany analyzes jobs concurrently with at most limit calls in flight.
// Per-job failures are reported in the result; results keep the input order.
func AnalyzeMany(ctx context.Context, a Agent, profile types.Profile, jobs []types.JobListing, limit int) []BatchResult {
	results := make([]BatchResult, len(jobs))
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range jobs {
		results[i].Job = job
		g.Go(func() error {
			analysis, err := a.AnalyzeJob(gctx, profile, job)
			results[i].Analysis = analysis
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}
