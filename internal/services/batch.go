package services

import (
	"context"

	"github.com/desertthunder/spotsearch/internal/results"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is used when Batch is given a non-positive concurrency.
const DefaultBatchConcurrency = 4

// BatchResult is the outcome of one input of [Client.Batch].
type BatchResult struct {
	Input   string
	Results *results.ResultSet
	Err     error
}

// Batch searches every input with at most concurrency requests in flight. Results keep input order.
//
// A failing input does not stop the others; its error is reported in its [BatchResult]. The returned error is
// only set when ctx ends before every input was attempted.
func (c *Client) Batch(ctx context.Context, inputs []string, opts SearchOptions, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	out := make([]BatchResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, input := range inputs {
		if err := gctx.Err(); err != nil {
			out[i] = BatchResult{Input: input, Err: err}
			continue
		}
		g.Go(func() error {
			rs, err := c.Search(gctx, input, opts)
			out[i] = BatchResult{Input: input, Results: rs, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return out, ctx.Err()
}
