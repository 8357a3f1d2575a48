// Package agg collects paginated API listings and fans out nested listings concurrently.
package agg

import (
	"context"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/gitlab"
	"github.com/huangsam/glexport/internal/logger"
	"github.com/huangsam/glexport/schema"
	"golang.org/x/sync/errgroup"
)

// PageFunc fetches one page of a collection. Page numbers start at 1.
type PageFunc[T any] func(ctx context.Context, page int) (schema.Page[T], error)

// FetchFunc fetches the page behind a request URL, usually a contract.APIClient method.
type FetchFunc[T any] func(ctx context.Context, url string) (schema.Page[T], error)

// Policy tunes how CollectPages treats the first page.
type Policy struct {
	// Endpoint names the collection in errors and logs.
	Endpoint string

	// ZeroPagesIsError fails the collection when the API reports zero pages.
	ZeroPagesIsError bool
}

// EndpointPages adapts a URL fetcher to a PageFunc for one list endpoint.
func EndpointPages[T any](fetch FetchFunc[T], endpoint string, spec gitlab.FilterSpec, in gitlab.QueryInputs) PageFunc[T] {
	return func(ctx context.Context, page int) (schema.Page[T], error) {
		return fetch(ctx, gitlab.BuildQuery(endpoint, spec, page, in).URL)
	}
}

// pageSlot is one scheduled unit of a collection: either the already
// resolved first page or a page number still to be fetched.
type pageSlot[T any] struct {
	number   int
	resolved *schema.Page[T]
}

func (s pageSlot[T]) load(ctx context.Context, fetch PageFunc[T]) (schema.Page[T], error) {
	if s.resolved != nil {
		return *s.resolved, nil
	}
	return fetch(ctx, s.number)
}

// CollectPages fetches page 1, then pages 2..N concurrently, and returns
// every record in page order. The first failing page fails the whole
// collection and no partial result is returned.
func CollectPages[T any](ctx context.Context, fetch PageFunc[T], policy Policy) ([]T, error) {
	log := logger.Named("agg")

	first, err := fetch(ctx, 1)
	if err != nil {
		return nil, err
	}

	total := first.TotalPages
	if !first.HasTotal {
		log.Debug().Str("endpoint", policy.Endpoint).Msg("missing total pages header, assuming a single page")
		total = 1
	}
	if policy.ZeroPagesIsError && first.HasTotal && total == 0 {
		return nil, &contract.FetchError{URL: policy.Endpoint, Err: contract.ErrProjectNotFound}
	}
	if len(first.Items) == 0 {
		return []T{}, nil
	}
	if total <= 1 {
		return first.Items, nil
	}

	slots := make([]pageSlot[T], total)
	slots[0] = pageSlot[T]{number: 1, resolved: &first}
	for i := 1; i < total; i++ {
		slots[i] = pageSlot[T]{number: i + 1}
	}

	results := make([][]T, total)
	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		g.Go(func() error {
			page, err := slot.load(gctx, fetch)
			if err != nil {
				return err
			}
			results[i] = page.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Str("endpoint", policy.Endpoint).Int("pages", total).Msg("collection complete")
	return flatten(results), nil
}

func flatten[T any](parts [][]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
