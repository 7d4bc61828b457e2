package router

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// PrefetchResult is the outcome of loading one template.
type PrefetchResult struct {
	Template string
	Size     int
	Err      error
}

// Prefetch loads every template of the table, the not-found view included,
// with at most limit loads in flight. Individual failures are reported per
// template and do not stop the others; the returned error is only set when
// ctx ends first.
func Prefetch(ctx context.Context, loader TemplateLoader, table *RouteTable, limit int) ([]PrefetchResult, error) {
	seen := map[string]struct{}{table.NotFound().Template: {}}
	templates := []string{table.NotFound().Template}
	for _, r := range table.Routes() {
		if _, ok := seen[r.Template]; ok {
			continue
		}
		seen[r.Template] = struct{}{}
		templates = append(templates, r.Template)
	}

	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	results := make([]PrefetchResult, 0, len(templates))
	for _, tpl := range templates {
		tpl := tpl
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			markup, err := loader.Load(gctx, tpl)
			mu.Lock()
			results = append(results, PrefetchResult{Template: tpl, Size: len(markup), Err: err})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Template < results[j].Template })
	return results, nil
}
