package collector

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// defaultWorkers bounds how many regions are scanned at once.
const defaultWorkers = 2

// Runner fans collection out across regions with a small fixed worker
// pool and accumulates the results behind a mutex. Tables are handed
// back only after every region task has finished.
type Runner struct {
	collectors []Collector
	workers    int
}

// NewRunner returns a runner over the given collectors.
func NewRunner(collectors []Collector) *Runner {
	return &Runner{collectors: collectors, workers: defaultWorkers}
}

// Run collects every service in every region. A failing collector is
// logged and skipped so one service cannot abort the run; only context
// cancellation stops it.
func (r *Runner) Run(ctx context.Context, regions []string, opts Options) (map[string]inventory.Table, error) {
	var mu sync.Mutex
	byRegion := make(map[string]map[string][]inventory.Record)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, region := range regions {
		region := region // per-iteration copy; module targets go < 1.22
		g.Go(func() error {
			slog.Info("collecting resources", "region", region)
			collected := make(map[string][]inventory.Record)
			for _, c := range r.collectors {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				records, err := c.Collect(ctx, region, opts)
				if err != nil {
					slog.Error("collection failed",
						"service", c.Service(), "region", region, "error", err)
					continue
				}
				if len(records) == 0 {
					slog.Info("no resources found", "service", c.Service(), "region", region)
					continue
				}
				slog.Info("found resources",
					"service", c.Service(), "region", region, "count", len(records))
				collected[c.Service()] = records
			}
			mu.Lock()
			byRegion[region] = collected
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in declared region and collector order so identical runs
	// produce identical tables regardless of worker scheduling.
	tables := make(map[string]inventory.Table)
	for _, region := range regions {
		for _, c := range r.collectors {
			if records := byRegion[region][c.Service()]; len(records) > 0 {
				tables[c.Service()] = append(tables[c.Service()], records...)
			}
		}
	}
	return tables, nil
}
