package collector

import (
	"context"

	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// Collector gathers the inventory records of one service in one region.
type Collector interface {
	// Service returns the service name the records are tabled under.
	Service() string

	// Collect retrieves the service's resources in the given region.
	Collect(ctx context.Context, region string, opts Options) ([]inventory.Record, error)
}

// Options carries the run-wide collection settings.
type Options struct {
	// TagFilters restricts collection to resources carrying all the
	// given tags, for the collectors that support tag filtering.
	TagFilters map[string]string
}
