// Package inventory lists the items of several kinds of one backend concurrently.
package inventory

import (
	"context"
	"fmt"
	"strings"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"golang.org/x/sync/errgroup"
)

// Result represents the items listed for one kind
type Result struct {
	Kind  cr.Kind
	Items []cr.Item
	Error error
}

// Options configures the behavior of the Inventory
type Options struct {
	ConcurrentWorkers int
	StopOnError       bool
}

// DefaultOptions returns the default Inventory options
func DefaultOptions() *Options {
	return &Options{
		ConcurrentWorkers: 5,
		StopOnError:       false,
	}
}

// Source builds the manager of a kind for a connector
type Source interface {
	Create(kind cr.Kind, conn cr.Connector) (cr.Manager[cr.Item], error)
}

// Inventory lists every item of the requested kinds
type Inventory struct {
	Source  Source
	Options *Options
}

// New creates a new Inventory building its managers from source
func New(source Source, options *Options) *Inventory {
	if options == nil {
		options = DefaultOptions()
	}

	return &Inventory{
		Source:  source,
		Options: options,
	}
}

// Run lists the kinds on the backend of conn. Results keep the order of kinds.
// With StopOnError the first failure cancels the remaining listings and is returned.
func (inv *Inventory) Run(ctx context.Context, conn cr.Connector, kinds []cr.Kind) ([]Result, error) {
	if len(kinds) == 0 {
		kinds = cr.Kinds
	}

	results := make([]Result, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	if inv.Options.ConcurrentWorkers > 0 {
		g.SetLimit(inv.Options.ConcurrentWorkers)
	}

	for i, kind := range kinds {
		g.Go(func() error {
			results[i] = inv.list(gctx, conn, kind)
			if inv.Options.StopOnError {
				return results[i].Error
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (inv *Inventory) list(ctx context.Context, conn cr.Connector, kind cr.Kind) Result {
	result := Result{Kind: kind}
	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	m, err := inv.Source.Create(kind, conn)
	if err != nil {
		result.Error = fmt.Errorf("error building %s manager: %w", kind, err)
		return result
	}

	items, err := m.GetAll(ctx)
	if err != nil {
		result.Error = fmt.Errorf("error listing %s items: %w", kind, err)
		return result
	}
	result.Items = items
	return result
}

// Summary generates a summary report of the inventory results
func Summary(results []Result) string {
	var (
		b              strings.Builder
		totalItems     int
		kindsWithError int
	)

	for _, result := range results {
		if result.Error != nil {
			kindsWithError++
			continue
		}
		totalItems += len(result.Items)
	}

	fmt.Fprintf(&b, "Summary:\n  Listed %d kinds\n  Found %d items\n", len(results), totalItems)
	for _, result := range results {
		if result.Error == nil {
			fmt.Fprintf(&b, "    %s: %d\n", result.Kind, len(result.Items))
		}
	}
	fmt.Fprintf(&b, "  Errors: %d kinds had errors\n", kindsWithError)
	return b.String()
}
