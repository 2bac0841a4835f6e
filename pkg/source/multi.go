package source

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/schematic/pkg/collection"
)

// Multi lists several sources concurrently and concatenates the results in
// source order. A collection ID seen in an earlier source wins.
type Multi struct {
	Sources []Source
}

// NewMulti combines sources.
func NewMulti(sources ...Source) *Multi { return &Multi{Sources: sources} }

// Name joins the member names with "+".
func (m *Multi) Name() string {
	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

// List fails if any member fails; the other calls are cancelled.
func (m *Multi) List(ctx context.Context) ([]collection.Collection, error) {
	results := make([][]collection.Collection, len(m.Sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range m.Sources {
		g.Go(func() error {
			cs, err := s.List(ctx)
			if err != nil {
				return err
			}
			results[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []collection.Collection
	for _, cs := range results {
		all = append(all, cs...)
	}
	return collection.Dedupe(all), nil
}
