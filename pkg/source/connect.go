package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/schematic/pkg/buildinfo"
	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/httputil"
)

// ListCollectionsPath is the Connect RPC route of the collection service.
const ListCollectionsPath = "/dev.cloudeko.kama.collection.v1.CollectionService/ListCollections"

// Connect lists collections from a running console over its Connect JSON
// protocol.
type Connect struct {
	BaseURL string
	client  *httputil.Client
}

// NewConnect creates a source for the console at baseURL. token may be
// empty for unauthenticated development servers.
func NewConnect(baseURL, token string, opts ...httputil.ClientOption) *Connect {
	opts = append([]httputil.ClientOption{
		httputil.WithHeader("User-Agent", buildinfo.UserAgent()),
		httputil.WithBearerToken(token),
	}, opts...)
	return &Connect{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  httputil.NewClient(opts...),
	}
}

// Name returns "connect:<base url>".
func (c *Connect) Name() string { return "connect:" + c.BaseURL }

// List calls ListCollections with an empty request.
func (c *Connect) List(ctx context.Context) ([]collection.Collection, error) {
	var resp collection.List
	err := c.client.PostJSON(ctx, c.BaseURL+ListCollectionsPath, struct{}{}, &resp)
	switch {
	case errors.Is(err, httputil.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c.BaseURL)
	case errors.Is(err, httputil.ErrUnauthorized):
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case err != nil:
		return nil, fmt.Errorf("list collections from %s: %w", c.BaseURL, err)
	}
	return resp.Collections, nil
}
