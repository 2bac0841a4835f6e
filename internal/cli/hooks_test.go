package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/schematic/pkg/observability"
)

func TestEnableDebugHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	c.EnableDebugHooks()

	ctx := context.Background()
	observability.Pipeline().OnFetchComplete(ctx, "file:schema.json", 2, 3*time.Millisecond, nil)
	observability.Cache().OnCacheMiss(ctx, "collections")
	observability.HTTP().OnError(ctx, "GET", "console.example.com", "/v1/collections", errors.New("refused"))

	out := buf.String()
	for _, want := range []string{"source=file:schema.json", "collections=2", "cache miss", "refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}
}
