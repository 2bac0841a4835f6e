package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/httputil"
)

func TestConnectList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ListCollectionsPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "schematic/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"collections": [
			{"id": "c1", "name": "collections/users", "fields": {"id": {"identifierType": "UUID", "system": true}}},
			{"id": "c2", "name": "collections/orders", "fields": {"owner": {"referenceType": "collections/users", "required": true}}}
		]}`))
	}))
	defer srv.Close()

	c := NewConnect(srv.URL+"/", "tok", httputil.WithHTTPClient(srv.Client()))
	if c.Name() != "connect:"+srv.URL {
		t.Errorf("Name() = %q", c.Name())
	}
	cs, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("got %d collections", len(cs))
	}
	owner := cs[1].Fields["owner"]
	if owner.Type != collection.TypeReference || owner.Value != "collections/users" || !owner.Required {
		t.Errorf("owner = %+v", owner)
	}
	if !cs[0].Fields["id"].System {
		t.Error("system flag lost")
	}
}

func TestConnectErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, httputil.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewConnect(srv.URL, "", httputil.WithHTTPClient(srv.Client()), httputil.WithRetry(2, time.Millisecond))
			if _, err := c.List(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
