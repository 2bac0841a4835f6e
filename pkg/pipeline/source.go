package pipeline

import (
	"context"
	"errors"

	errs "github.com/matzehuels/schematic/pkg/errors"
	"github.com/matzehuels/schematic/pkg/httputil"
	"github.com/matzehuels/schematic/pkg/source"
)

// Source kinds.
const (
	SourceFile     = "file"
	SourceConnect  = "connect"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

// SourceSpec describes where collections come from. Which fields apply
// depends on Kind.
type SourceSpec struct {
	Kind     string `json:"kind" toml:"kind"`
	Path     string `json:"path,omitempty" toml:"path"`
	URL      string `json:"url,omitempty" toml:"url"`
	Token    string `json:"-" toml:"token"`
	DSN      string `json:"-" toml:"dsn"`
	Database string `json:"database,omitempty" toml:"database"`
	Table    string `json:"table,omitempty" toml:"table"`
}

// Validate checks that the fields Kind needs are present.
func (s SourceSpec) Validate() error {
	switch s.Kind {
	case SourceFile:
		if s.Path == "" {
			return errs.New(errs.ErrCodeInvalidSource, "file source needs a path")
		}
	case SourceConnect:
		return errs.ValidateURL(s.URL)
	case SourcePostgres:
		if s.DSN == "" {
			return errs.New(errs.ErrCodeInvalidSource, "postgres source needs a dsn")
		}
	case SourceMongo:
		if s.DSN == "" || s.Database == "" {
			return errs.New(errs.ErrCodeInvalidSource, "mongo source needs a dsn and database")
		}
	case "":
		return errs.New(errs.ErrCodeInvalidSource, "source kind is required")
	default:
		return errs.New(errs.ErrCodeInvalidSource, "unknown source kind %q (must be one of: file, connect, postgres, mongo)", s.Kind)
	}
	return nil
}

// OpenSource connects every spec and returns a single source. Several specs
// are merged with [source.Multi]. The returned close function releases
// database connections and is never nil.
func OpenSource(ctx context.Context, specs []SourceSpec) (source.Source, func(), error) {
	if len(specs) == 0 {
		return nil, func() {}, errs.New(errs.ErrCodeInvalidSource, "no source configured")
	}

	var (
		sources []source.Source
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, spec := range specs {
		s, closer, err := openOne(ctx, spec)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sources = append(sources, s)
		if closer != nil {
			closers = append(closers, closer)
		}
	}

	if len(sources) == 1 {
		return sources[0], closeAll, nil
	}
	return source.NewMulti(sources...), closeAll, nil
}

func openOne(ctx context.Context, spec SourceSpec) (source.Source, func(), error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	switch spec.Kind {
	case SourceConnect:
		return source.NewConnect(spec.URL, spec.Token), nil, nil
	case SourcePostgres:
		p, err := source.OpenPostgres(ctx, spec.DSN, spec.Table)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ErrCodeNetwork, err, "open postgres source")
		}
		return p, p.Close, nil
	case SourceMongo:
		m, err := source.OpenMongo(ctx, spec.DSN, spec.Database, spec.Table)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ErrCodeNetwork, err, "open mongo source")
		}
		return m, func() { _ = m.Close(context.Background()) }, nil
	default:
		return source.NewFile(spec.Path), nil, nil
	}
}

// classify attaches an error code to a fetch failure.
func classify(name string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrCodeTimeout, err, "fetch %s", name)
	case errors.Is(err, source.ErrNotFound):
		return errs.Wrap(errs.ErrCodeNotFound, err, "fetch %s", name)
	case errors.Is(err, source.ErrUnauthorized):
		return errs.Wrap(errs.ErrCodeUnauthorized, err, "fetch %s", name)
	case errors.Is(err, httputil.ErrNetwork):
		return errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", name)
	case errs.GetCode(err) != "":
		return err
	default:
		return errs.Wrap(errs.ErrCodeInvalidSource, err, "fetch %s", name)
	}
}
