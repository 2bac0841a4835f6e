package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/schematic/pkg/collection"
)

// DefaultTable is the table the console persists collection schemas in.
const DefaultTable = "collections_meta"

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// Querier is the subset of *pgxpool.Pool the Postgres source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads collections from a table with id, name, display_name and
// schema_json columns. schema_json holds the protobuf-JSON collection.
type Postgres struct {
	db    Querier
	table string
	pool  *pgxpool.Pool
}

// NewPostgres wraps an existing connection. An empty table means
// DefaultTable.
func NewPostgres(db Querier, table string) *Postgres {
	if table == "" {
		table = DefaultTable
	}
	return &Postgres{db: db, table: table}
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := NewPostgres(pool, table)
	p.pool = pool
	return p, nil
}

// Name returns "postgres:<table>".
func (p *Postgres) Name() string { return "postgres:" + p.table }

// Close releases the pool opened by OpenPostgres.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) query() string {
	return fmt.Sprintf("SELECT id, name, COALESCE(display_name, ''), schema_json FROM %s ORDER BY name",
		pgx.Identifier{p.table}.Sanitize())
}

// List returns all rows ordered by name.
func (p *Postgres) List(ctx context.Context) ([]collection.Collection, error) {
	rows, err := p.db.Query(ctx, p.query())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return nil, fmt.Errorf("%w: table %s", ErrNotFound, p.table)
		}
		return nil, fmt.Errorf("query %s: %w", p.table, err)
	}
	defer rows.Close()

	var out []collection.Collection
	for rows.Next() {
		var id, name, displayName string
		var schema []byte
		if err := rows.Scan(&id, &name, &displayName, &schema); err != nil {
			return nil, fmt.Errorf("scan %s: %w", p.table, err)
		}
		c, err := decodeSchema(id, name, displayName, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p.table, err)
	}
	return out, nil
}

// decodeSchema parses a stored protobuf-JSON collection. The row's columns
// fill whatever the document leaves empty.
func decodeSchema(id, name, displayName string, schema []byte) (collection.Collection, error) {
	var c collection.Collection
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &c); err != nil {
			return collection.Collection{}, fmt.Errorf("collection %s: decode schema_json: %w", id, err)
		}
	}
	if c.ID == "" {
		c.ID = id
	}
	if c.Name == "" {
		c.Name = name
	}
	if c.DisplayName == "" {
		c.DisplayName = displayName
	}
	return c, nil
}
