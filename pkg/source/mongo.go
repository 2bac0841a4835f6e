package source

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/schematic/pkg/collection"
)

// Finder is the subset of *mongo.Collection the Mongo source needs.
type Finder interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// mongoDoc mirrors a collections_meta row.
type mongoDoc struct {
	ID          string `bson:"id"`
	Name        string `bson:"name"`
	DisplayName string `bson:"display_name,omitempty"`
	SchemaJSON  string `bson:"schema_json"`
}

// Mongo reads collections from a document collection shaped like the SQL
// table.
type Mongo struct {
	coll   Finder
	name   string
	client *mongo.Client
}

// NewMongo wraps an existing collection handle. name is used for Name().
func NewMongo(coll Finder, name string) *Mongo {
	return &Mongo{coll: coll, name: name}
}

// OpenMongo connects to uri and uses database.collection. An empty
// collection name means DefaultTable.
func OpenMongo(ctx context.Context, uri, database, coll string) (*Mongo, error) {
	if coll == "" {
		coll = DefaultTable
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	m := NewMongo(client.Database(database).Collection(coll), database+"."+coll)
	m.client = client
	return m, nil
}

// Name returns "mongo:<database>.<collection>".
func (m *Mongo) Name() string { return "mongo:" + m.name }

// Close disconnects a client opened by OpenMongo.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// List returns all documents sorted by name.
func (m *Mongo) List(ctx context.Context) ([]collection.Collection, error) {
	cur, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.name, err)
	}
	defer cur.Close(ctx)

	var out []collection.Collection
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.name, err)
		}
		c, err := decodeSchema(doc.ID, doc.Name, doc.DisplayName, []byte(doc.SchemaJSON))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", m.name, err)
	}
	return out, nil
}
