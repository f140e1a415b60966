// Package mongo serves families from a MongoDB collection.
//
// Each family is one document whose _id is the family id; the document
// layout follows the bson tags on family.Family.
package mongo

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Defaults for Config.
const (
	DefaultDatabase   = "kintree"
	DefaultCollection = "families"
	DefaultTimeout    = 10 * time.Second
)

// Config selects the database and collection.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // connect and ping timeout
}

// Store reads families from a collection.
type Store struct {
	client *mongo.Client // nil when built from a collection
	coll   *mongo.Collection
}

// Open connects to MongoDB and pings the server.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := errors.ValidateURL(cfg.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// New wraps an existing collection. Close does not disconnect its client.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Family loads the document with _id == id.
func (s *Store) Family(ctx context.Context, id string) (*family.Family, error) {
	var f family.Family
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeFamilyNotFound, "family %q not found or access denied", id)
	}
	if err != nil {
		return nil, wrap(err, "find family %s", id)
	}
	return &f, nil
}

// Families loads every family ordered by id.
func (s *Store) Families(ctx context.Context) ([]*family.Family, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrap(err, "list families")
	}
	var out []*family.Family
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrap(err, "decode families")
	}
	return out, nil
}

// Put upserts f.
func (s *Store) Put(ctx context.Context, f *family.Family) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": f.ID}, f, options.Replace().SetUpsert(true))
	if err != nil {
		return wrap(err, "put family %s", f.ID)
	}
	return nil
}

// Close disconnects the client opened by Open.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func wrap(err error, format string, args ...any) error {
	code := errors.ErrCodeInternal
	switch {
	case mongo.IsTimeout(err), stderrors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeTimeout
	case mongo.IsNetworkError(err):
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, err, "%s", fmt.Sprintf(format, args...))
}
