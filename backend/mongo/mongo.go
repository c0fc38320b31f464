// Package mongo adapts a MongoDB collection to the backend contract.
//
// Entries are stored one document per key:
//
//	{_id: <key>, value: <binary payload>, expires_at: <time, optional>}
//
// Expiry is enforced twice: a TTL index on expires_at lets the server reap
// entries (with its usual sweep lag), and reads filter expired documents
// client-side so a hit is never stale.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

var (
	ErrNoURL       = errors.New("mongo backend: url is required")
	ErrNoNamespace = errors.New("mongo backend: db_name and collection_name are required")
)

type Config struct {
	URL        string
	Database   string
	Collection string

	// Client, when set, is used instead of dialing URL. The backend then
	// does not own the client and Close will not disconnect it.
	Client *mongo.Client
}

// ConfigFromArguments maps the flat argument namespace onto a Config.
// Recognized names: url, db_name, collection_name.
func ConfigFromArguments(args backend.Arguments) (Config, error) {
	var cfg Config
	cfg.URL, _ = args.String("url")
	if cfg.URL == "" {
		return Config{}, ErrNoURL
	}
	cfg.Database, _ = args.String("db_name")
	cfg.Collection, _ = args.String("collection_name")
	if cfg.Database == "" || cfg.Collection == "" {
		return Config{}, ErrNoNamespace
	}
	return cfg, nil
}

type record struct {
	ID        string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

type Backend struct {
	coll        *mongo.Collection
	client      *mongo.Client
	closeClient bool
}

var _ backend.Backend = (*Backend)(nil)

func New(args backend.Arguments) (backend.Backend, error) {
	cfg, err := ConfigFromArguments(args)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*Backend, error) {
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, ErrNoNamespace
	}
	client := cfg.Client
	closeClient := false
	if client == nil {
		if cfg.URL == "" {
			return nil, ErrNoURL
		}
		var err error
		client, err = mongo.Connect(options.Client().ApplyURI(cfg.URL))
		if err != nil {
			return nil, err
		}
		closeClient = true
	}
	b := &Backend{
		coll:        client.Database(cfg.Database).Collection(cfg.Collection),
		client:      client,
		closeClient: closeClient,
	}
	b.ensureTTLIndex()
	return b, nil
}

// ensureTTLIndex asks the server to reap expired documents. Best effort: a
// user without index privileges still gets correct reads via the
// client-side expiry filter.
func (b *Backend) ensureTTLIndex() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = b.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
}

// liveFilter matches key(s) that are either unexpired or have no expiry.
func liveFilter(idFilter bson.M) bson.M {
	idFilter["$or"] = bson.A{
		bson.M{"expires_at": bson.M{"$gt": time.Now()}},
		bson.M{"expires_at": bson.M{"$exists": false}},
	}
	return idFilter
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec record
	err := b.coll.FindOne(ctx, liveFilter(bson.M{"_id": key})).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

func (b *Backend) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	cur, err := b.coll.Find(ctx, liveFilter(bson.M{"_id": bson.M{"$in": keys}}))
	if err != nil {
		return nil, err
	}
	var recs []record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(recs))
	for _, rec := range recs {
		out[rec.ID] = rec.Value
	}
	return out, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	rec := record{ID: key, Value: value}
	if ttl > 0 {
		rec.ExpiresAt = time.Now().Add(ttl)
	}
	_, err := b.coll.ReplaceOne(ctx, bson.M{"_id": key}, rec,
		options.Replace().SetUpsert(true))
	return err
}

func (b *Backend) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	models := make([]mongo.WriteModel, 0, len(items))
	for k, v := range items {
		rec := record{ID: k, Value: v, ExpiresAt: expiresAt}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": k}).
			SetReplacement(rec).
			SetUpsert(true))
	}
	_, err := b.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (b *Backend) DeleteMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := b.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	return err
}

// Close disconnects the client only when this backend dialed it.
func (b *Backend) Close(ctx context.Context) error {
	if b.closeClient {
		return b.client.Disconnect(ctx)
	}
	return nil
}
