package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Config represents the configuration for the history database.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                         // ConnectionURL is the URL of the database.
	Database        string        `env:"MONGODB_DATABASE" envDefault:"notifyd"`        // Database is the database holding the history collection.
	Collection      string        `env:"MONGODB_COLLECTION" envDefault:"history"`      // Collection is the history collection name.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`     // ConnectTimeout is the timeout for connecting to the database.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`       // MaxPoolSize is the maximum number of connections in the connection pool.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`         // MinPoolSize is the minimum number of connections in the connection pool.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // MaxConnIdleTime is the maximum time that a connection can remain idle in the connection pool.
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`       // RetryWrites specifies whether to retry write operations.
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`        // RetryReads specifies whether to retry read operations.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`        // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`       // RetryInterval is the interval between retry attempts.
}

// Connect establishes a client connection and returns a Mongo storage bound
// to the configured collection. It retries per the config before giving up.
func Connect(ctx context.Context, cfg Config) (*Mongo, error) {
	for attempt := 0; attempt < cfg.RetryAttempts; attempt++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(cfg.RetryWrites).
				SetRetryReads(cfg.RetryReads),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				col := client.Database(cfg.Database).Collection(cfg.Collection)
				return NewMongo(col), nil
			}
		}

		time.Sleep(cfg.RetryInterval)
	}

	return nil, ErrFailedToConnect
}

// Mongo is the document-store Storage implementation.
type Mongo struct {
	col *mongo.Collection
}

// NewMongo creates a storage backed by the given collection.
func NewMongo(col *mongo.Collection) *Mongo {
	return &Mongo{col: col}
}

func (s *Mongo) Save(ctx context.Context, rec Record) error {
	rec.normalize()

	if _, err := s.col.InsertOne(ctx, rec); err != nil {
		return &StorageError{Operation: "save", Err: err}
	}
	return nil
}

func (s *Mongo) Delete(ctx context.Context, f Filter) (int64, error) {
	res, err := s.col.DeleteMany(ctx, mongoFilter(f))
	if err != nil {
		return 0, &StorageError{Operation: "delete", Err: err}
	}
	return res.DeletedCount, nil
}

func (s *Mongo) Find(ctx context.Context, f Filter) ([]Record, error) {
	cur, err := s.col.Find(ctx, mongoFilter(f))
	if err != nil {
		return nil, &StorageError{Operation: "find", Err: err}
	}

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, &StorageError{Operation: "find", Err: err}
	}
	return out, nil
}

func (s *Mongo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"schedule.expire": bson.M{"$lt": before.Unix()},
	})
	if err != nil {
		return 0, &StorageError{Operation: "purge", Err: err}
	}
	return res.DeletedCount, nil
}

func mongoFilter(f Filter) bson.M {
	q := bson.M{}
	if len(f.IDs) > 0 {
		q["$or"] = bson.A{
			bson.M{"toastId": bson.M{"$in": f.IDs}},
			bson.M{"notiId": bson.M{"$in": f.IDs}},
		}
	}
	if f.SourceID != "" {
		q["sourceId"] = f.SourceID
	}
	if f.DisplayID != nil {
		q["displayId"] = *f.DisplayID
	}
	if f.DeletableOnly {
		q["isUnDeletable"] = bson.M{"$ne": true}
	}
	return q
}
