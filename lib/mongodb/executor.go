// Package mongodb executes translated commands against a live MongoDB
// deployment. Translation itself never touches the network; this package
// is the only place a connection is made.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
)

// Config describes the target deployment.
type Config struct {
	URI         string        `yaml:"uri" json:"uri"`
	Database    string        `yaml:"database" json:"database"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	ResultLimit int64         `yaml:"result_limit" json:"result_limit"`
}

const defaultResultLimit = 1000

// Executor runs translated commands on one database.
type Executor struct {
	client *mongo.Client
	db     string
	limit  int64
	logger *slog.Logger
}

// Connect dials the deployment and verifies it responds to ping.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Executor, error) {
	if cfg.URI == "" {
		return nil, &ExecError{Message: "mongodb: connection URI is required"}
	}
	if cfg.Database == "" {
		return nil, &ExecError{Message: "mongodb: database name is required"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts = opts.SetTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, &ExecError{Message: "mongodb: failed to connect", Err: err}
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &ExecError{Message: "mongodb: ping failed", Err: err}
	}

	limit := cfg.ResultLimit
	if limit <= 0 {
		limit = defaultResultLimit
	}
	logger.Info("connected to mongodb", "database", cfg.Database, "result_limit", limit)
	return &Executor{client: client, db: cfg.Database, limit: limit, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (e *Executor) Close(ctx context.Context) error {
	return e.client.Disconnect(ctx)
}

// Result carries the outcome of one executed command. Documents is set
// for reads; the counters are set for the matching write operations.
type Result struct {
	Documents []bson.M `json:"documents,omitempty"`
	Inserted  int64    `json:"inserted,omitempty"`
	Matched   int64    `json:"matched,omitempty"`
	Modified  int64    `json:"modified,omitempty"`
	Deleted   int64    `json:"deleted,omitempty"`
}

// Execute dispatches the translated command to the matching collection
// method.
func (e *Executor) Execute(ctx context.Context, tr *mongoql.TranslationResult) (*Result, error) {
	if tr == nil {
		return nil, &ExecError{Message: "mongodb: nil translation result"}
	}

	start := time.Now()
	var (
		result *Result
		err    error
	)
	switch {
	case tr.Find != nil:
		result, err = e.find(ctx, tr.Find)
	case tr.Aggregate != nil:
		result, err = e.aggregate(ctx, tr.Aggregate)
	case tr.Write != nil:
		result, err = e.write(ctx, tr.Write)
	default:
		return nil, &ExecError{Message: "mongodb: translation result has no command"}
	}
	if err != nil {
		e.logger.Error("command failed", "kind", tr.Kind, "collection", tr.Collection, "error", err)
		return nil, err
	}
	e.logger.Info("command executed", "kind", tr.Kind, "collection", tr.Collection, "duration", time.Since(start))
	return result, nil
}

func (e *Executor) find(ctx context.Context, cmd *mongoql.FindCommand) (*Result, error) {
	opts := options.Find().SetLimit(e.effectiveLimit(cmd.Limit))
	if cmd.Projection != nil {
		opts = opts.SetProjection(cmd.Projection)
	}
	if cmd.Sort != nil {
		opts = opts.SetSort(cmd.Sort)
	}

	cursor, err := e.collection(cmd.Collection).Find(ctx, cmd.Filter, opts)
	if err != nil {
		return nil, &ExecError{Message: "mongodb: find failed", Err: err}
	}
	return e.drain(ctx, cursor)
}

func (e *Executor) aggregate(ctx context.Context, cmd *mongoql.AggregateCommand) (*Result, error) {
	cursor, err := e.collection(cmd.Collection).Aggregate(ctx, cmd.Pipeline)
	if err != nil {
		return nil, &ExecError{Message: "mongodb: aggregate failed", Err: err}
	}
	return e.drain(ctx, cursor)
}

func (e *Executor) drain(ctx context.Context, cursor *mongo.Cursor) (*Result, error) {
	defer cursor.Close(ctx)

	documents := make([]bson.M, 0)
	for cursor.Next(ctx) {
		if int64(len(documents)) >= e.limit {
			break
		}
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, &ExecError{Message: "mongodb: failed to decode document", Err: err}
		}
		documents = append(documents, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, &ExecError{Message: "mongodb: cursor iteration failed", Err: err}
	}
	return &Result{Documents: documents}, nil
}

func (e *Executor) write(ctx context.Context, cmd *mongoql.WriteCommand) (*Result, error) {
	coll := e.collection(cmd.Collection)

	switch cmd.Op {
	case mongoql.OpInsertOne:
		if _, err := coll.InsertOne(ctx, cmd.Documents[0]); err != nil {
			return nil, &ExecError{Message: "mongodb: insert failed", Err: err}
		}
		return &Result{Inserted: 1}, nil
	case mongoql.OpInsertMany:
		res, err := coll.InsertMany(ctx, cmd.Documents)
		if err != nil {
			return nil, &ExecError{Message: "mongodb: insert failed", Err: err}
		}
		return &Result{Inserted: int64(len(res.InsertedIDs))}, nil
	case mongoql.OpUpdateMany:
		res, err := coll.UpdateMany(ctx, cmd.Filter, cmd.Update)
		if err != nil {
			return nil, &ExecError{Message: "mongodb: update failed", Err: err}
		}
		return &Result{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
	case mongoql.OpDeleteMany:
		res, err := coll.DeleteMany(ctx, cmd.Filter)
		if err != nil {
			return nil, &ExecError{Message: "mongodb: delete failed", Err: err}
		}
		return &Result{Deleted: res.DeletedCount}, nil
	case mongoql.OpCreateCollection:
		if err := e.client.Database(e.db).CreateCollection(ctx, cmd.Collection); err != nil {
			return nil, &ExecError{Message: "mongodb: create collection failed", Err: err}
		}
		return &Result{}, nil
	case mongoql.OpDrop:
		if err := coll.Drop(ctx); err != nil {
			return nil, &ExecError{Message: "mongodb: drop failed", Err: err}
		}
		return &Result{}, nil
	default:
		return nil, &ExecError{Message: fmt.Sprintf("mongodb: unsupported write operation %s", cmd.Op)}
	}
}

func (e *Executor) collection(name string) *mongo.Collection {
	return e.client.Database(e.db).Collection(name)
}

func (e *Executor) effectiveLimit(requested *int64) int64 {
	if requested != nil && *requested < e.limit {
		return *requested
	}
	return e.limit
}
