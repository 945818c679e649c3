package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Opts struct {
	URI               string
	Database          string
	ConnectTimeoutSec int
}

// NewMongo 建连 + Ping；失败由调用方决定是否 Fatal
func NewMongo(o Opts) (*mongo.Client, *mongo.Database, error) {
	timeout := time.Duration(o.ConnectTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(o.URI))
	if err != nil {
		return nil, nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, nil, err
	}
	return cli, cli.Database(o.Database), nil
}

// EnsureUserIndexes 启动时建 users 集合索引（性能提示，非一致性约束）
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}
