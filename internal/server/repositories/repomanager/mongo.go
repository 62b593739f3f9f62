package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/identities"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/listings"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/resettokens"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoRepositoryManager vends repositories over the houses and users
// document collections and their companions.
type MongoRepositoryManager struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoRepositoryManager{client: client, db: client.Database(database)}, nil
}

// NewMongoRepositoryManagerFromDatabase wraps an already connected database.
func NewMongoRepositoryManagerFromDatabase(db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{client: db.Client(), db: db}
}

func (m *MongoRepositoryManager) Listings() listings.Repository {
	return listings.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Identities() identities.Repository {
	return identities.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return refreshtokens.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) ResetTokens() resettokens.Repository {
	return resettokens.NewMongoRepository(m.db)
}

// WithinTx runs fn directly: standalone servers have no multi-document
// transactions, and every write here is a single-document operation.
func (m *MongoRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return fn(ctx, m)
}

// RunMigrations creates the indexes the repositories rely on.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		identities.CollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		listings.CollectionName: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}}},
			{Keys: bson.D{{Key: "area", Value: 1}, {Key: "bedrooms", Value: 1}, {Key: "rent", Value: 1}}},
		},
		refreshtokens.CollectionName: {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		resettokens.CollectionName: {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for _, coll := range []string{identities.CollectionName, listings.CollectionName, refreshtokens.CollectionName, resettokens.CollectionName} {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, indexes[coll]); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
