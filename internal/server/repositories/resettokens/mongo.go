package resettokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "reset_tokens"

type tokenDocument struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Expires   time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, t *models.ResetToken) error {
	t.CreatedAt = time.Now().UTC()
	doc := tokenDocument{Token: t.Token, UserID: t.UserID, Expires: t.Expires, CreatedAt: t.CreatedAt}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, token string) (*models.ResetToken, error) {
	var doc tokenDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &models.ResetToken{Token: doc.Token, UserID: doc.UserID, Expires: doc.Expires, CreatedAt: doc.CreatedAt}, nil
}

func (r *MongoRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}
