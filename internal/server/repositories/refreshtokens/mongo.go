package refreshtokens

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

// CollectionName holds refresh tokens; a TTL index on expiresAt purges them.
const CollectionName = "refresh_tokens"

type tokenDocument struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	SessionID string    `bson:"sessionId"`
	Expires   time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	t.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, tokenDocument{
		Token:     t.Token,
		UserID:    t.UserID,
		SessionID: t.SessionID,
		Expires:   t.Expires,
		CreatedAt: t.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	var doc tokenDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &models.RefreshToken{
		Token:     doc.Token,
		UserID:    doc.UserID,
		SessionID: doc.SessionID,
		Expires:   doc.Expires,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (r *MongoRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *MongoRepository) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	filter := bson.M{"userId": userID}
	values, err := r.coll.Distinct(ctx, "sessionId", filter)
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	if _, err := r.coll.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("delete user tokens: %w", err)
	}

	sessionIDs := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			sessionIDs = append(sessionIDs, id)
		}
	}
	return sessionIDs, nil
}

func (r *MongoRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"sessionId": sessionID}); err != nil {
		return fmt.Errorf("delete session tokens: %w", err)
	}
	return nil
}
