package identities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName holds identities; the email field carries a unique index.
const CollectionName = "identities"

type identityDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash []byte    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d *identityDocument) toModel() *models.Identity {
	return &models.Identity{ID: d.ID, Email: d.Email, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, id *models.Identity) error {
	id.ID = uuid.NewString()
	id.CreatedAt = time.Now().UTC()

	_, err := r.coll.InsertOne(ctx, identityDocument{
		ID:           id.ID,
		Email:        id.Email,
		PasswordHash: id.PasswordHash,
		CreatedAt:    id.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrEmailInUse
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Identity, error) {
	var doc identityDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"passwordHash": hash}})
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}
