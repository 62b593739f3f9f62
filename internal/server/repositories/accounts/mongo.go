package accounts

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

const CollectionName = "users"

type accountDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	PhotoURL  string    `bson:"facePhoto,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, a *models.Account) error {
	a.CreatedAt = time.Now().UTC()
	doc := accountDocument{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      string(a.Role),
		PhotoURL:  a.PhotoURL,
		CreatedAt: a.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &models.Account{
		ID:        doc.ID,
		Name:      doc.Name,
		Email:     doc.Email,
		Role:      models.Role(doc.Role),
		PhotoURL:  doc.PhotoURL,
		CreatedAt: doc.CreatedAt,
	}, nil
}
