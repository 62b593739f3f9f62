package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the document collection holding listings.
const CollectionName = "houses"

type listingDocument struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"ownerId"`
	Title       string    `bson:"title"`
	Rent        float64   `bson:"rent"`
	Bedrooms    int       `bson:"bedrooms"`
	Area        string    `bson:"area"`
	Address     string    `bson:"address"`
	LocationURL string    `bson:"locationUrl,omitempty"`
	Contact     string    `bson:"contact"`
	Description string    `bson:"description"`
	Images      []string  `bson:"images"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func toDocument(l *models.Listing) *listingDocument {
	return &listingDocument{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Rent:        l.Rent,
		Bedrooms:    l.Bedrooms,
		Area:        l.Area,
		Address:     l.Address,
		LocationURL: l.LocationURL,
		Contact:     l.Contact,
		Description: l.Description,
		Images:      l.Images,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
	}
}

func (d *listingDocument) toModel() *models.Listing {
	return &models.Listing{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Rent:        d.Rent,
		Bedrooms:    d.Bedrooms,
		Area:        d.Area,
		Address:     d.Address,
		LocationURL: d.LocationURL,
		Contact:     d.Contact,
		Description: d.Description,
		Images:      d.Images,
		Status:      models.ListingStatus(d.Status),
		CreatedAt:   d.CreatedAt,
	}
}

var mongoOperators = map[search.Op]string{
	search.OpEq:  "$eq",
	search.OpGte: "$gte",
	search.OpLte: "$lte",
}

// Filter translates q into a bson filter. Predicates on the same field are
// merged into one operator document; a repeated operator falls back to $and.
func Filter(q search.Query) (bson.M, error) {
	filter := bson.M{}
	var extra []bson.M

	for _, p := range q.Predicates {
		key, ok := bsonFields[p.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported field %q", p.Field)
		}
		op, ok := mongoOperators[p.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", p.Op)
		}

		ops, _ := filter[key].(bson.M)
		if ops == nil {
			ops = bson.M{}
			filter[key] = ops
		}
		if _, dup := ops[op]; dup {
			extra = append(extra, bson.M{key: bson.M{op: p.Value}})
			continue
		}
		ops[op] = p.Value
	}

	if len(extra) > 0 {
		filter["$and"] = extra
	}
	return filter, nil
}

var bsonFields = map[search.Field]string{
	search.FieldArea:     "area",
	search.FieldBedrooms: "bedrooms",
	search.FieldRent:     "rent",
	search.FieldOwner:    "ownerId",
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, toDocument(l)); err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return l, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Listing, error) {
	var doc listingDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return doc.toModel(), nil
}

func patchDocument(patch models.ListingPatch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Rent != nil {
		set["rent"] = *patch.Rent
	}
	if patch.Bedrooms != nil {
		set["bedrooms"] = *patch.Bedrooms
	}
	if patch.Area != nil {
		set["area"] = *patch.Area
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.LocationURL != nil {
		set["locationUrl"] = *patch.LocationURL
	}
	if patch.Contact != nil {
		set["contact"] = *patch.Contact
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	return set
}

func (r *MongoRepository) Update(ctx context.Context, id, ownerID string, patch models.ListingPatch) error {
	set := patchDocument(patch)
	if len(set) == 0 {
		return nil
	}
	return r.updateOwned(ctx, id, ownerID, set)
}

func (r *MongoRepository) SetStatus(ctx context.Context, id, ownerID string, status models.ListingStatus) error {
	return r.updateOwned(ctx, id, ownerID, bson.M{"status": string(status)})
}

func (r *MongoRepository) updateOwned(ctx context.Context, id, ownerID string, set bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "ownerId": ownerID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, q search.Query) ([]*models.Listing, error) {
	filter, err := Filter(q)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cur.Close(ctx)

	var docs []*listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	result := make([]*models.Listing, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toModel())
	}
	return result, nil
}
