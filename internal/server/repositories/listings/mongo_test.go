package listings

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestFilter(t *testing.T) {
	f, err := Filter(search.Query{})
	require.NoError(t, err)
	assert.Empty(t, f)

	min, max, beds, area := 5000.0, 10000.0, 2.0, "Vesu"
	f, err = Filter(search.Build(search.Criteria{MinRent: &min, MaxRent: &max, Bedrooms: &beds, Area: &area}))
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"area":     bson.M{"$eq": "Vesu"},
		"bedrooms": bson.M{"$eq": 2.0},
		"rent":     bson.M{"$gte": 5000.0, "$lte": 10000.0},
	}, f)

	f, err = Filter(search.Query{Predicates: []search.Predicate{
		{Field: search.FieldRent, Op: search.OpGte, Value: 1.0},
		{Field: search.FieldRent, Op: search.OpGte, Value: 2.0},
	}})
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"rent": bson.M{"$gte": 1.0},
		"$and": []bson.M{{"rent": bson.M{"$gte": 2.0}}},
	}, f)

	_, err = Filter(search.Query{Predicates: []search.Predicate{{Field: "title", Op: search.OpEq, Value: "x"}}})
	assert.Error(t, err)
}

func TestDocumentRoundTrip(t *testing.T) {
	l := &models.Listing{
		ID: "l1", OwnerID: "o1", Title: "Flat", Rent: 1, Bedrooms: 1, Area: "Pal",
		Images: []string{"a"}, Status: models.StatusRented, CreatedAt: time.Unix(10, 0).UTC(),
	}
	assert.Equal(t, l, toDocument(l).toModel())
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoRepository(mt.DB)

		l, err := repo.Create(context.Background(), &models.Listing{OwnerID: "o1", Title: "Flat"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, l.ID)
		assert.False(mt, l.CreatedAt.IsZero())
	})

	mt.Run("get", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "l1"},
			{Key: "ownerId", Value: "o1"},
			{Key: "title", Value: "Flat"},
			{Key: "rent", Value: 9000.0},
			{Key: "bedrooms", Value: 2},
			{Key: "status", Value: "available"},
		}))
		repo := NewMongoRepository(mt.DB)

		l, err := repo.Get(context.Background(), "l1")
		require.NoError(mt, err)
		assert.Equal(mt, "o1", l.OwnerID)
		assert.Equal(mt, 2, l.Bedrooms)
		assert.Equal(mt, models.StatusAvailable, l.Status)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewMongoRepository(mt.DB)

		_, err := repo.Get(context.Background(), "nope")
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})

	mt.Run("foreign owner update matches nothing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewMongoRepository(mt.DB)

		err := repo.SetStatus(context.Background(), "l1", "intruder", models.StatusRented)
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		repo := NewMongoRepository(mt.DB)

		require.NoError(mt, repo.Delete(context.Background(), "l1", "o1"))
	})

	mt.Run("find", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + CollectionName
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "l1"}, {Key: "area", Value: "Vesu"}},
			bson.D{{Key: "_id", Value: "l2"}, {Key: "area", Value: "Vesu"}},
		)
		end := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, end)
		repo := NewMongoRepository(mt.DB)

		area := "Vesu"
		got, err := repo.Find(context.Background(), search.Build(search.Criteria{Area: &area}))
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "l2", got[1].ID)
	})
}
