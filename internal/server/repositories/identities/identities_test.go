package identities

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgres_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+identities\b.*RETURNING\s+created_at$`).
		WithArgs(sqlmock.AnyArg(), "a@b.c", []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	id := &models.Identity{Email: "a@b.c", PasswordHash: []byte("hash")}
	require.NoError(t, repo.Create(context.Background(), id))
	assert.NotEmpty(t, id.ID)

	mock.ExpectQuery(`^INSERT`).WillReturnError(&pgconn.PgError{Code: "23505"})
	err := repo.Create(context.Background(), &models.Identity{Email: "a@b.c"})
	assert.ErrorIs(t, err, common.ErrEmailInUse)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `^SELECT\s+id,\s*email,\s*password_hash,\s*created_at\s+FROM\s+identities\s+WHERE\s+email\s*=\s*\$1$`

	mock.ExpectQuery(q).WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("i1", "a@b.c", []byte("h"), time.Now()))
	got, err := repo.GetByEmail(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "i1", got.ID)
	assert.Equal(t, []byte("h"), got.PasswordHash)

	mock.ExpectQuery(q).WithArgs("x@b.c").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(context.Background(), "x@b.c")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgres_UpdatePasswordAndDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^UPDATE\s+identities\s+SET\s+password_hash\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2$`).
		WithArgs([]byte("new"), "i1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePassword(context.Background(), "i1", []byte("new")))

	mock.ExpectExec(`^UPDATE\s+identities`).
		WithArgs([]byte("new"), "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "gone", []byte("new")), common.ErrNotFound)

	mock.ExpectExec(`^DELETE\s+FROM\s+identities\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Delete(context.Background(), "i1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMongo_DuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		err := repo.Create(context.Background(), &models.Identity{Email: "a@b.c"})
		assert.ErrorIs(mt, err, common.ErrEmailInUse)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := repo.UpdatePassword(context.Background(), "nope", []byte("x"))
		assert.ErrorIs(mt, err, common.ErrNotFound)
	})
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id := &models.Identity{Email: "a@b.c", PasswordHash: []byte("h1")}
	require.NoError(t, repo.Create(ctx, id))
	assert.ErrorIs(t, repo.Create(ctx, &models.Identity{Email: "a@b.c"}), common.ErrEmailInUse)

	got, err := repo.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, id.ID, got.ID)

	require.NoError(t, repo.UpdatePassword(ctx, id.ID, []byte("h2")))
	got, _ = repo.Get(ctx, id.ID)
	assert.Equal(t, []byte("h2"), got.PasswordHash)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "nope", nil), common.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, id.ID))
	require.NoError(t, repo.Delete(ctx, id.ID))
	_, err = repo.GetByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// the email is free again
	require.NoError(t, repo.Create(ctx, &models.Identity{Email: "a@b.c"}))
}
