package listings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/dbx"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/google/uuid"
)

const selectColumns = `id, owner_id, title, rent, bedrooms, area, address, location_url, contact, description, images, status, created_at`

var columns = map[search.Field]string{
	search.FieldArea:     "area",
	search.FieldBedrooms: "bedrooms",
	search.FieldRent:     "rent",
	search.FieldOwner:    "owner_id",
}

// Bedrooms criteria arrive as float64, so the parameter is typed to let a
// fractional value compare against the integer column.
var paramCasts = map[search.Field]string{
	search.FieldBedrooms: "::float8",
}

var operators = map[search.Op]string{
	search.OpEq:  "=",
	search.OpGte: ">=",
	search.OpLte: "<=",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	l.ID = uuid.NewString()

	query :=
		`INSERT INTO listings (id, owner_id, title, rent, bedrooms, area, address, location_url, contact, description, images, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		l.ID, l.OwnerID, l.Title, l.Rent, l.Bedrooms, l.Area, l.Address, l.LocationURL,
		l.Contact, l.Description, images, string(l.Status)).Scan(&l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return l, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		l      models.Listing
		images []byte
		status string
	)
	err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Rent, &l.Bedrooms, &l.Area, &l.Address,
		&l.LocationURL, &l.Contact, &l.Description, &images, &status, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &l.Images); err != nil {
			return nil, fmt.Errorf("decode images of %s: %w", l.ID, err)
		}
	}
	l.Status = models.ListingStatus(status)
	return &l, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + selectColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

// setClause renders the changed columns of patch starting at placeholder $1.
func setClause(patch models.ListingPatch) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Rent != nil {
		add("rent", *patch.Rent)
	}
	if patch.Bedrooms != nil {
		add("bedrooms", *patch.Bedrooms)
	}
	if patch.Area != nil {
		add("area", *patch.Area)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.LocationURL != nil {
		add("location_url", *patch.LocationURL)
	}
	if patch.Contact != nil {
		add("contact", *patch.Contact)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	return strings.Join(sets, ", "), args
}

func (r *PostgresRepository) Update(ctx context.Context, id, ownerID string, patch models.ListingPatch) error {
	set, args := setClause(patch)
	if set == "" {
		return nil
	}
	n := len(args)
	query := fmt.Sprintf(`UPDATE listings SET %s WHERE id = $%d AND owner_id = $%d`, set, n+1, n+2)
	return r.execOwned(ctx, query, append(args, id, ownerID)...)
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id, ownerID string, status models.ListingStatus) error {
	query := `UPDATE listings SET status = $1 WHERE id = $2 AND owner_id = $3`
	return r.execOwned(ctx, query, string(status), id, ownerID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM listings WHERE id = $1 AND owner_id = $2`
	return r.execOwned(ctx, query, id, ownerID)
}

func (r *PostgresRepository) execOwned(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// WhereClause translates q into a SQL condition and its arguments. An empty
// query yields an empty condition.
func WhereClause(q search.Query) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for _, p := range q.Predicates {
		col, ok := columns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported field %q", p.Field)
		}
		op, ok := operators[p.Op]
		if !ok {
			return "", nil, fmt.Errorf("unsupported operator %q", p.Op)
		}
		args = append(args, p.Value)
		conds = append(conds, fmt.Sprintf("%s %s $%d%s", col, op, len(args), paramCasts[p.Field]))
	}
	return strings.Join(conds, " AND "), args, nil
}

func (r *PostgresRepository) Find(ctx context.Context, q search.Query) ([]*models.Listing, error) {
	where, args, err := WhereClause(q)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + selectColumns + ` FROM listings`
	if where != "" {
		query += ` WHERE ` + where
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

