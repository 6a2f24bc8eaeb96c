// Package artwork provides the repository interface and PostgreSQL implementation for managing artwork listings.
package artwork

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("artwork not found")
	// ErrAlreadySold reports that the conditional sold-flag update matched no
	// row because a previous delivery already flipped it.
	ErrAlreadySold = errors.New("artwork already sold")
)

type Query struct {
	Style    string
	MinPrice string
	MaxPrice string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, a *Artwork) error
	GetByID(ctx context.Context, id string) (*Artwork, error)
	List(ctx context.Context, q Query) ([]Artwork, error)
	ListByArtist(ctx context.Context, artistID string) ([]Artwork, error)
	MarkSold(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, a *Artwork) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO artworks (id, title, description, price, shipping_cost, image_path, style, status, sold, artist_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE,$9,NOW(),NOW())
	`, a.ID, a.Title, a.Description, a.Price, a.ShippingCost, a.ImagePath, a.Style, a.Status, a.ArtistID)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Artwork, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Artwork
	err := r.db.QueryRow(ctx, `
		SELECT id, title, description, price::text, shipping_cost::text, image_path, style, status, sold, artist_id, created_at, updated_at
		FROM artworks WHERE id=$1
	`, id).Scan(&a.ID, &a.Title, &a.Description, &a.Price, &a.ShippingCost, &a.ImagePath, &a.Style, &a.Status, &a.Sold, &a.ArtistID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &a, nil
}

// List returns approved artworks for the public gallery, newest first.
func (r *PGRepo) List(ctx context.Context, q Query) ([]Artwork, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	style := strings.TrimSpace(q.Style)

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, price::text, shipping_cost::text, image_path, style, status, sold, artist_id, created_at, updated_at
		FROM artworks
		WHERE status = 'approved'
		  AND ($1 = '' OR style = $1)
		  AND ($2 = '' OR price >= $2::numeric)
		  AND ($3 = '' OR price <= $3::numeric)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, style, q.MinPrice, q.MaxPrice, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artwork
	for rows.Next() {
		var a Artwork
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Price, &a.ShippingCost, &a.ImagePath, &a.Style, &a.Status, &a.Sold, &a.ArtistID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListByArtist(ctx context.Context, artistID string) ([]Artwork, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, price::text, shipping_cost::text, image_path, style, status, sold, artist_id, created_at, updated_at
		FROM artworks
		WHERE artist_id = $1
		ORDER BY created_at DESC
	`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artwork
	for rows.Next() {
		var a Artwork
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Price, &a.ShippingCost, &a.ImagePath, &a.Style, &a.Status, &a.Sold, &a.ArtistID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkSold flips the sold flag exactly once. The WHERE sold = FALSE guard
// keeps the update safe under duplicate webhook delivery: a redelivered
// event gets ErrAlreadySold instead of a second write.
func (r *PGRepo) MarkSold(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE artworks SET sold = TRUE, updated_at = NOW()
		WHERE id = $1 AND sold = FALSE
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var sold bool
	if err := r.db.QueryRow(ctx, `SELECT sold FROM artworks WHERE id=$1`, id).Scan(&sold); err != nil {
		return ErrNotFound
	}
	if sold {
		return ErrAlreadySold
	}
	return ErrNotFound
}
