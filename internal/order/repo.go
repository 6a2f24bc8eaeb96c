package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	// Create inserts the order keyed by its checkout session id. It reports
	// false with a nil error when an order for that session already exists,
	// so redelivered payment events cannot record a sale twice.
	Create(ctx context.Context, o *Order) (bool, error)
	GetBySession(ctx context.Context, sessionID string) (*Order, error)
	ListByArtist(ctx context.Context, artistID string) ([]ArtistOrder, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, o *Order) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, artwork_id, checkout_session_id, buyer_email, shipping_address, service_fee, artist_earnings, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (checkout_session_id) DO NOTHING
	`, o.ID, o.ArtworkID, o.CheckoutSessionID, o.BuyerEmail, o.ShippingAddress, o.ServiceFee, o.ArtistEarnings)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) GetBySession(ctx context.Context, sessionID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT id, artwork_id, checkout_session_id, buyer_email, shipping_address, service_fee::text, artist_earnings::text, created_at
		FROM orders WHERE checkout_session_id=$1
	`, sessionID).Scan(&o.ID, &o.ArtworkID, &o.CheckoutSessionID, &o.BuyerEmail, &o.ShippingAddress, &o.ServiceFee, &o.ArtistEarnings, &o.CreatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &o, nil
}

// ListByArtist returns the orders for artworks owned by the artist, newest
// first, for the earnings view on the dashboard.
func (r *PGRepo) ListByArtist(ctx context.Context, artistID string) ([]ArtistOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.artwork_id, o.checkout_session_id, o.buyer_email, o.shipping_address,
		       o.service_fee::text, o.artist_earnings::text, o.created_at, a.title
		FROM orders o
		JOIN artworks a ON a.id = o.artwork_id
		WHERE a.artist_id = $1
		ORDER BY o.created_at DESC
	`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArtistOrder
	for rows.Next() {
		var ao ArtistOrder
		if err := rows.Scan(&ao.ID, &ao.ArtworkID, &ao.CheckoutSessionID, &ao.BuyerEmail, &ao.ShippingAddress,
			&ao.ServiceFee, &ao.ArtistEarnings, &ao.CreatedAt, &ao.ArtworkTitle); err != nil {
			return nil, err
		}
		out = append(out, ao)
	}
	return out, rows.Err()
}
