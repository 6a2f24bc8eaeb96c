package message

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListThread(ctx context.Context, artworkID, userA, userB string) ([]Message, error)
	ListForUser(ctx context.Context, userID string) ([]InboxRow, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, m *Message) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (id, artwork_id, sender_id, receiver_id, content, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
	`, m.ID, m.ArtworkID, m.SenderID, m.ReceiverID, m.Content)
	return err
}

// ListThread returns the chronological conversation between two users about
// one artwork.
func (r *PGRepo) ListThread(ctx context.Context, artworkID, userA, userB string) ([]Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, artwork_id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE artwork_id = $1
		  AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))
		ORDER BY created_at ASC
	`, artworkID, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ArtworkID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListForUser returns every message the user participates in (as sender,
// receiver, or artist owning the artwork), already joined with the titles and
// usernames the inbox shows, newest first. One round trip; the per-thread
// reduction happens in BuildThreads.
func (r *PGRepo) ListForUser(ctx context.Context, userID string) ([]InboxRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.artwork_id, m.sender_id, m.receiver_id, m.content, m.created_at,
		       a.title, a.artist_id, sp.username, rp.username
		FROM messages m
		JOIN artworks a ON a.id = m.artwork_id
		JOIN profiles sp ON sp.id = m.sender_id
		JOIN profiles rp ON rp.id = m.receiver_id
		WHERE m.sender_id = $1 OR m.receiver_id = $1 OR a.artist_id = $1
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InboxRow
	for rows.Next() {
		var ir InboxRow
		if err := rows.Scan(&ir.ID, &ir.ArtworkID, &ir.SenderID, &ir.ReceiverID, &ir.Content, &ir.CreatedAt,
			&ir.ArtworkTitle, &ir.ArtistID, &ir.SenderUsername, &ir.ReceiverUsername); err != nil {
			return nil, err
		}
		out = append(out, ir)
	}
	return out, rows.Err()
}
