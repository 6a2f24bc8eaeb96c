package message

import "time"

// Message is one row of the append-only per-artwork chat log. Offers are
// stored here too; once written they are indistinguishable from free text.
type Message struct {
	ID         string    `json:"id"`
	ArtworkID  string    `json:"artwork_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// InboxRow is a message joined with the denormalized fields the inbox needs.
type InboxRow struct {
	Message
	ArtworkTitle     string `json:"artwork_title"`
	ArtistID         string `json:"artist_id"`
	SenderUsername   string `json:"sender_username"`
	ReceiverUsername string `json:"receiver_username"`
}

// Thread is the latest-message view of one (artwork, counterpart) pair.
// swagger:model
type Thread struct {
	ArtworkID     string    `json:"artwork_id"`
	OtherUserID   string    `json:"other_user_id"`
	ArtworkTitle  string    `json:"artwork_title"`
	OtherUsername string    `json:"other_username"`
	LatestMessage string    `json:"latest_message"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SendMessageRequest payload of a direct message.
// swagger:model SendMessageRequest
type SendMessageRequest struct {
	ArtworkID  string `json:"artwork_id"  example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	ReceiverID string `json:"receiver_id" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Content    string `json:"content"     example:"Is this piece still available?"`
}
