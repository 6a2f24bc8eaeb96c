package order

import "time"

// Order is written exactly once per fulfilled checkout session and never
// mutated afterwards.
type Order struct {
	ID                string `json:"id"`
	ArtworkID         string `json:"artwork_id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	BuyerEmail        string `json:"buyer_email"`
	ShippingAddress   string `json:"shipping_address"`
	// NUMERIC -> string
	ServiceFee     string    `json:"service_fee"`
	ArtistEarnings string    `json:"artist_earnings"`
	CreatedAt      time.Time `json:"created_at"`
}

// ArtistOrder is an order joined with the artwork title for the earnings view.
type ArtistOrder struct {
	Order
	ArtworkTitle string `json:"artwork_title"`
}
