package artwork

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Artwork struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// We store price/shipping as strings to avoid rounding errors (NUMERIC in Postgres)
	Price        string    `json:"price"`
	ShippingCost string    `json:"shipping_cost"`
	ImagePath    string    `json:"image_path"`
	Style        string    `json:"style,omitempty"`
	Status       string    `json:"status"`
	Sold         bool      `json:"sold"`
	ArtistID     string    `json:"artist_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	// ImageURL is derived from ImagePath and the public storage prefix;
	// it is filled by handlers and never stored.
	ImageURL string `json:"image_url,omitempty"`
}

// PublicImageURL composes the public object-storage URL for the artwork image.
func (a *Artwork) PublicImageURL(base string) string {
	if a.ImagePath == "" {
		return ""
	}
	return base + "/" + a.ImagePath
}

// CreateArtworkRequest payload of an artist submission.
// swagger:model CreateArtworkRequest
type CreateArtworkRequest struct {
	Title        string `json:"title"         example:"Blue Interior"`
	Description  string `json:"description"   example:"Oil on canvas, 40x50cm"`
	Price        string `json:"price"         example:"120.00"`
	ShippingCost string `json:"shipping_cost" example:"10.00"`
	Style        string `json:"style"         example:"abstract"`
	ImagePath    string `json:"image_path"    example:"artworks/1714656000.jpg"`
}

// ListResponse represents the paginated gallery response.
// swagger:model
type ListResponse struct {
	Style  string    `json:"style,omitempty"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Items  []Artwork `json:"items"`
}
