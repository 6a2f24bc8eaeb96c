package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/arte-market/internal/artwork"
	"github.com/MikeMC777/arte-market/internal/httpx"
	"github.com/MikeMC777/arte-market/internal/message"
	"github.com/MikeMC777/arte-market/internal/order"
	"github.com/MikeMC777/arte-market/internal/payment"
	"github.com/MikeMC777/arte-market/internal/profile"
)

// minOfferRate is the floor for offers relative to the listed price.
var minOfferRate = decimal.NewFromFloat(0.6)

// CheckoutRequest starts a hosted checkout for one artwork. Price and
// shipping are always read from the store, never from the client.
// swagger:model CheckoutRequest
type checkoutRequest struct {
	ArtworkID string `json:"artwork_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
}

// OfferRequest payload of a price offer on an artwork.
// swagger:model OfferRequest
type offerRequest struct {
	Amount decimal.Decimal `json:"amount" example:"72.50"`
}

func withImageURLs(items []artwork.Artwork, storageBase string) []artwork.Artwork {
	for i := range items {
		items[i].ImageURL = items[i].PublicImageURL(storageBase)
	}
	return items
}

func requestOrigin(c *gin.Context) string {
	if o := c.GetHeader("Origin"); o != "" {
		return o
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// checkoutHandler validates the purchase and asks the gateway for a session.
//
//	@Summary  Start checkout for an artwork
//	@Accept   json
//	@Produce  json
//	@Param    body body checkoutRequest true "artwork to buy"
//	@Success  200 {object} map[string]string
//	@Router   /api/checkout [post]
func checkoutHandler(arts artwork.Repository, profiles profile.Repository, gateway *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ArtworkID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "artwork_id is required"})
			return
		}

		art, err := arts.GetByID(c.Request.Context(), req.ArtworkID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "artwork not found"})
			return
		}
		if art.Sold {
			c.JSON(http.StatusConflict, gin.H{"error": "artwork already sold"})
			return
		}
		if art.Status != artwork.StatusApproved {
			c.JSON(http.StatusConflict, gin.H{"error": "artwork is not for sale"})
			return
		}

		price, err := decimal.NewFromString(art.Price)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid stored price"})
			return
		}
		shipping, err := decimal.NewFromString(art.ShippingCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid stored shipping cost"})
			return
		}

		var buyerEmail string
		if uid := httpx.UserID(c); uid != "" {
			if p, perr := profiles.GetByID(c.Request.Context(), uid); perr == nil {
				buyerEmail = p.Email
			}
		}

		origin := requestOrigin(c)
		sess, err := gateway.CreateSession(c.Request.Context(), payment.SessionRequest{
			Title:         art.Title,
			AmountMinor:   order.TotalMinorUnits(price, shipping),
			Currency:      "gbp",
			CustomerEmail: buyerEmail,
			SuccessURL:    origin + "/success",
			CancelURL:     origin + "/artwork/gallery",
			Metadata:      map[string]string{"artwork_id": art.ID},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "url": sess.URL})
	}
}

// offerHandler validates the amount against the 60% floor and records the
// offer as a plain message to the artist.
func offerHandler(arts artwork.Repository, messages message.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := httpx.UserID(c)

		var req offerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a number"})
			return
		}

		art, err := arts.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "artwork not found"})
			return
		}

		price, err := decimal.NewFromString(art.Price)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid stored price"})
			return
		}
		minOffer := price.Mul(minOfferRate)
		if req.Amount.LessThan(minOffer) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "offers must be at least £" + minOffer.StringFixed(2),
			})
			return
		}

		m := &message.Message{
			ID:         uuid.NewString(),
			ArtworkID:  art.ID,
			SenderID:   uid,
			ReceiverID: art.ArtistID,
			Content:    "Hi, I'd like to offer £" + req.Amount.StringFixed(2) + " for \"" + art.Title + "\".",
		}
		if err := messages.Create(c.Request.Context(), m); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send offer"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": m,
			"thread":  "/api/messages/" + art.ID + "/" + art.ArtistID,
		})
	}
}

func listArtworksHandler(arts artwork.Repository, cache *artwork.Cache, storageBase string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := artwork.Query{
			Style:    c.Query("style"),
			MinPrice: c.Query("min_price"),
			MaxPrice: c.Query("max_price"),
			Limit:    queryInt(c, "limit", 20),
			Offset:   queryInt(c, "offset", 0),
		}

		// only the default first page is worth keeping warm
		cacheable := q.Style == "" && q.MinPrice == "" && q.MaxPrice == "" && q.Offset == 0 && q.Limit == 20

		if cacheable {
			if items, ok := cache.GetGallery(c.Request.Context()); ok {
				c.JSON(http.StatusOK, artwork.ListResponse{Limit: q.Limit, Offset: q.Offset, Items: withImageURLs(items, storageBase)})
				return
			}
		}

		items, err := arts.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list artworks"})
			return
		}
		if cacheable {
			_ = cache.SetGallery(c.Request.Context(), items)
		}

		c.JSON(http.StatusOK, artwork.ListResponse{
			Style:  q.Style,
			Limit:  q.Limit,
			Offset: q.Offset,
			Items:  withImageURLs(items, storageBase),
		})
	}
}

func getArtworkHandler(arts artwork.Repository, storageBase string) gin.HandlerFunc {
	return func(c *gin.Context) {
		art, err := arts.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "artwork not found"})
			return
		}
		art.ImageURL = art.PublicImageURL(storageBase)
		c.JSON(http.StatusOK, art)
	}
}

// createArtworkHandler records an artist submission, always pending review.
func createArtworkHandler(arts artwork.Repository, cache *artwork.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := httpx.UserID(c)

		var req artwork.CreateArtworkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Title == "" || req.Price == "" || req.ImagePath == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title, price and image_path are required"})
			return
		}

		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative number"})
			return
		}
		shipping := decimal.Zero
		if req.ShippingCost != "" {
			shipping, err = decimal.NewFromString(req.ShippingCost)
			if err != nil || shipping.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "shipping_cost must be a non-negative number"})
				return
			}
		}

		a := &artwork.Artwork{
			ID:           uuid.NewString(),
			Title:        req.Title,
			Description:  req.Description,
			Price:        price.StringFixed(2),
			ShippingCost: shipping.StringFixed(2),
			ImagePath:    req.ImagePath,
			Style:        req.Style,
			Status:       artwork.StatusPending,
			ArtistID:     uid,
		}
		if err := arts.Create(c.Request.Context(), a); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit artwork"})
			return
		}
		_ = cache.Invalidate(c.Request.Context())

		c.JSON(http.StatusCreated, a)
	}
}

func listArtistArtworksHandler(arts artwork.Repository, storageBase string) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := arts.ListByArtist(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list artworks"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": withImageURLs(items, storageBase)})
	}
}

func createProfileHandler(profiles profile.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := httpx.UserID(c)

		var req profile.CreateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Email == "" || req.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and username are required"})
			return
		}

		p := &profile.Profile{
			ID:        uid,
			Email:     req.Email,
			Username:  req.Username,
			AvatarURL: req.AvatarURL,
			Bio:       req.Bio,
		}
		if err := profiles.Create(c.Request.Context(), p); err != nil {
			if errors.Is(err, profile.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": "profile already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create profile"})
			return
		}

		c.JSON(http.StatusCreated, p)
	}
}

func getProfileHandler(profiles profile.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := profiles.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func sendMessageHandler(messages message.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := httpx.UserID(c)

		var req message.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.ArtworkID == "" || req.ReceiverID == "" || req.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "artwork_id, receiver_id and content are required"})
			return
		}

		m := &message.Message{
			ID:         uuid.NewString(),
			ArtworkID:  req.ArtworkID,
			SenderID:   uid,
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
		}
		if err := messages.Create(c.Request.Context(), m); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
			return
		}

		c.JSON(http.StatusCreated, m)
	}
}

func threadHandler(messages message.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := httpx.UserID(c)

		msgs, err := messages.ListThread(c.Request.Context(), c.Param("artworkID"), uid, c.Param("userID"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load thread"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": msgs})
	}
}

func inboxHandler(messages message.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := httpx.UserID(c)

		rows, err := messages.ListForUser(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inbox"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"threads": message.BuildThreads(uid, rows)})
	}
}

func listArtistOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := httpx.UserID(c)

		items, err := orders.ListByArtist(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
