package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/arte-market/internal/artwork"
	"github.com/MikeMC777/arte-market/internal/order"
	"github.com/MikeMC777/arte-market/internal/payment"
)

// webhookHandler applies the post-payment transition: mark the artwork sold,
// compute the fee split, record the order. The gateway delivers at least
// once, so every step must tolerate redelivery: the sold-flag update is
// conditional and the order insert is keyed by the checkout session id.
// 200 is returned only once all writes have succeeded or are proven already
// applied; any store failure returns 500 so the gateway retries.
func webhookHandler(arts artwork.Repository, orders order.Repository, cache *artwork.Cache, secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		ev, err := payment.ParseEvent(payload, c.GetHeader(payment.SignatureHeader), secret)
		if err != nil {
			logger.Warn("webhook signature verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
			return
		}

		if ev.Type != payment.EventTypeCheckoutCompleted {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		sess := ev.Data.Object
		artworkID := sess.Metadata["artwork_id"]
		if artworkID == "" {
			// benign: a session this service did not create
			logger.Warn("no artwork_id in session metadata", zap.String("session", sess.ID))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		ctx := c.Request.Context()

		switch err := arts.MarkSold(ctx, artworkID); {
		case err == nil:
		case errors.Is(err, artwork.ErrAlreadySold):
			// duplicate delivery; the order insert below dedupes by session
			logger.Info("artwork already sold, continuing", zap.String("artwork", artworkID))
		default:
			logger.Error("failed to mark artwork as sold", zap.String("artwork", artworkID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update artwork"})
			return
		}

		art, err := arts.GetByID(ctx, artworkID)
		if err != nil {
			logger.Error("failed to fetch artwork", zap.String("artwork", artworkID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch artwork"})
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
		split := order.ComputeSplit(price, shipping)

		inserted, err := orders.Create(ctx, &order.Order{
			ID:                uuid.NewString(),
			ArtworkID:         art.ID,
			CheckoutSessionID: sess.ID,
			BuyerEmail:        sess.CustomerDetails.Email,
			ShippingAddress:   sess.CustomerDetails.Address.Flatten(),
			ServiceFee:        split.ServiceFee.StringFixed(2),
			ArtistEarnings:    split.ArtistEarnings.StringFixed(2),
		})
		if err != nil {
			logger.Error("failed to save order", zap.String("session", sess.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save order"})
			return
		}
		if !inserted {
			logger.Info("order already recorded for session", zap.String("session", sess.ID))
		} else {
			logger.Info("artwork sold",
				zap.String("artwork", art.ID),
				zap.String("session", sess.ID),
				zap.String("service_fee", split.ServiceFee.StringFixed(2)),
				zap.String("artist_earnings", split.ArtistEarnings.StringFixed(2)),
			)
		}
		_ = cache.Invalidate(ctx)

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
