package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MikeMC777/arte-market/internal/artwork"
	"github.com/MikeMC777/arte-market/internal/config"
	"github.com/MikeMC777/arte-market/internal/db"
	"github.com/MikeMC777/arte-market/internal/httpx"
	"github.com/MikeMC777/arte-market/internal/message"
	"github.com/MikeMC777/arte-market/internal/order"
	"github.com/MikeMC777/arte-market/internal/payment"
	"github.com/MikeMC777/arte-market/internal/profile"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := db.Migrate(cfg.MigrationsURL, cfg.PostgresDSN); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	cache := artwork.NewCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))

	arts := artwork.NewPGRepo(pool)
	profiles := profile.NewPGRepo(pool)
	messages := message.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)
	gateway := payment.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(logger), httpx.Identity())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/artworks", listArtworksHandler(arts, cache, cfg.StoragePublicURL))
		api.GET("/artworks/:id", getArtworkHandler(arts, cfg.StoragePublicURL))
		api.POST("/artworks", httpx.RequireUser(), createArtworkHandler(arts, cache))
		api.GET("/artists/:id/artworks", listArtistArtworksHandler(arts, cfg.StoragePublicURL))

		api.POST("/profiles", httpx.RequireUser(), createProfileHandler(profiles))
		api.GET("/profiles/:id", getProfileHandler(profiles))

		api.POST("/artworks/:id/offers", httpx.RequireUser(), offerHandler(arts, messages))
		api.POST("/messages", httpx.RequireUser(), sendMessageHandler(messages))
		api.GET("/messages/:artworkID/:userID", httpx.RequireUser(), threadHandler(messages))
		api.GET("/inbox", httpx.RequireUser(), inboxHandler(messages))

		api.GET("/orders", httpx.RequireUser(), listArtistOrdersHandler(orders))

		api.POST("/checkout", checkoutHandler(arts, profiles, gateway))
		api.POST("/webhook", webhookHandler(arts, orders, cache, cfg.GatewayWebhookSecret, logger))
	}

	logger.Info("market-service listening", zap.String("addr", cfg.MarketSvcAddr))
	if err := r.Run(cfg.MarketSvcAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
