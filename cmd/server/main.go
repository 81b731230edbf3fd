package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kenechi-dev/gighall/internal/auth"
	"github.com/kenechi-dev/gighall/internal/config"
	"github.com/kenechi-dev/gighall/internal/db"
	"github.com/kenechi-dev/gighall/internal/enhance"
	"github.com/kenechi-dev/gighall/internal/events"
	"github.com/kenechi-dev/gighall/internal/marketplace"
	"github.com/kenechi-dev/gighall/internal/messaging"
	mware "github.com/kenechi-dev/gighall/internal/middleware"
	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

// stores groups the four repository interfaces behind one backing store.
type stores struct {
	users    store.UserStore
	requests store.RequestStore
	bids     store.BidStore
	messages store.MessageStore
	ready    func(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	st := openStores(cfg)

	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQP(cfg.AMQPURL)
		log.Println("event publishing enabled")
	}

	enhancer := enhance.Static{}
	requestLedger, bidLedger := marketplace.NewLedgers(st.requests, st.bids, enhancer, publisher)

	hub := messaging.NewHub()
	router := messaging.NewRouter(st.messages, hub)

	verifier := &auth.Verifier{Secret: cfg.JWTSecret, Users: st.users}
	authHandler := &auth.Handler{
		Users:      st.users,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}
	marketHandler := &marketplace.Handler{Requests: requestLedger, Bids: bidLedger}
	messageHandler := &messaging.Handler{Router: router}
	wsHandler := &messaging.WSHandler{Router: router, Hub: hub, Verifier: verifier}
	enhanceHandler := &enhance.Handler{Enhancer: enhancer}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	// Health
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if err := st.ready(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public routes, rate limited to protect signup/login from abuse.
	// Redis-backed when configured, per-instance memory limiter otherwise.
	public := e.Group("/api")
	if rdb := mware.NewRedisClient(cfg.RedisAddr); rdb != nil {
		log.Println("redis rate limiting enabled")
		public.Use(mware.RedisRateLimit(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow))
	} else {
		public.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(20)))
	}
	public.POST("/users", authHandler.Register)
	public.POST("/auth/login", authHandler.Login)

	// Protected routes
	api := e.Group("/api")
	api.Use(mware.JWTAuth(verifier))

	api.GET("/auth/me", authHandler.Me)
	api.POST("/client-profile", authHandler.CreateClientProfile, mware.RequireRoles(model.RoleClient))
	api.POST("/freelancer-profile", authHandler.CreateFreelancerProfile, mware.RequireRoles(model.RoleFreelancer))

	api.POST("/service-requests", marketHandler.CreateRequest, mware.RequireRoles(model.RoleClient))
	api.GET("/service-requests", marketHandler.ListRequests)
	api.POST("/service-requests/:id/cancel", marketHandler.CancelRequest, mware.RequireRoles(model.RoleClient))
	api.POST("/service-requests/:id/complete", marketHandler.CompleteRequest, mware.RequireRoles(model.RoleClient))

	api.POST("/bids", marketHandler.CreateBid, mware.RequireRoles(model.RoleFreelancer))
	api.GET("/bids", marketHandler.ListBids)
	api.PUT("/bids/:bidId/accept", marketHandler.AcceptBid, mware.RequireRoles(model.RoleClient))

	api.GET("/messages/:userId", messageHandler.GetConversation)
	api.POST("/enhance-description", enhanceHandler.EnhanceDescription)

	// Live connect authenticates in the handshake itself.
	e.GET("/ws", wsHandler.Serve)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStores picks the backing store: Postgres when DATABASE_URL is set,
// in-memory otherwise.
func openStores(cfg config.Config) stores {
	if cfg.DatabaseURL == "" {
		log.Println("no DATABASE_URL set, using in-memory store")
		mem := store.NewMemory()
		return stores{
			users:    mem,
			requests: mem,
			bids:     mem,
			messages: mem,
			ready:    func(ctx context.Context) error { return nil },
		}
	}

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	pg := store.NewPostgres(pool)
	return stores{
		users:    pg,
		requests: pg,
		bids:     pg,
		messages: pg,
		ready:    pool.Ping,
	}
}
