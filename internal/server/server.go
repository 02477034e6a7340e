package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/terra-tattva/storefront/internal/core"
	"github.com/terra-tattva/storefront/internal/storefront/catalog"
	"github.com/terra-tattva/storefront/internal/storefront/session"
)

const demoMessage = "Hello from the storefront server"

type Config struct {
	Environment   core.Environment
	PingMessage   string
	StaticDir     string
	SessionCookie string
	CookieMaxAge  int
}

// Handlers carries the collaborators every route needs.
type Handlers struct {
	cfg      Config
	catalog  *catalog.Catalog
	sessions *session.Manager
}

func NewHandlers(cfg Config, cat *catalog.Catalog, sessions *session.Manager) *Handlers {
	if cfg.PingMessage == "" {
		cfg.PingMessage = "ping"
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "shop_session_id"
	}
	return &Handlers{cfg: cfg, catalog: cat, sessions: sessions}
}

// New builds the gin engine with middleware and every route group.
func New(cfg Config, cat *catalog.Catalog, sessions *session.Manager) *gin.Engine {
	gin.SetMode(cfg.Environment.GinMode())
	h := NewHandlers(cfg, cat, sessions)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	SetupRoutes(r, h)
	return r
}

// SetupRoutes wires the public, catalog, cart and favorites groups.
func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/ping", h.Ping)
		api.GET("/demo", h.Demo)

		// ─────────── Catalog ───────────
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/categories", h.ListCategories)
	}

	shop := api.Group("")
	shop.Use(ensureSession(h.cfg.SessionCookie, h.cfg.CookieMaxAge))
	{
		// ─────────── Cart ───────────
		cart := shop.Group("/cart")
		{
			cart.GET("", h.GetCart)
			cart.POST("/items", h.AddCartItem)
			cart.POST("/buy-now", h.BuyNow)
			cart.PUT("/items/:id", h.UpdateCartItem)
			cart.DELETE("/items/:id", h.RemoveCartItem)
			cart.PUT("/visibility", h.SetCartVisibility)
			cart.POST("/checkout", h.Checkout)
		}

		shop.DELETE("/session", h.ResetSession)

		// ─────────── Favorites ───────────
		favorites := shop.Group("/favorites")
		{
			favorites.GET("", h.GetFavorites)
			favorites.POST("/:id/toggle", h.ToggleFavorite)
			favorites.DELETE("/:id", h.RemoveFavorite)
			favorites.POST("/:id/cart", h.AddFavoriteToCart)
		}
	}

	r.NoRoute(h.Fallback)
}
