package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errx "github.com/terra-tattva/storefront/internal/core/error"
	"github.com/terra-tattva/storefront/internal/storefront/model"
	"github.com/terra-tattva/storefront/internal/storefront/session"
)

type CartItemInput struct {
	ProductID int `json:"productId" binding:"required"`
	Quantity  int `json:"quantity" binding:"max=9999"`
}

type QuantityInput struct {
	Quantity *int `json:"quantity" binding:"required,max=9999"`
}

type VisibilityInput struct {
	Open *bool `json:"open" binding:"required"`
}

type lineView struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Description   string   `json:"description"`
	Quantity      int      `json:"quantity"`
	LineTotal     float64  `json:"lineTotal"`
}

type cartView struct {
	Items     []lineView           `json:"items"`
	Total     float64              `json:"total"`
	ItemCount int                  `json:"itemCount"`
	IsOpen    bool                 `json:"isOpen"`
	Toasts    []model.Notification `json:"toasts"`
}

type favoritesView struct {
	IDs      []int                `json:"ids"`
	Products []productView        `json:"products"`
	Toasts   []model.Notification `json:"toasts"`
}

type receiptView struct {
	Total     float64              `json:"total"`
	ItemCount int                  `json:"itemCount"`
	Items     []lineView           `json:"items"`
	Toasts    []model.Notification `json:"toasts"`
}

func viewLines(lines []model.CartLine) []lineView {
	out := make([]lineView, len(lines))
	for i, l := range lines {
		out[i] = lineView{
			ID:            l.Product.ID,
			Name:          l.Product.Name,
			Price:         l.Product.Price,
			OriginalPrice: l.Product.OriginalPrice,
			Image:         l.Product.Image,
			Description:   l.Product.Description,
			Quantity:      l.Quantity,
			LineTotal:     l.LineTotal().InexactFloat64(),
		}
	}
	return out
}

func viewCart(s session.Session) cartView {
	return cartView{
		Items:     viewLines(s.Cart()),
		Total:     s.CartTotal().InexactFloat64(),
		ItemCount: s.CartItemCount(),
		IsOpen:    s.CartOpen(),
		Toasts:    s.Notifications(),
	}
}

func (h *Handlers) viewFavorites(s session.Session) favoritesView {
	return favoritesView{
		IDs:      s.Favorites(),
		Products: viewProducts(s.FavoriteProducts()),
		Toasts:   s.Notifications(),
	}
}

// withSession runs fn for the request's session and maps failures to JSON errors.
func (h *Handlers) withSession(c *gin.Context, fn func(session.Session) error) {
	sessionID := c.GetString(ctxKeySessionID)
	if err := h.sessions.With(c.Request.Context(), sessionID, fn); err != nil {
		respondError(c, err)
	}
}

// GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	h.withSession(c, func(s session.Session) error {
		c.JSON(http.StatusOK, viewCart(s))
		return nil
	})
}

func (h *Handlers) bindCartItem(c *gin.Context) (model.Product, int, error) {
	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return model.Product{}, 0, errx.BadRequest(err, "invalid input: "+err.Error())
	}
	p, err := h.lookup(input.ProductID)
	if err != nil {
		return model.Product{}, 0, err
	}
	return p, input.Quantity, nil
}

// POST /api/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	p, qty, err := h.bindCartItem(c)
	if err != nil {
		respondError(c, err)
		return
	}
	h.withSession(c, func(s session.Session) error {
		if err := s.AddToCart(c.Request.Context(), p, qty); err != nil {
			return err
		}
		c.JSON(http.StatusOK, viewCart(s))
		return nil
	})
}

// POST /api/cart/buy-now
func (h *Handlers) BuyNow(c *gin.Context) {
	p, qty, err := h.bindCartItem(c)
	if err != nil {
		respondError(c, err)
		return
	}
	h.withSession(c, func(s session.Session) error {
		if err := s.BuyNow(c.Request.Context(), p, qty); err != nil {
			return err
		}
		c.JSON(http.StatusOK, viewCart(s))
		return nil
	})
}

// PUT /api/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	var input QuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, errx.BadRequest(err, "invalid input: "+err.Error()))
		return
	}
	h.withSession(c, func(s session.Session) error {
		if err := s.UpdateQuantity(c.Request.Context(), id, *input.Quantity); err != nil {
			return err
		}
		c.JSON(http.StatusOK, viewCart(s))
		return nil
	})
}

// DELETE /api/cart/items/:id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.withSession(c, func(s session.Session) error {
		if err := s.RemoveFromCart(c.Request.Context(), id); err != nil {
			return err
		}
		c.JSON(http.StatusOK, viewCart(s))
		return nil
	})
}

// PUT /api/cart/visibility
func (h *Handlers) SetCartVisibility(c *gin.Context) {
	var input VisibilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, errx.BadRequest(err, "invalid input: "+err.Error()))
		return
	}
	h.withSession(c, func(s session.Session) error {
		s.SetCartOpen(*input.Open)
		c.JSON(http.StatusOK, viewCart(s))
		return nil
	})
}

// POST /api/cart/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	h.withSession(c, func(s session.Session) error {
		receipt, err := s.Checkout(c.Request.Context())
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, receiptView{
			Total:     receipt.Total.InexactFloat64(),
			ItemCount: receipt.ItemCount,
			Items:     viewLines(receipt.Lines),
			Toasts:    s.Notifications(),
		})
		return nil
	})
}

// GET /api/favorites
func (h *Handlers) GetFavorites(c *gin.Context) {
	h.withSession(c, func(s session.Session) error {
		c.JSON(http.StatusOK, h.viewFavorites(s))
		return nil
	})
}

// POST /api/favorites/:id/toggle
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	p, err := h.productParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	h.withSession(c, func(s session.Session) error {
		if err := s.ToggleFavorite(c.Request.Context(), p.ID); err != nil {
			return err
		}
		c.JSON(http.StatusOK, h.viewFavorites(s))
		return nil
	})
}

// DELETE /api/favorites/:id
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.withSession(c, func(s session.Session) error {
		if err := s.RemoveFromFavorites(c.Request.Context(), id); err != nil {
			return err
		}
		c.JSON(http.StatusOK, h.viewFavorites(s))
		return nil
	})
}

// POST /api/favorites/:id/cart
func (h *Handlers) AddFavoriteToCart(c *gin.Context) {
	p, err := h.productParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	h.withSession(c, func(s session.Session) error {
		if err := s.AddFromFavorites(c.Request.Context(), p); err != nil {
			return err
		}
		c.JSON(http.StatusOK, viewCart(s))
		return nil
	})
}

// DELETE /api/session
func (h *Handlers) ResetSession(c *gin.Context) {
	sessionID := c.GetString(ctxKeySessionID)
	if err := h.sessions.Reset(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
