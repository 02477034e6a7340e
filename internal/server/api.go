package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	errx "github.com/terra-tattva/storefront/internal/core/error"
	"github.com/terra-tattva/storefront/internal/storefront/catalog"
	"github.com/terra-tattva/storefront/internal/storefront/model"
	logx "github.com/terra-tattva/storefront/pkg/logger"
)

type productView struct {
	model.Product
	DiscountPercent int      `json:"discountPercent"`
	Gallery         []string `json:"gallery"`
}

func viewProduct(p model.Product) productView {
	return productView{Product: p, DiscountPercent: p.DiscountPercent(), Gallery: p.Gallery()}
}

func viewProducts(products []model.Product) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = viewProduct(p)
	}
	return out
}

// GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// GET /api/ping
func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": h.cfg.PingMessage})
}

// GET /api/demo
func (h *Handlers) Demo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": demoMessage})
}

// GET /api/products?category=&q=&limit=
func (h *Handlers) ListProducts(c *gin.Context) {
	category := c.DefaultQuery("category", catalog.AllCategories)
	query, searching := c.GetQuery("q")
	if !searching {
		c.JSON(http.StatusOK, viewProducts(h.catalog.Filter(category)))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, errx.BadRequest(err, "invalid limit"))
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, viewProducts(h.catalog.Search(query, category, limit)))
}

// GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.productParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewProduct(p))
}

// GET /api/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Categories)
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errx.BadRequest(err, "invalid product id")
	}
	return id, nil
}

func (h *Handlers) lookup(id int) (model.Product, error) {
	p, ok := h.catalog.ByID(id)
	if !ok {
		return model.Product{}, errx.NotFound("product not found")
	}
	return p, nil
}

func (h *Handlers) productParam(c *gin.Context) (model.Product, error) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return model.Product{}, err
	}
	return h.lookup(id)
}

func respondError(c *gin.Context, err error) {
	status, msg := errx.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
