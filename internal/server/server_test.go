package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-tattva/storefront/internal/core"
	errx "github.com/terra-tattva/storefront/internal/core/error"
	"github.com/terra-tattva/storefront/internal/storefront/catalog"
	"github.com/terra-tattva/storefront/internal/storefront/model"
	"github.com/terra-tattva/storefront/internal/storefront/repo"
	"github.com/terra-tattva/storefront/internal/storefront/session"
)

var testSlots = model.SlotConfig{Cart: "terraTattvaCart", Favorites: "terraTattvaFavorites"}

type client struct {
	t      *testing.T
	engine http.Handler
	cookie *http.Cookie
}

func newClient(t *testing.T, cfg Config, r model.SlotRepository) *client {
	t.Helper()
	if cfg.Environment == "" {
		cfg.Environment = core.Testing
	}
	cat := catalog.MustLoad()
	return &client{t: t, engine: New(cfg, cat, session.NewManager(r, testSlots, cat))}
}

func (cl *client) do(method, target, body string) *httptest.ResponseRecorder {
	cl.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}

	w := httptest.NewRecorder()
	cl.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "shop_session_id" {
			cl.cookie = c
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPingAndDemo(t *testing.T) {
	cl := newClient(t, Config{PingMessage: "pong"}, repo.NewMemorySlotRepository())

	w := cl.do(http.MethodGet, "/api/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = cl.do(http.MethodGet, "/api/demo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hello from the storefront server"}`, w.Body.String())

	w = cl.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPingDefaultsMessage(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())
	w := cl.do(http.MethodGet, "/api/ping", "")
	assert.JSONEq(t, `{"message":"ping"}`, w.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())

	products := decode[[]productView](t, cl.do(http.MethodGet, "/api/products", ""))
	assert.Len(t, products, 3)

	products = decode[[]productView](t, cl.do(http.MethodGet, "/api/products?category=Pottery", ""))
	assert.Empty(t, products)

	products = decode[[]productView](t, cl.do(http.MethodGet, "/api/products?q=plate", ""))
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].ID)
	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodGet, "/api/products?q=x&limit=-1", "").Code)

	w := cl.do(http.MethodGet, "/api/products/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[productView](t, w)
	assert.Equal(t, "Planter", p.Name)
	assert.Equal(t, p.Images, p.Gallery)
	assert.NotEmpty(t, p.Gallery)

	assert.Equal(t, http.StatusNotFound, cl.do(http.MethodGet, "/api/products/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodGet, "/api/products/abc", "").Code)

	categories := decode[[]string](t, cl.do(http.MethodGet, "/api/categories", ""))
	assert.Equal(t, []string{"All", "Pottery", "Decorative"}, categories)
}

func TestCartFlow(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())

	w := cl.do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, cl.cookie, "session cookie is issued")
	empty := decode[cartView](t, w)
	assert.Empty(t, empty.Items)

	cl.do(http.MethodPost, "/api/cart/items", `{"productId":1}`)
	cl.do(http.MethodPost, "/api/cart/items", `{"productId":2,"quantity":1}`)
	w = cl.do(http.MethodPost, "/api/cart/items", `{"productId":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	cart := decode[cartView](t, w)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 1, cart.Items[0].ID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 700.0, cart.Items[0].LineTotal)
	assert.Equal(t, 900.0, cart.Total)
	assert.Equal(t, 3, cart.ItemCount)
	require.Len(t, cart.Toasts, 1)
	assert.Equal(t, "Quantity Updated!", cart.Toasts[0].Title)

	cart = decode[cartView](t, cl.do(http.MethodPut, "/api/cart/items/2", `{"quantity":0}`))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Removed from Cart", cart.Toasts[0].Title)

	cart = decode[cartView](t, cl.do(http.MethodPut, "/api/cart/visibility", `{"open":true}`))
	assert.True(t, cart.IsOpen)

	w = cl.do(http.MethodPost, "/api/cart/checkout", "")
	require.Equal(t, http.StatusOK, w.Code)
	receipt := decode[receiptView](t, w)
	assert.Equal(t, 700.0, receipt.Total)
	assert.Equal(t, 2, receipt.ItemCount)
	require.Len(t, receipt.Toasts, 1)
	assert.Equal(t, "Thank you for your order! Total: ₹700 - Items: 2", receipt.Toasts[0].Description)

	cart = decode[cartView](t, cl.do(http.MethodGet, "/api/cart", ""))
	assert.Empty(t, cart.Items)
	assert.False(t, cart.IsOpen)

	w = cl.do(http.MethodPost, "/api/cart/checkout", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"cart is empty"}`, w.Body.String())
}

func TestCartInputValidation(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())

	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodPost, "/api/cart/items", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodPost, "/api/cart/items", `not json`).Code)
	assert.Equal(t, http.StatusNotFound, cl.do(http.MethodPost, "/api/cart/items", `{"productId":99}`).Code)
	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodPut, "/api/cart/items/1", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodDelete, "/api/cart/items/x", "").Code)
}

func TestCartQuantityLimit(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())

	w := cl.do(http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":9223372036854775807}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = cl.do(http.MethodPut, "/api/cart/items/1", `{"quantity":10000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	cl.do(http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":9999}`)
	cart := decode[cartView](t, cl.do(http.MethodPost, "/api/cart/items", `{"productId":1,"quantity":1}`))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 9999, cart.Items[0].Quantity)
	assert.Equal(t, 9999, cart.ItemCount)
	assert.Equal(t, 350.0*9999, cart.Total)
}

func TestResetSession(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())

	cl.do(http.MethodPost, "/api/cart/items", `{"productId":1}`)
	cl.do(http.MethodPost, "/api/favorites/2/toggle", "")

	w := cl.do(http.MethodDelete, "/api/session", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	cart := decode[cartView](t, cl.do(http.MethodGet, "/api/cart", ""))
	assert.Empty(t, cart.Items)
	favs := decode[favoritesView](t, cl.do(http.MethodGet, "/api/favorites", ""))
	assert.Empty(t, favs.IDs)
}

func TestBuyNowOpensCart(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())

	cart := decode[cartView](t, cl.do(http.MethodPost, "/api/cart/buy-now", `{"productId":3,"quantity":2}`))
	assert.True(t, cart.IsOpen)
	assert.Equal(t, 2, cart.ItemCount)
	require.Len(t, cart.Toasts, 2)
	assert.Equal(t, "Ready for Checkout!", cart.Toasts[1].Title)
}

func TestFavoritesFlow(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())

	cl.do(http.MethodPost, "/api/favorites/3/toggle", "")
	favs := decode[favoritesView](t, cl.do(http.MethodPost, "/api/favorites/1/toggle", ""))
	assert.Equal(t, []int{3, 1}, favs.IDs)
	require.Len(t, favs.Products, 2)
	assert.Equal(t, 1, favs.Products[0].ID, "products follow catalog order")
	assert.Equal(t, "Added to Favorites", favs.Toasts[0].Title)

	cart := decode[cartView](t, cl.do(http.MethodPost, "/api/favorites/3/cart", ""))
	assert.Equal(t, 1, cart.ItemCount)

	favs = decode[favoritesView](t, cl.do(http.MethodDelete, "/api/favorites/3", ""))
	assert.Equal(t, []int{1}, favs.IDs)

	favs = decode[favoritesView](t, cl.do(http.MethodDelete, "/api/favorites/3", ""))
	assert.Empty(t, favs.Toasts, "removing an absent favorite is silent")

	assert.Equal(t, http.StatusNotFound, cl.do(http.MethodPost, "/api/favorites/77/toggle", "").Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	r := repo.NewMemorySlotRepository()
	cat := catalog.MustLoad()
	engine := New(Config{Environment: core.Testing}, cat, session.NewManager(r, testSlots, cat))
	alice := &client{t: t, engine: engine}
	bob := &client{t: t, engine: engine}

	alice.do(http.MethodPost, "/api/cart/items", `{"productId":1}`)
	cart := decode[cartView](t, bob.do(http.MethodGet, "/api/cart", ""))
	assert.Empty(t, cart.Items)
	assert.NotEqual(t, alice.cookie.Value, bob.cookie.Value)
}

func TestInvalidSessionCookieIsReplaced(t *testing.T) {
	cl := newClient(t, Config{}, repo.NewMemorySlotRepository())
	cl.cookie = &http.Cookie{Name: "shop_session_id", Value: "*"}

	cl.do(http.MethodGet, "/api/cart", "")
	assert.NotEqual(t, "*", cl.cookie.Value)
}

type downRepo struct{}

func (downRepo) Load(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, errx.WrapRedis(errors.New("dial tcp: connection refused"))
}

func (downRepo) Save(context.Context, string, string, []byte) error {
	return errx.WrapRedis(errors.New("dial tcp: connection refused"))
}

func (downRepo) Clear(context.Context, string) error { return nil }

func TestStorageFailureIsBadGateway(t *testing.T) {
	cl := newClient(t, Config{}, downRepo{})

	w := cl.do(http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"redis operation failed"}`, w.Body.String())
}

func TestSPAFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>shop</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	cl := newClient(t, Config{Environment: core.Production, StaticDir: dir}, repo.NewMemorySlotRepository())

	w := cl.do(http.MethodGet, "/product/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shop")

	w = cl.do(http.MethodGet, "/assets/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console.log")

	w = cl.do(http.MethodGet, "/../../etc/passwd", "")
	assert.NotContains(t, w.Body.String(), "root:")

	w = cl.do(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())

	w = cl.do(http.MethodGet, "/api/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNoSPAOutsideProduction(t *testing.T) {
	cl := newClient(t, Config{Environment: core.Development, StaticDir: t.TempDir()}, repo.NewMemorySlotRepository())
	assert.Equal(t, http.StatusNotFound, cl.do(http.MethodGet, "/about", "").Code)
}
