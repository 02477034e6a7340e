package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	errx "github.com/terra-tattva/storefront/internal/core/error"
	"github.com/terra-tattva/storefront/internal/storefront/model"
)

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = errx.BadRequest(nil, "cart is empty")

// MaxLineQuantity caps a single cart line. Larger sums saturate.
const MaxLineQuantity = 9999

func clampQuantity(q int) int {
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}

// Products is the slice of the catalog the store needs.
type Products interface {
	ByID(id int) (model.Product, bool)
	InOrder(ids []int) []model.Product
}

// Store holds one session's cart and favorites and writes both slots
// through to the repository after every mutation.
//
// A Store is not safe for concurrent use; the session manager serializes access.
type Store struct {
	session  string
	repo     model.SlotRepository
	slots    model.SlotConfig
	products Products
	notifier Notifier

	cart      []model.CartLine
	favorites []int
	cartOpen  bool

	onMalformed func(*MalformedStateError)
}

type Option func(*Store)

// WithNotifier routes confirmations to n instead of discarding them.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithMalformedHook is called for every slot discarded during hydration.
func WithMalformedHook(fn func(*MalformedStateError)) Option {
	return func(s *Store) { s.onMalformed = fn }
}

// New returns an empty store. Call Hydrate to load persisted state.
func New(session string, repo model.SlotRepository, slots model.SlotConfig, products Products, opts ...Option) *Store {
	s := &Store{
		session:   session,
		repo:      repo,
		slots:     slots,
		products:  products,
		notifier:  discard{},
		cart:      []model.CartLine{},
		favorites: []int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) findLine(productID int) int {
	for i, line := range s.cart {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) favoriteIndex(productID int) int {
	for i, id := range s.favorites {
		if id == productID {
			return i
		}
	}
	return -1
}

type snapshot struct {
	cart      []model.CartLine
	favorites []int
	cartOpen  bool
}

func (s *Store) snapshot() snapshot {
	return snapshot{cart: s.Cart(), favorites: s.Favorites(), cartOpen: s.cartOpen}
}

// commit persists the current state and emits notes. When the write fails the
// state is rolled back to prev so a retried request is not applied twice.
func (s *Store) commit(ctx context.Context, prev snapshot, notes ...model.Notification) error {
	if err := s.persist(ctx); err != nil {
		s.cart, s.favorites, s.cartOpen = prev.cart, prev.favorites, prev.cartOpen
		return err
	}
	for _, n := range notes {
		s.notifier.Notify(n)
	}
	return nil
}

// AddToCart increments the product's line by quantity, or appends a new line.
// Quantities below one are treated as one; a line never exceeds MaxLineQuantity.
func (s *Store) AddToCart(ctx context.Context, product model.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	quantity = clampQuantity(quantity)
	prev := s.snapshot()

	if i := s.findLine(product.ID); i >= 0 {
		s.cart[i].Quantity = clampQuantity(s.cart[i].Quantity + quantity)
		n := s.cart[i].Quantity
		return s.commit(ctx, prev, model.Notification{
			Title:       "Quantity Updated!",
			Description: fmt.Sprintf("%s - Quantity: %d - Total: ₹%s", product.Name, n, s.cart[i].LineTotal()),
		})
	}

	s.cart = append(s.cart, model.CartLine{Product: product, Quantity: quantity})
	desc := fmt.Sprintf("%s has been added to your cart.", product.Name)
	if quantity > 1 {
		desc = fmt.Sprintf("%s (%dx) has been added to your cart.", product.Name, quantity)
	}
	return s.commit(ctx, prev, model.Notification{Title: "Added to Cart!", Description: desc})
}

// AddFromFavorites adds one unit of a favorited product to the cart.
func (s *Store) AddFromFavorites(ctx context.Context, product model.Product) error {
	prev := s.snapshot()
	if i := s.findLine(product.ID); i >= 0 {
		s.cart[i].Quantity = clampQuantity(s.cart[i].Quantity + 1)
		return s.commit(ctx, prev, model.Notification{
			Title:       "Quantity Updated!",
			Description: fmt.Sprintf("%s quantity increased to %d", product.Name, s.cart[i].Quantity),
		})
	}

	s.cart = append(s.cart, model.CartLine{Product: product, Quantity: 1})
	return s.commit(ctx, prev, model.Notification{
		Title:       "Added to Cart!",
		Description: fmt.Sprintf("%s has been added to your cart.", product.Name),
	})
}

// BuyNow adds the product and opens the cart for checkout.
func (s *Store) BuyNow(ctx context.Context, product model.Product, quantity int) error {
	if err := s.AddToCart(ctx, product, quantity); err != nil {
		return err
	}
	s.cartOpen = true
	s.notifier.Notify(model.Notification{
		Title:       "Ready for Checkout!",
		Description: fmt.Sprintf("%s has been added to your cart. Opening cart for checkout...", product.Name),
	})
	return nil
}

// UpdateQuantity sets a line's quantity exactly, capped at MaxLineQuantity.
// Zero or less removes the line. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, productID)
	}
	i := s.findLine(productID)
	if i < 0 {
		return nil
	}
	quantity = clampQuantity(quantity)
	prev := s.snapshot()
	s.cart[i].Quantity = quantity
	return s.commit(ctx, prev, model.Notification{
		Title:       "Quantity Updated!",
		Description: fmt.Sprintf("%s quantity set to %d", s.cart[i].Product.Name, quantity),
	})
}

// RemoveFromCart drops the product's line if present.
func (s *Store) RemoveFromCart(ctx context.Context, productID int) error {
	i := s.findLine(productID)
	if i < 0 {
		return nil
	}
	prev := s.snapshot()
	name := s.cart[i].Product.Name
	s.cart = append(s.cart[:i], s.cart[i+1:]...)
	return s.commit(ctx, prev, model.Notification{
		Title:       "Removed from Cart",
		Description: fmt.Sprintf("%s has been removed from your cart.", name),
	})
}

// ToggleFavorite removes the id if favorited, otherwise adds it.
func (s *Store) ToggleFavorite(ctx context.Context, productID int) error {
	name := s.productName(productID)
	prev := s.snapshot()
	if i := s.favoriteIndex(productID); i >= 0 {
		s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
		return s.commit(ctx, prev, model.Notification{
			Title:       "Removed from Favorites",
			Description: fmt.Sprintf("%s has been removed from your favorites.", name),
		})
	}
	s.favorites = append(s.favorites, productID)
	return s.commit(ctx, prev, model.Notification{
		Title:       "Added to Favorites",
		Description: fmt.Sprintf("%s has been added to your favorites.", name),
	})
}

// RemoveFromFavorites drops the id if present.
func (s *Store) RemoveFromFavorites(ctx context.Context, productID int) error {
	i := s.favoriteIndex(productID)
	if i < 0 {
		return nil
	}
	prev := s.snapshot()
	s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
	return s.commit(ctx, prev, model.Notification{
		Title:       "Removed from Favorites",
		Description: fmt.Sprintf("%s has been removed from your favorites.", s.productName(productID)),
	})
}

// Checkout snapshots the cart, empties it and closes the cart view.
// Favorites are untouched. Nothing is charged or stored as an order.
func (s *Store) Checkout(ctx context.Context) (model.Receipt, error) {
	if len(s.cart) == 0 {
		return model.Receipt{}, ErrEmptyCart
	}
	receipt := model.Receipt{
		Total:     s.CartTotal(),
		ItemCount: s.CartItemCount(),
		Lines:     s.Cart(),
	}

	prev := s.snapshot()
	s.cart = []model.CartLine{}
	s.cartOpen = false
	err := s.commit(ctx, prev, model.Notification{
		Title:       "Order Placed Successfully!",
		Description: fmt.Sprintf("Thank you for your order! Total: ₹%s - Items: %d", receipt.Total, receipt.ItemCount),
	})
	if err != nil {
		return model.Receipt{}, err
	}
	return receipt, nil
}

// CartTotal is the sum of price times quantity over all lines.
func (s *Store) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.cart {
		total = total.Add(line.LineTotal())
	}
	return total
}

// CartItemCount is the total number of units, not lines.
func (s *Store) CartItemCount() int {
	count := 0
	for _, line := range s.cart {
		count += line.Quantity
	}
	return count
}

// Cart returns a copy of the lines in first-added order.
func (s *Store) Cart() []model.CartLine {
	out := make([]model.CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

// Favorites returns a copy of the favorited ids in the order they were added.
func (s *Store) Favorites() []int {
	out := make([]int, len(s.favorites))
	copy(out, s.favorites)
	return out
}

func (s *Store) IsFavorite(productID int) bool {
	return s.favoriteIndex(productID) >= 0
}

// FavoriteProducts returns the favorited products in catalog order.
func (s *Store) FavoriteProducts() []model.Product {
	return s.products.InOrder(s.favorites)
}

func (s *Store) CartOpen() bool {
	return s.cartOpen
}

func (s *Store) SetCartOpen(open bool) {
	s.cartOpen = open
}

func (s *Store) productName(productID int) string {
	if p, ok := s.products.ByID(productID); ok {
		return p.Name
	}
	if i := s.findLine(productID); i >= 0 {
		return s.cart[i].Product.Name
	}
	return fmt.Sprintf("Product #%d", productID)
}
