package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/terra-tattva/storefront/internal/storefront/model"
	logx "github.com/terra-tattva/storefront/pkg/logger"
)

// MalformedStateError reports a slot whose content could not be parsed.
// Hydration recovers from it by starting with an empty collection.
type MalformedStateError struct {
	Session string
	Slot    string
	Err     error
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed persisted state in slot %q: %v", e.Slot, e.Err)
}

func (e *MalformedStateError) Unwrap() error {
	return e.Err
}

// Hydrate replaces the in-memory state with the content of both slots.
// Absent slots read as empty. Unparsable slots are logged and read as empty.
// Only storage transport failures are returned.
func (s *Store) Hydrate(ctx context.Context) error {
	records, err := loadSlot[[]model.LineRecord](ctx, s, s.slots.Cart)
	if err != nil {
		return err
	}
	favorites, err := loadSlot[[]int](ctx, s, s.slots.Favorites)
	if err != nil {
		return err
	}

	s.cart = normalizeCart(s.session, records)
	s.favorites = normalizeFavorites(s.session, favorites)
	return nil
}

// loadSlot decodes one slot. A partially decoded value is never returned.
func loadSlot[T any](ctx context.Context, s *Store, slot string) (T, error) {
	var zero T
	data, ok, err := s.repo.Load(ctx, s.session, slot)
	if err != nil {
		return zero, fmt.Errorf("load slot %s: %w", slot, err)
	}
	if !ok {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		malformed := &MalformedStateError{Session: s.session, Slot: slot, Err: err}
		logx.Warn().Err(malformed).Str("session", s.session).Str("slot", slot).Msg("discarding malformed slot")
		if s.onMalformed != nil {
			s.onMalformed(malformed)
		}
		return zero, nil
	}
	return v, nil
}

// persist writes both slots. Called after every mutation.
func (s *Store) persist(ctx context.Context) error {
	records := make([]model.LineRecord, len(s.cart))
	for i, line := range s.cart {
		records[i] = line.Record()
	}
	favorites := s.favorites
	if favorites == nil {
		favorites = []int{}
	}

	if err := s.saveSlot(ctx, s.slots.Cart, records); err != nil {
		return err
	}
	return s.saveSlot(ctx, s.slots.Favorites, favorites)
}

func (s *Store) saveSlot(ctx context.Context, slot string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", slot, err)
	}
	if err := s.repo.Save(ctx, s.session, slot, data); err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

// normalizeCart merges duplicate ids, drops lines below quantity one and caps
// quantities at MaxLineQuantity.
func normalizeCart(session string, records []model.LineRecord) []model.CartLine {
	lines := make([]model.CartLine, 0, len(records))
	index := make(map[int]int, len(records))
	for _, r := range records {
		if r.Quantity < 1 {
			logx.Warn().Str("session", session).Int("productID", r.ID).Int("quantity", r.Quantity).Msg("dropping persisted line with non-positive quantity")
			continue
		}
		if i, dup := index[r.ID]; dup {
			logx.Warn().Str("session", session).Int("productID", r.ID).Msg("merging duplicate persisted line")
			lines[i].Quantity = clampQuantity(lines[i].Quantity + clampQuantity(r.Quantity))
			continue
		}
		if r.Quantity > MaxLineQuantity {
			logx.Warn().Str("session", session).Int("productID", r.ID).Int("quantity", r.Quantity).Msg("capping persisted line quantity")
		}
		index[r.ID] = len(lines)
		line := r.Line()
		line.Quantity = clampQuantity(line.Quantity)
		lines = append(lines, line)
	}
	return lines
}

func normalizeFavorites(session string, ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			logx.Warn().Str("session", session).Int("productID", id).Msg("dropping duplicate persisted favorite")
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
