package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pcb-shop/models"
	"pcb-shop/repositories"
)

var ErrItemNotFound = errors.New("cart item not found")

// SnapshotStore persists the serialized cart of one owner.
type SnapshotStore interface {
	Load(ctx context.Context, owner string) ([]byte, error)
	Save(ctx context.Context, owner string, data []byte) error
}

type AddItemInput struct {
	ProductID  string
	VariantID  string
	Quantity   int
	PriceAtAdd int64
	Product    models.ProductSnapshot
	Variant    *models.VariantSnapshot
}

// CartStore is the single source of truth for one user's cart and its checkout selection.
// All methods are safe for concurrent use; each mutation is applied atomically and then
// persisted, last write wins.
type CartStore struct {
	mu       sync.Mutex
	owner    string
	items    []models.CartItem
	selected map[string]bool
	persist  SnapshotStore
	logger   zerolog.Logger
	now      func() time.Time

	// hydrated is set once the persisted snapshot was read or known to be absent.
	// Until then nothing is saved, so a failed read cannot overwrite the stored cart.
	hydrated bool
}

func NewCartStore(owner string, persist SnapshotStore, logger zerolog.Logger) *CartStore {
	return &CartStore{
		owner:    owner,
		selected: make(map[string]bool),
		persist:  persist,
		logger:   logger.With().Str("component", "cart_store").Str("owner", owner).Logger(),
		now:      time.Now,
	}
}

// Rehydrate replaces the in-memory cart with the sanitized persisted snapshot, if any.
// A failed read is returned and leaves the store unhydrated; calling Rehydrate again
// retries and merges lines added in the meantime into the restored cart.
func (s *CartStore) Rehydrate(ctx context.Context) error {
	if s.persist == nil {
		s.mu.Lock()
		s.hydrated = true
		s.mu.Unlock()
		return nil
	}
	if s.Hydrated() {
		return nil
	}

	data, err := s.persist.Load(ctx, s.owner)
	if err != nil && !errors.Is(err, repositories.ErrSnapshotNotFound) {
		s.logger.Warn().Err(err).Msg("cart snapshot load failed, saves held until it succeeds")
		return fmt.Errorf("load cart snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return nil
	}
	s.hydrated = true

	pending := s.snapshot()
	if err == nil {
		s.apply(SanitizeSnapshot(data, s.now()))
	} else {
		s.apply(models.CartSnapshot{})
	}
	if len(pending.Items) > 0 {
		s.merge(pending)
		s.save(ctx)
	}
	return nil
}

// Hydrated reports whether the persisted cart has been loaded.
func (s *CartStore) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// merge folds lines added before hydration into the restored cart, summing quantities of
// matching product+variant lines. Must be called with mu held.
func (s *CartStore) merge(pending models.CartSnapshot) {
	selected := make(map[string]bool, len(pending.SelectedIDs))
	for _, id := range pending.SelectedIDs {
		selected[id] = true
	}
	for _, item := range pending.Items {
		merged := false
		for i := range s.items {
			if s.items[i].ProductID == item.ProductID && s.items[i].VariantID == item.VariantID {
				s.items[i].Quantity += item.Quantity
				s.items[i].UpdatedAt = item.UpdatedAt
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		s.items = append(s.items, item)
		if selected[item.ID] {
			s.selected[item.ID] = true
		}
	}
}

// AddItem merges into an existing product+variant line or creates a selected new line.
// It returns false, without touching the cart, when the input is not addable.
func (s *CartStore) AddItem(ctx context.Context, in AddItemInput) (models.CartItem, bool) {
	if in.ProductID == "" || in.PriceAtAdd <= 0 || in.Quantity < 1 {
		s.logger.Warn().
			Str("product_id", in.ProductID).
			Int64("price_at_add", in.PriceAtAdd).
			Int("quantity", in.Quantity).
			Msg("add to cart rejected")
		return models.CartItem{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for i := range s.items {
		if s.items[i].ProductID == in.ProductID && s.items[i].VariantID == in.VariantID {
			s.items[i].Quantity += in.Quantity
			s.items[i].UpdatedAt = now
			item := s.items[i]
			s.save(ctx)
			return item, true
		}
	}

	product := in.Product
	if product.ID == "" {
		product.ID = in.ProductID
	}
	item := models.CartItem{
		ID:         uuid.NewString(),
		ProductID:  in.ProductID,
		VariantID:  in.VariantID,
		Quantity:   in.Quantity,
		PriceAtAdd: in.PriceAtAdd,
		Product:    product,
		Variant:    in.Variant,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if product.Promotion != nil {
		final := CalculateFinalPrice(in.PriceAtAdd, product.Promotion)
		item.FinalPrice = &final
	}

	s.items = append(s.items, item)
	s.selected[item.ID] = true
	s.save(ctx)
	return item, true
}

// UpdateQuantity sets the quantity of a line; a quantity of zero or less removes it.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	s.items[idx].Quantity = quantity
	s.items[idx].UpdatedAt = s.now()
	s.save(ctx)
	return nil
}

func (s *CartStore) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	delete(s.selected, itemID)
	s.save(ctx)
	return nil
}

// RemoveItems drops every listed line, ignoring ids that are already gone.
func (s *CartStore) RemoveItems(ctx context.Context, itemIDs []string) {
	drop := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if drop[item.ID] {
			delete(s.selected, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	s.save(ctx)
}

func (s *CartStore) ToggleSelectItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(itemID) < 0 {
		return ErrItemNotFound
	}
	if s.selected[itemID] {
		delete(s.selected, itemID)
	} else {
		s.selected[itemID] = true
	}
	s.save(ctx)
	return nil
}

// SelectAll checks or unchecks the given lines, or every line when ids is empty.
// Unknown ids are ignored.
func (s *CartStore) SelectAll(ctx context.Context, checked bool, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := ids
	if len(targets) == 0 {
		targets = make([]string, 0, len(s.items))
		for _, item := range s.items {
			targets = append(targets, item.ID)
		}
	}

	for _, id := range targets {
		if s.indexOf(id) < 0 {
			continue
		}
		if checked {
			s.selected[id] = true
		} else {
			delete(s.selected, id)
		}
	}
	s.save(ctx)
}

func (s *CartStore) ClearSelectedItems(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = make(map[string]bool)
	s.save(ctx)
}

func (s *CartStore) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, item := range s.items {
		total += item.LineTotal()
	}
	return total
}

func (s *CartStore) SelectedTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, item := range s.items {
		if s.selected[item.ID] {
			total += item.LineTotal()
		}
	}
	return total
}

func (s *CartStore) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.items...)
}

// SelectedItems returns the selected lines in cart order.
func (s *CartStore) SelectedItems() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.CartItem{}
	for _, item := range s.items {
		if s.selected[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

func (s *CartStore) IsSelected(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[itemID]
}

func (s *CartStore) View() models.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := models.CartView{
		Items:       append([]models.CartItem{}, s.items...),
		SelectedIDs: s.selectedIDs(),
	}
	for _, item := range s.items {
		view.ItemCount += item.Quantity
		view.TotalPrice += item.LineTotal()
		if s.selected[item.ID] {
			view.SelectedTotal += item.LineTotal()
		}
	}
	return view
}

// Snapshot returns a deep enough copy of the cart to restore it later.
func (s *CartStore) Snapshot() models.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *CartStore) snapshot() models.CartSnapshot {
	return models.CartSnapshot{
		Items:       append([]models.CartItem{}, s.items...),
		SelectedIDs: s.selectedIDs(),
	}
}

// Restore replaces the cart with snap, typically to roll back an optimistic change.
func (s *CartStore) Restore(ctx context.Context, snap models.CartSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(snap)
	s.save(ctx)
}

func (s *CartStore) apply(snap models.CartSnapshot) {
	s.items = append([]models.CartItem{}, snap.Items...)
	s.selected = make(map[string]bool, len(snap.SelectedIDs))
	for _, id := range snap.SelectedIDs {
		if s.indexOf(id) >= 0 {
			s.selected[id] = true
		}
	}
}

func (s *CartStore) indexOf(itemID string) int {
	for i := range s.items {
		if s.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (s *CartStore) selectedIDs() []string {
	ids := []string{}
	for _, item := range s.items {
		if s.selected[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// save must be called with mu held.
func (s *CartStore) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if !s.hydrated {
		s.logger.Debug().Msg("cart snapshot not loaded yet, save skipped")
		return
	}
	data, err := json.Marshal(models.CartSnapshot{Items: s.items, SelectedIDs: s.selectedIDs()})
	if err != nil {
		s.logger.Error().Err(err).Msg("cart snapshot encode failed")
		return
	}
	if err := s.persist.Save(ctx, s.owner, data); err != nil {
		s.logger.Warn().Err(err).Msg("cart snapshot save failed")
	}
}
