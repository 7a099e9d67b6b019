// internal/domain/cart/store.go
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is the cart state container. It has a single writer (the request
// handling goroutine for its session) and computes derived values from
// current state on every read. Mutations are written through to the
// snapshot store; when persistence fails the store keeps operating on its
// in-memory state and logs the failure instead of surfacing it.
//
// Concurrent store instances for the same cart ID (multiple open tabs)
// are not coordinated and resolve by last write wins on persistence.
type Store struct {
	id        string
	snapshots SnapshotStore
	log       *logrus.Entry

	mu               sync.Mutex
	items            []Item
	selectedCurrency string
	drawerOpen       bool
	degraded         bool
}

// NewStore creates a cart store for the given cart ID, hydrating state from
// the snapshot store. A missing, unreadable or version-mismatched snapshot
// hydrates as an empty cart.
func NewStore(ctx context.Context, id string, snapshots SnapshotStore, logger *logrus.Logger) *Store {
	s := &Store{
		id:               id,
		snapshots:        snapshots,
		log:              logger.WithField("cart_id", id),
		selectedCurrency: "",
	}

	snap, err := snapshots.Load(ctx, id)
	if err != nil {
		s.log.WithError(err).Warn("Cart snapshot load failed, starting empty")
		s.degraded = true
		return s
	}
	if snap == nil {
		return s
	}
	if snap.Version != SnapshotVersion {
		s.log.WithFields(logrus.Fields{
			"snapshot_version": snap.Version,
			"expected_version": SnapshotVersion,
		}).Warn("Cart snapshot version mismatch, starting empty")
		return s
	}

	s.items = snap.Items
	s.selectedCurrency = snap.SelectedCurrency
	return s
}

// ID returns the cart identifier
func (s *Store) ID() string {
	return s.id
}

// AddItem adds a product to the cart. Adding a product that is already in
// the cart increments its quantity by one. The cart drawer opens as a side
// effect so the customer sees the updated contents.
func (s *Store) AddItem(ctx context.Context, p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ItemID == p.ID {
			s.items[i].Quantity++
			s.drawerOpen = true
			s.persistLocked(ctx)
			return
		}
	}

	s.items = append(s.items, Item{
		ItemID:   p.ID,
		Name:     p.Name,
		Format:   p.Format,
		Price:    p.Price,
		Currency: p.Currency,
		Quantity: 1,
		AddedAt:  time.Now().UTC(),
	})
	s.drawerOpen = true
	s.persistLocked(ctx)
}

// RemoveItem removes the item with the given ID. No-op if absent.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, itemID)
}

// UpdateQuantity overwrites the quantity of the item with the given ID.
// A quantity of zero or less removes the item instead of persisting a
// non-positive quantity.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(ctx, itemID)
		return
	}

	for i := range s.items {
		if s.items[i].ItemID == itemID {
			s.items[i].Quantity = quantity
			s.persistLocked(ctx)
			return
		}
	}
}

// Clear empties the item sequence. The selected currency is a separate
// persisted field and survives a clear; the snapshot is only deleted when
// there is nothing left worth keeping.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if s.selectedCurrency != "" {
		s.persistLocked(ctx)
		return
	}

	if err := s.snapshots.Delete(ctx, s.id); err != nil {
		s.degraded = true
		s.log.WithError(err).Warn("Cart snapshot delete failed, operating in memory")
	}
}

// Items returns a copy of the current cart lines
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// ItemCount returns the sum of all line quantities, recomputed from state
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns Σ price × quantity, recomputed from state
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subtotal int64
	for _, item := range s.items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

// GetTotals returns derived totals for the current state
func (s *Store) GetTotals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	for _, item := range s.items {
		t.ItemCount += item.Quantity
		t.Subtotal += item.Price * int64(item.Quantity)
	}
	return t
}

// SelectedCurrency returns the display currency chosen by the customer
func (s *Store) SelectedCurrency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedCurrency
}

// SetCurrency records the customer's display currency choice
func (s *Store) SetCurrency(ctx context.Context, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedCurrency = code
	s.persistLocked(ctx)
}

// Drawer visibility is UI state, independent of cart data and never persisted.

// OpenDrawer opens the cart drawer
func (s *Store) OpenDrawer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = true
}

// CloseDrawer closes the cart drawer
func (s *Store) CloseDrawer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = false
}

// ToggleDrawer flips drawer visibility
func (s *Store) ToggleDrawer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = !s.drawerOpen
}

// DrawerOpen reports drawer visibility
func (s *Store) DrawerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawerOpen
}

// Degraded reports whether the store has fallen back to in-memory-only
// operation after a persistence failure.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) removeLocked(ctx context.Context, itemID string) {
	for i := range s.items {
		if s.items[i].ItemID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked(ctx)
			return
		}
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	snap := &Snapshot{
		Version:          SnapshotVersion,
		SelectedCurrency: s.selectedCurrency,
		Items:            s.items,
		UpdatedAt:        time.Now().UTC(),
	}

	if err := s.snapshots.Save(ctx, s.id, snap); err != nil {
		s.degraded = true
		s.log.WithError(err).Warn("Cart snapshot save failed, operating in memory")
	}
}
