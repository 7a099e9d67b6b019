// internal/domain/cart/entity.go
package cart

import (
	"context"
	"time"
)

// Product describes a purchasable digital item as presented by the catalog
type Product struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Format   string `json:"format,omitempty"`
	Price    int64  `json:"price" binding:"required,min=0"` // In minor currency units
	Currency string `json:"currency,omitempty"`
}

// Item represents one cart line. At most one Item exists per product ID.
type Item struct {
	ItemID   string    `json:"item_id"`
	Name     string    `json:"name"`
	Format   string    `json:"format,omitempty"`
	Price    int64     `json:"price"`
	Currency string    `json:"currency,omitempty"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// SnapshotVersion is bumped whenever the persisted cart schema changes.
// Snapshots with a different version hydrate as an empty cart.
const SnapshotVersion = 1

// Snapshot is the persisted form of a cart. Drawer visibility is ephemeral
// UI state and is deliberately not part of it.
type Snapshot struct {
	Version          int       `json:"version"`
	SelectedCurrency string    `json:"selected_currency"`
	Items            []Item    `json:"items"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SnapshotStore persists cart snapshots. Load returns (nil, nil) when no
// snapshot exists for the given cart ID.
type SnapshotStore interface {
	Load(ctx context.Context, cartID string) (*Snapshot, error)
	Save(ctx context.Context, cartID string, snap *Snapshot) error
	Delete(ctx context.Context, cartID string) error
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount int   `json:"item_count"` // Sum of all quantities
	Subtotal  int64 `json:"subtotal"`   // Σ price × quantity
}
