// internal/domain/cart/store_test.go
package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySnapshotStore is an in-memory SnapshotStore for tests
type memorySnapshotStore struct {
	snapshots map[string]*Snapshot
	saveErr   error
	loadErr   error
	deleteErr error
	saves     int
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{snapshots: make(map[string]*Snapshot)}
}

func (m *memorySnapshotStore) Load(ctx context.Context, cartID string) (*Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snapshots[cartID], nil
}

func (m *memorySnapshotStore) Save(ctx context.Context, cartID string, snap *Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snapshots[cartID] = snap
	return nil
}

func (m *memorySnapshotStore) Delete(ctx context.Context, cartID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.snapshots, cartID)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testProduct(id string, price int64) Product {
	return Product{
		ID:       id,
		Name:     "Test Product " + id,
		Format:   "PDF",
		Price:    price,
		Currency: "INR",
	}
}

func TestStoreAddItem(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.AddItem(ctx, testProduct("p1", 49900))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ItemID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, store.DrawerOpen())
}

func TestStoreAddItemTwiceIncrementsQuantity(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.AddItem(ctx, testProduct("p1", 49900))
	store.AddItem(ctx, testProduct("p1", 49900))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, store.ItemCount())
}

func TestStoreSurvivesRehydration(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()

	store := NewStore(ctx, "cart-1", snapshots, testLogger())
	store.AddItem(ctx, testProduct("p1", 49900))
	store.AddItem(ctx, testProduct("p2", 19900))
	store.SetCurrency(ctx, "USD")

	// A new store for the same cart ID hydrates the persisted state,
	// the way a page refresh does.
	reloaded := NewStore(ctx, "cart-1", snapshots, testLogger())

	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ItemID)
	assert.Equal(t, "p2", items[1].ItemID)
	assert.Equal(t, "USD", reloaded.SelectedCurrency())
	assert.False(t, reloaded.DrawerOpen(), "drawer visibility must not survive rehydration")
}

func TestStoreVersionMismatchHydratesEmpty(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	snapshots.snapshots["cart-1"] = &Snapshot{
		Version: SnapshotVersion + 1,
		Items:   []Item{{ItemID: "p1", Quantity: 3}},
	}

	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	assert.Empty(t, store.Items())
	assert.False(t, store.Degraded())
}

func TestStoreLoadFailureHydratesEmptyAndDegraded(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	snapshots.loadErr = errors.New("connection refused")

	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	assert.Empty(t, store.Items())
	assert.True(t, store.Degraded())
}

func TestStoreSaveFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	snapshots.saveErr = errors.New("connection refused")

	store := NewStore(ctx, "cart-1", snapshots, testLogger())
	store.AddItem(ctx, testProduct("p1", 49900))

	// The mutation is not lost, the store just stops being durable.
	assert.Equal(t, 1, store.ItemCount())
	assert.True(t, store.Degraded())
}

func TestStoreUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.AddItem(ctx, testProduct("p1", 49900))
	store.UpdateQuantity(ctx, "p1", 5)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestStoreUpdateQuantityToZeroRemovesItem(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.AddItem(ctx, testProduct("p1", 49900))

	for _, quantity := range []int{0, -1} {
		store.UpdateQuantity(ctx, "p1", quantity)
		assert.Empty(t, store.Items())
		store.AddItem(ctx, testProduct("p1", 49900))
	}
}

func TestStoreRemoveItem(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.AddItem(ctx, testProduct("p1", 49900))
	store.AddItem(ctx, testProduct("p2", 19900))
	store.RemoveItem(ctx, "p1")

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ItemID)

	// Removing an unknown item is a no-op and does not persist
	saves := snapshots.saves
	store.RemoveItem(ctx, "missing")
	assert.Equal(t, saves, snapshots.saves)
}

func TestStoreTotals(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.AddItem(ctx, testProduct("p1", 49900))
	store.AddItem(ctx, testProduct("p1", 49900))
	store.AddItem(ctx, testProduct("p2", 19900))
	store.UpdateQuantity(ctx, "p2", 3)

	totals := store.GetTotals()
	assert.Equal(t, 5, totals.ItemCount)
	assert.Equal(t, int64(2*49900+3*19900), totals.Subtotal)
	assert.Equal(t, totals.Subtotal, store.Subtotal())
	assert.Equal(t, totals.ItemCount, store.ItemCount())
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.AddItem(ctx, testProduct("p1", 49900))
	store.Clear(ctx)

	assert.Empty(t, store.Items())
	assert.Zero(t, store.Subtotal())

	// Clearing removes the snapshot, a refresh starts empty
	reloaded := NewStore(ctx, "cart-1", snapshots, testLogger())
	assert.Empty(t, reloaded.Items())
}

func TestStoreClearKeepsSelectedCurrency(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshotStore()
	store := NewStore(ctx, "cart-1", snapshots, testLogger())

	store.SetCurrency(ctx, "USD")
	store.AddItem(ctx, testProduct("p1", 49900))
	store.Clear(ctx)

	assert.Empty(t, store.Items())
	assert.Equal(t, "USD", store.SelectedCurrency())

	// Only the item sequence is emptied; the currency choice survives
	// a refresh.
	reloaded := NewStore(ctx, "cart-1", snapshots, testLogger())
	assert.Empty(t, reloaded.Items())
	assert.Equal(t, "USD", reloaded.SelectedCurrency())
}

func TestStoreDrawer(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, "cart-1", newMemorySnapshotStore(), testLogger())

	assert.False(t, store.DrawerOpen())
	store.OpenDrawer()
	assert.True(t, store.DrawerOpen())
	store.ToggleDrawer()
	assert.False(t, store.DrawerOpen())
	store.ToggleDrawer()
	store.CloseDrawer()
	assert.False(t, store.DrawerOpen())
}
