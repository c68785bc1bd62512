package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-shop/models"
	"pcb-shop/repositories"
)

func newTestStore(t *testing.T) (*CartStore, *repositories.MemoryCartSnapshotRepository) {
	t.Helper()
	persist := repositories.NewMemoryCartSnapshotRepository()
	store := NewCartStore("user-1", persist, testLogger)
	require.NoError(t, store.Rehydrate(context.Background()))
	return store, persist
}

// flakySnapshots fails the first failLoads reads and then serves the wrapped store.
type flakySnapshots struct {
	SnapshotStore
	mu        sync.Mutex
	failLoads int
}

func (f *flakySnapshots) Load(ctx context.Context, owner string) ([]byte, error) {
	f.mu.Lock()
	if f.failLoads > 0 {
		f.failLoads--
		f.mu.Unlock()
		return nil, errRemote
	}
	f.mu.Unlock()
	return f.SnapshotStore.Load(ctx, owner)
}

func item(productID string, price int64, qty int) AddItemInput {
	return AddItemInput{
		ProductID:  productID,
		Quantity:   qty,
		PriceAtAdd: price,
		Product:    models.ProductSnapshot{ID: productID, Name: "Product " + productID, Price: price},
	}
}

func TestAddItem_MergesSameProductAndVariant(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	quantities := []int{1, 4, 2}
	for _, q := range quantities {
		_, ok := store.AddItem(ctx, item("p-1", 10000, q))
		require.True(t, ok)
	}

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestAddItem_DifferentVariantIsNewLine(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	in := item("p-1", 10000, 1)
	store.AddItem(ctx, in)
	in.VariantID = "v-red"
	store.AddItem(ctx, in)

	assert.Len(t, store.Items(), 2)
}

func TestAddItem_NewLineIsSelected(t *testing.T) {
	store, _ := newTestStore(t)

	added, ok := store.AddItem(context.Background(), item("p-1", 10000, 1))
	require.True(t, ok)

	assert.True(t, store.IsSelected(added.ID))
	assert.Equal(t, int64(10000), store.SelectedTotal())
}

func TestAddItem_RejectsInvalidInput(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cases := map[string]AddItemInput{
		"missing product": item("", 10000, 1),
		"zero price":      item("p-1", 0, 1),
		"negative price":  item("p-1", -5, 1),
		"zero quantity":   item("p-1", 10000, 0),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			added, ok := store.AddItem(ctx, in)
			assert.False(t, ok)
			assert.Empty(t, added.ID)
		})
	}
	assert.Empty(t, store.Items())
}

func TestAddItem_AppliesPromotion(t *testing.T) {
	store, _ := newTestStore(t)

	in := item("p-1", 100000, 2)
	in.Product.Promotion = &models.Promotion{DiscountType: models.DiscountPercent, DiscountValue: 10}
	added, ok := store.AddItem(context.Background(), in)
	require.True(t, ok)

	require.NotNil(t, added.FinalPrice)
	assert.Equal(t, int64(90000), *added.FinalPrice)
	assert.Equal(t, int64(180000), store.TotalPrice())
}

func TestUpdateQuantity_NonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -1} {
		store, _ := newTestStore(t)
		ctx := context.Background()
		added, _ := store.AddItem(ctx, item("p-1", 10000, 2))

		require.NoError(t, store.UpdateQuantity(ctx, added.ID, q))

		assert.Empty(t, store.Items())
		assert.False(t, store.IsSelected(added.ID))
	}
}

func TestUpdateQuantity_Replaces(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	added, _ := store.AddItem(ctx, item("p-1", 10000, 2))

	require.NoError(t, store.UpdateQuantity(ctx, added.ID, 5))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.False(t, items[0].UpdatedAt.Before(added.UpdatedAt))
}

func TestUpdateQuantity_UnknownItem(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.UpdateQuantity(context.Background(), "missing", 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem_PrunesSelection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	a, _ := store.AddItem(ctx, item("p-1", 10000, 1))
	b, _ := store.AddItem(ctx, item("p-2", 20000, 1))

	require.NoError(t, store.RemoveItem(ctx, a.ID))

	assert.Equal(t, []string{b.ID}, store.View().SelectedIDs)
	assert.ErrorIs(t, store.RemoveItem(ctx, a.ID), ErrItemNotFound)
}

func TestTotals(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := store.AddItem(ctx, item("p-1", 10000, 2))
	promo := item("p-2", 50000, 3)
	promo.Product.Promotion = &models.Promotion{DiscountType: models.DiscountFixed, DiscountValue: 5000}
	store.AddItem(ctx, promo)
	store.AddItem(ctx, item("p-3", 1000, 1))

	var want int64
	for _, it := range store.Items() {
		price := it.PriceAtAdd
		if it.FinalPrice != nil {
			price = *it.FinalPrice
		}
		want += price * int64(it.Quantity)
	}
	assert.Equal(t, want, store.TotalPrice())
	assert.Equal(t, int64(20000+135000+1000), store.TotalPrice())

	require.NoError(t, store.ToggleSelectItem(ctx, a.ID))
	assert.Equal(t, int64(136000), store.SelectedTotal())
}

func TestSelection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	a, _ := store.AddItem(ctx, item("p-1", 10000, 1))
	b, _ := store.AddItem(ctx, item("p-2", 20000, 1))

	store.SelectAll(ctx, false)
	assert.Empty(t, store.SelectedItems())

	store.SelectAll(ctx, true, b.ID, "ghost")
	assert.Equal(t, []string{b.ID}, store.View().SelectedIDs)

	require.NoError(t, store.ToggleSelectItem(ctx, a.ID))
	assert.Len(t, store.SelectedItems(), 2)
	assert.ErrorIs(t, store.ToggleSelectItem(ctx, "ghost"), ErrItemNotFound)

	store.ClearSelectedItems(ctx)
	assert.Equal(t, int64(0), store.SelectedTotal())
	assert.Len(t, store.Items(), 2)
}

func TestPersistAndRehydrate(t *testing.T) {
	store, persist := newTestStore(t)
	ctx := context.Background()
	a, _ := store.AddItem(ctx, item("p-1", 10000, 2))
	store.AddItem(ctx, item("p-2", 20000, 1))
	require.NoError(t, store.ToggleSelectItem(ctx, a.ID))

	raw, err := persist.Load(ctx, "user-1")
	require.NoError(t, err)
	var snap models.CartSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Len(t, snap.Items, 2)
	assert.Len(t, snap.SelectedIDs, 1)

	restored := NewCartStore("user-1", persist, testLogger)
	require.NoError(t, restored.Rehydrate(ctx))

	want, got := store.View(), restored.View()
	assert.Equal(t, want.SelectedIDs, got.SelectedIDs)
	assert.Equal(t, want.TotalPrice, got.TotalPrice)
	assert.Equal(t, want.SelectedTotal, got.SelectedTotal)
	require.Len(t, got.Items, 2)
	for i := range want.Items {
		assert.Equal(t, want.Items[i].ID, got.Items[i].ID)
		assert.Equal(t, want.Items[i].Quantity, got.Items[i].Quantity)
		assert.True(t, want.Items[i].CreatedAt.Equal(got.Items[i].CreatedAt))
	}
}

func TestRehydrate_CorruptSnapshot(t *testing.T) {
	persist := repositories.NewMemoryCartSnapshotRepository()
	ctx := context.Background()
	require.NoError(t, persist.Save(ctx, "user-1", []byte(`{"items":[{"product_id":"p-1","quantity":"two"}],"selected_ids":"all"}`)))

	store := NewCartStore("user-1", persist, testLogger)
	require.NoError(t, store.Rehydrate(ctx))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, unknownProductName, items[0].Product.Name)
	assert.Empty(t, store.SelectedItems())
}

func TestRehydrate_FailedLoadKeepsStoredCart(t *testing.T) {
	seed, persist := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"p-1", "p-2", "p-3"} {
		seed.AddItem(ctx, item(id, 10000, 1))
	}

	flaky := &flakySnapshots{SnapshotStore: persist, failLoads: 1}
	store := NewCartStore("user-1", flaky, testLogger)
	require.ErrorIs(t, store.Rehydrate(ctx), errRemote)
	assert.False(t, store.Hydrated())

	store.AddItem(ctx, item("p-4", 10000, 1))
	store.AddItem(ctx, item("p-1", 10000, 2))

	untouched := NewCartStore("user-1", persist, testLogger)
	require.NoError(t, untouched.Rehydrate(ctx))
	assert.Len(t, untouched.Items(), 3, "nothing is saved before the stored cart was read")

	require.NoError(t, store.Rehydrate(ctx))
	assert.True(t, store.Hydrated())
	require.Len(t, store.Items(), 4)
	assert.Equal(t, 3, store.Items()[0].Quantity)

	reloaded := NewCartStore("user-1", persist, testLogger)
	require.NoError(t, reloaded.Rehydrate(ctx))
	assert.Len(t, reloaded.Items(), 4)
	assert.Len(t, reloaded.SelectedItems(), 4)
}

func TestSnapshotRestore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	store.AddItem(ctx, item("p-1", 10000, 1))

	before := store.Snapshot()
	store.AddItem(ctx, item("p-2", 20000, 1))
	store.ClearSelectedItems(ctx)

	store.Restore(ctx, before)
	assert.Len(t, store.Items(), 1)
	assert.Equal(t, int64(10000), store.SelectedTotal())
}

func TestRemoveItems(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	a, _ := store.AddItem(ctx, item("p-1", 10000, 1))
	b, _ := store.AddItem(ctx, item("p-2", 20000, 1))
	c, _ := store.AddItem(ctx, item("p-3", 30000, 1))

	store.RemoveItems(ctx, []string{a.ID, c.ID, "ghost"})

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, []string{b.ID}, store.View().SelectedIDs)
}
