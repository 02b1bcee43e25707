package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandibooks/mandibooks/internal/docstore"
	"github.com/mandibooks/mandibooks/internal/shared"
)

func newTestCatalog(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(docstore.NewMemoryStore()), nil)
}

func TestCreateItemConvertsKilogramsToBags(t *testing.T) {
	svc := newTestCatalog(t)

	item, err := svc.Create(context.Background(), CreateItemInput{
		Name:                "Wheat",
		Category:            CategoryPrimary,
		PurchasePrice:       20,
		SalePrice:           25,
		OpeningStockKg:      90,
		LowStockThresholdKg: 30,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.InDelta(t, 3.0, item.StockBags, 1e-9)
	assert.InDelta(t, 1.0, item.LowStockThreshold, 1e-9)
	assert.False(t, item.IsUniversal)
}

func TestCreateItemRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	svc := newTestCatalog(t)

	_, err := svc.Create(context.Background(), CreateItemInput{Name: "Wheat", Category: CategoryPrimary})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateItemInput{Name: "wheat", Category: CategoryPrimary})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreateItemValidation(t *testing.T) {
	svc := newTestCatalog(t)

	_, err := svc.Create(context.Background(), CreateItemInput{Name: " ", Category: CategoryPrimary})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateItemInput{Name: "Wheat", Category: "Snacks"})
	require.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Create(context.Background(), CreateItemInput{Name: "Wheat", Category: CategoryKirana, SalePrice: -1})
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = svc.Create(context.Background(), CreateItemInput{Name: "bardana", Category: CategoryPrimary})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpdateItemPartialFields(t *testing.T) {
	svc := newTestCatalog(t)

	item, err := svc.Create(context.Background(), CreateItemInput{
		Name:          "Wheat",
		Category:      CategoryPrimary,
		PurchasePrice: 20,
		SalePrice:     25,
	})
	require.NoError(t, err)

	newSale := 28.0
	updated, err := svc.Update(context.Background(), item.ID, UpdateItemInput{SalePrice: &newSale})
	require.NoError(t, err)
	assert.InDelta(t, 28.0, updated.SalePrice, 1e-9)
	assert.InDelta(t, 20.0, updated.PurchasePrice, 1e-9)

	bad := -5.0
	_, err = svc.Update(context.Background(), item.ID, UpdateItemInput{PurchasePrice: &bad})
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = svc.Update(context.Background(), "missing", UpdateItemInput{})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteItemProtectsUniversal(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(NewRepository(store), nil)

	item, err := svc.Create(context.Background(), CreateItemInput{Name: "Wheat", Category: CategoryPrimary})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), item.ID))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	items = append(items, Item{ID: "bardana-id", Name: BardanaName, IsUniversal: true})
	require.NoError(t, docstore.Save(context.Background(), store, docstore.CollectionItems, items))

	err = svc.Delete(context.Background(), "bardana-id")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestLowStockListsItemsAtOrBelowThreshold(t *testing.T) {
	svc := newTestCatalog(t)

	_, err := svc.Create(context.Background(), CreateItemInput{
		Name: "Low", Category: CategoryPrimary, OpeningStockKg: 30, LowStockThresholdKg: 60,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateItemInput{
		Name: "Exact", Category: CategoryPrimary, OpeningStockKg: 60, LowStockThresholdKg: 60,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateItemInput{
		Name: "Healthy", Category: CategoryPrimary, OpeningStockKg: 300, LowStockThresholdKg: 60,
	})
	require.NoError(t, err)

	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(low))
	for _, it := range low {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"Low", "Exact"}, names)
}
