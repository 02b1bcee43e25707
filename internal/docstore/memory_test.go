package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestMissingCollectionReadsEmpty(t *testing.T) {
	store := NewMemoryStore()
	docs, err := Load[doc](context.Background(), store, CollectionItems)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := []doc{{ID: "1", Name: "Wheat"}, {ID: "2", Name: "Rice"}}
	require.NoError(t, Save(ctx, store, CollectionItems, in))

	out, err := Load[doc](ctx, store, CollectionItems)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := Save(ctx, tx, CollectionItems, []doc{{ID: "1"}}); err != nil {
			return err
		}
		return Save(ctx, tx, CollectionStockTransactions, []doc{{ID: "t1"}})
	})
	require.NoError(t, err)

	items, err := Load[doc](ctx, store, CollectionItems)
	require.NoError(t, err)
	require.Len(t, items, 1)
	txns, err := Load[doc](ctx, store, CollectionStockTransactions)
	require.NoError(t, err)
	require.Len(t, txns, 1)
}

func TestWithTxDiscardsOnError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := Save(ctx, tx, CollectionItems, []doc{{ID: "1"}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := Load[doc](ctx, store, CollectionItems)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestTxReadsSeeStagedWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := Save(ctx, tx, CollectionItems, []doc{{ID: "1"}}); err != nil {
			return err
		}
		staged, err := Load[doc](ctx, tx, CollectionItems)
		if err != nil {
			return err
		}
		require.Len(t, staged, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, CollectionItems, []json.RawMessage{json.RawMessage(`{"id":3}`)}))

	_, err := Load[doc](ctx, store, CollectionItems)
	require.Error(t, err)
}
