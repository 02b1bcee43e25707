package catalog

import (
	"context"
	"strings"

	"github.com/mandibooks/mandibooks/internal/docstore"
)

// Repository persists items in the document store. The store exposes whole
// collections only, so every mutation is a read-modify-write of the full
// item list.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs Repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// List returns all items.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	return docstore.Load[Item](ctx, r.store, docstore.CollectionItems)
}

// Get returns an item by id.
func (r *Repository) Get(ctx context.Context, id string) (Item, error) {
	items, err := r.List(ctx)
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

// FindByName returns the item whose name matches exactly. Stock application
// depends on this exact match; lookups that should tolerate case use
// FindByNameFold.
func (r *Repository) FindByName(ctx context.Context, name string) (Item, error) {
	items, err := r.List(ctx)
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if it.Name == name {
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

// FindByNameFold returns the item whose name matches case-insensitively.
func (r *Repository) FindByNameFold(ctx context.Context, name string) (Item, error) {
	items, err := r.List(ctx)
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return it, nil
		}
	}
	return Item{}, ErrItemNotFound
}

// Insert appends a new item.
func (r *Repository) Insert(ctx context.Context, item Item) error {
	return r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		items, err := docstore.Load[Item](ctx, tx, docstore.CollectionItems)
		if err != nil {
			return err
		}
		for _, it := range items {
			if strings.EqualFold(it.Name, item.Name) {
				return ErrDuplicateName
			}
		}
		items = append(items, item)
		return docstore.Save(ctx, tx, docstore.CollectionItems, items)
	})
}

// Update replaces the item with the same id.
func (r *Repository) Update(ctx context.Context, item Item) error {
	return r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		items, err := docstore.Load[Item](ctx, tx, docstore.CollectionItems)
		if err != nil {
			return err
		}
		for i, it := range items {
			if it.ID == item.ID {
				items[i] = item
				return docstore.Save(ctx, tx, docstore.CollectionItems, items)
			}
		}
		return ErrItemNotFound
	})
}

// Delete removes the item with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		items, err := docstore.Load[Item](ctx, tx, docstore.CollectionItems)
		if err != nil {
			return err
		}
		for i, it := range items {
			if it.ID == id {
				items = append(items[:i], items[i+1:]...)
				return docstore.Save(ctx, tx, docstore.CollectionItems, items)
			}
		}
		return ErrItemNotFound
	})
}
