package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mandibooks/mandibooks/internal/shared"
	"github.com/mandibooks/mandibooks/internal/units"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	repo  *Repository
	audit AuditPort
}

// NewService builds Service.
func NewService(repo *Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateItemInput describes a new item. Opening stock is entered in
// kilograms like every other user-facing quantity.
type CreateItemInput struct {
	Name                string
	Category            Category
	PurchasePrice       float64
	SalePrice           float64
	OpeningStockKg      float64
	LowStockThresholdKg float64
}

// UpdateItemInput carries optional field updates.
type UpdateItemInput struct {
	PurchasePrice       *float64
	SalePrice           *float64
	LowStockThresholdKg *float64
}

// Create validates and persists a new item.
func (s *Service) Create(ctx context.Context, input CreateItemInput) (Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Item{}, fmt.Errorf("%w: item name required", shared.ErrInvalidInput)
	}
	if strings.EqualFold(name, BardanaName) {
		return Item{}, fmt.Errorf("%w: %q is reserved", shared.ErrInvalidInput, BardanaName)
	}
	if !ValidCategory(input.Category) {
		return Item{}, ErrInvalidCategory
	}
	if input.PurchasePrice < 0 || input.SalePrice < 0 {
		return Item{}, ErrNegativePrice
	}
	if input.OpeningStockKg < 0 || input.LowStockThresholdKg < 0 {
		return Item{}, fmt.Errorf("%w: quantities must be >= 0", shared.ErrInvalidInput)
	}

	now := time.Now().UTC()
	item := Item{
		ID:                uuid.NewString(),
		Name:              name,
		Category:          input.Category,
		PurchasePrice:     input.PurchasePrice,
		SalePrice:         input.SalePrice,
		StockBags:         units.KgToBags(input.OpeningStockKg),
		LowStockThreshold: units.KgToBags(input.LowStockThresholdKg),
		AsOfDate:          now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return Item{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "catalog:create",
			Entity:   "item",
			EntityID: item.ID,
			Meta:     map[string]any{"name": item.Name, "category": item.Category},
		})
	}
	return item, nil
}

// List returns all items.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Get returns an item by id.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.Get(ctx, id)
}

// Update applies partial changes to prices and threshold.
func (s *Service) Update(ctx context.Context, id string, input UpdateItemInput) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if input.PurchasePrice != nil {
		if *input.PurchasePrice < 0 {
			return Item{}, ErrNegativePrice
		}
		item.PurchasePrice = *input.PurchasePrice
	}
	if input.SalePrice != nil {
		if *input.SalePrice < 0 {
			return Item{}, ErrNegativePrice
		}
		item.SalePrice = *input.SalePrice
	}
	if input.LowStockThresholdKg != nil {
		if *input.LowStockThresholdKg < 0 {
			return Item{}, fmt.Errorf("%w: threshold must be >= 0", shared.ErrInvalidInput)
		}
		item.LowStockThreshold = units.KgToBags(*input.LowStockThresholdKg)
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes an item. The universal packaging item cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.IsUniversal {
		return fmt.Errorf("%w: universal item cannot be deleted", shared.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "catalog:delete",
			Entity:   "item",
			EntityID: id,
			Meta:     map[string]any{"name": item.Name},
		})
	}
	return nil
}

// LowStock lists items at or below their low-stock threshold.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var low []Item
	for _, it := range items {
		if it.StockBags <= it.LowStockThreshold {
			low = append(low, it)
		}
	}
	return low, nil
}
