package catalog

import (
	"fmt"
	"time"

	"github.com/mandibooks/mandibooks/internal/shared"
)

// Category enumerates item categories.
type Category string

const (
	// CategoryPrimary marks mainline trade goods.
	CategoryPrimary Category = "Primary"
	// CategoryKirana marks general-store goods.
	CategoryKirana Category = "Kirana"
)

// BardanaName is the reserved name of the single universal packaging item.
// Its stock moves with the aggregate kilogram volume of every sale and
// purchase rather than with its own line items.
const BardanaName = "Bardana"

// Item is a catalog product. Stock is persisted in fractional bags; the
// conversion to kilograms happens only at the edges.
type Item struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Category          Category  `json:"category"`
	PurchasePrice     float64   `json:"purchasePrice"`
	SalePrice         float64   `json:"salePrice"`
	StockBags         float64   `json:"stockBags"`
	LowStockThreshold float64   `json:"lowStockThreshold"`
	AsOfDate          time.Time `json:"asOfDate"`
	IsUniversal       bool      `json:"isUniversal"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ErrItemNotFound indicates no item matches the given identity.
var ErrItemNotFound = fmt.Errorf("catalog: item %w", shared.ErrNotFound)

// ErrDuplicateName indicates an item with the same name already exists.
// Names are compared case-insensitively.
var ErrDuplicateName = fmt.Errorf("catalog: item name: %w", shared.ErrDuplicate)

// ErrInvalidCategory indicates an unknown category value.
var ErrInvalidCategory = fmt.Errorf("%w: unknown category", shared.ErrInvalidInput)

// ErrNegativePrice indicates a negative purchase or sale price.
var ErrNegativePrice = fmt.Errorf("%w: price must be >= 0", shared.ErrInvalidInput)

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	return c == CategoryPrimary || c == CategoryKirana
}
