package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mandibooks/mandibooks/internal/catalog"
)

const (
	// TaskLowStockScan triggers the nightly low-stock sweep.
	TaskLowStockScan = "catalog:lowstock"
)

// LowStockScanPayload carries scheduling metadata.
type LowStockScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs an Asynq task for the low-stock sweep.
func NewLowStockScanTask(at time.Time) (*asynq.Task, error) {
	payload := LowStockScanPayload{ScheduledFor: at}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// LowStockScanner walks the catalog and logs every item at or below its
// threshold. Alert delivery can hang off these log lines later.
type LowStockScanner struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewLowStockScanner builds LowStockScanner.
func NewLowStockScanner(catalogService *catalog.Service, logger *slog.Logger) *LowStockScanner {
	return &LowStockScanner{catalog: catalogService, logger: logger}
}

// Handle processes TaskLowStockScan tasks.
func (s *LowStockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	items, err := s.catalog.LowStock(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		s.logger.Warn("item at or below low stock threshold",
			slog.String("item", it.Name),
			slog.Float64("stock_bags", it.StockBags),
			slog.Float64("threshold_bags", it.LowStockThreshold))
	}
	s.logger.Info("low stock scan finished", slog.Int("flagged", len(items)))
	return nil
}
