package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mandibooks/mandibooks/internal/ledger"
)

const (
	// TaskLedgerWarmup precomputes the party ledger views so the first
	// morning request does not pay the fold.
	TaskLedgerWarmup = "ledger:warmup"
)

// LedgerWarmupPayload carries scheduling metadata.
type LedgerWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLedgerWarmupTask constructs an Asynq task for ledger cache warmup.
func NewLedgerWarmupTask(at time.Time) (*asynq.Task, error) {
	payload := LedgerWarmupPayload{ScheduledFor: at}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerWarmup, body, asynq.Queue(QueueDefault)), nil
}

// LedgerWarmer recomputes both ledger views into the cache.
type LedgerWarmer struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewLedgerWarmer builds LedgerWarmer.
func NewLedgerWarmer(ledgerService *ledger.Service, logger *slog.Logger) *LedgerWarmer {
	return &LedgerWarmer{ledger: ledgerService, logger: logger}
}

// Handle processes TaskLedgerWarmup tasks.
func (w *LedgerWarmer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	for _, kind := range []ledger.PartyKind{ledger.PartyCustomer, ledger.PartySupplier} {
		parties, err := w.ledger.Parties(ctx, kind)
		if err != nil {
			return err
		}
		w.logger.Info("ledger view warmed",
			slog.String("kind", string(kind)),
			slog.Int("parties", len(parties)))
	}
	return nil
}
