package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mandibooks/mandibooks/internal/docstore"
)

// AuditLog represents a record stored in the audit-logs collection.
type AuditLog struct {
	ID       string         `json:"id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"at"`
}

// AuditLogger appends records to the audit-logs collection.
type AuditLogger struct {
	store docstore.Store
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(store docstore.Store) *AuditLogger {
	return &AuditLogger{store: store}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.At.IsZero() {
		log.At = time.Now().UTC()
	}
	return l.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		logs, err := docstore.Load[AuditLog](ctx, tx, docstore.CollectionAuditLogs)
		if err != nil {
			return err
		}
		logs = append(logs, log)
		return docstore.Save(ctx, tx, docstore.CollectionAuditLogs, logs)
	})
}
