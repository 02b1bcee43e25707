package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDocumentDispatch is the task type for delivering a finished
	// billing document to its party.
	TaskTypeDocumentDispatch = "billing:dispatch"
)

// DocumentDispatchPayload identifies the document to deliver.
type DocumentDispatchPayload struct {
	DocumentType string `json:"document_type"`
	DocumentID   string `json:"document_id"`
	PartyName    string `json:"party_name"`
	PhoneNumber  string `json:"phone_number"`
}

// NewDocumentDispatchTask constructs an Asynq task.
func NewDocumentDispatchTask(payload DocumentDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDocumentDispatch, data), nil
}

// HandleDocumentDispatchTask processes TaskTypeDocumentDispatch tasks.
func HandleDocumentDispatchTask(ctx context.Context, t *asynq.Task) error {
	var payload DocumentDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: render the document and push it over WhatsApp/SMS.
	fmt.Printf("[jobs] dispatch %s %s to %s\n", payload.DocumentType, payload.DocumentID, payload.PartyName)
	return nil
}
