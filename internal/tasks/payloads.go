package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants keep queue producers and consumers in agreement.
const (
	TypeApplicationSubmitted = "email:application_submitted"
)

// ApplicationSubmittedPayload carries the minimum needed to send both
// notification emails for a new application.
type ApplicationSubmittedPayload struct {
	ApplicationID uint   `json:"application_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewApplicationSubmittedTask builds the notification task for an application.
func NewApplicationSubmittedTask(applicationID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ApplicationSubmittedPayload{
		ApplicationID: applicationID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeApplicationSubmitted, payload), nil
}
