package notification

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskTypeDispatchEvent is the asynq task type for dispatching a queued event.
const TaskTypeDispatchEvent = "event:dispatch"

// NewDispatchEventTask creates a new asynq task carrying the event payload.
func NewDispatchEventTask(payload *EventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeDispatchEvent, data), nil
}

// ParseDispatchEventPayload deserializes the task payload.
func ParseDispatchEventPayload(data []byte) (*EventPayload, error) {
	var p EventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling task payload: %w", err)
	}
	return &p, nil
}
