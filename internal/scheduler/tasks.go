package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskTicketFollowUp = "maintenance.ticket.follow_up"

type TicketFollowUpPayload struct {
	TicketID string `json:"ticketId"`
}

func NewTicketFollowUpTask(payload TicketFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTicketFollowUp, data), nil
}

func ParseTicketFollowUpPayload(task *asynq.Task) (TicketFollowUpPayload, error) {
	var payload TicketFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TicketFollowUpPayload{}, err
	}
	return payload, nil
}
