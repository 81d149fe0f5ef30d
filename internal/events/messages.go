package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the action layer. The notification worker turns
// them into backend notifications for the other family members.
const (
	TypeExpenseCreated     = "expense.created"
	TypeIncomeCreated      = "income.created"
	TypeInvitationCreated  = "invitation.created"
	TypeInvitationAccepted = "invitation.accepted"
)

// Event is a lightweight fact about something that happened in a family.
// It carries identifiers only; consumers fetch details from the backend.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	FamilyUUID string    `json:"family_uuid"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	Subject    string    `json:"subject"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh id and the current timestamp.
func NewEvent(eventType, familyUUID, actorID, actorName, subject string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		FamilyUUID: familyUUID,
		ActorID:    actorID,
		ActorName:  actorName,
		Subject:    subject,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates an event from JSON bytes.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
