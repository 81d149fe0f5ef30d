package worker

import (
	"context"
	"fmt"
	"log/slog"

	"famiglia/internal/backend"
	"famiglia/internal/events"
)

// NotifyWorker turns family events into backend notifications for the other
// family members. It authenticates with the service token, not a user
// session.
type NotifyWorker struct {
	api   *backend.Client
	token string
}

func New(api *backend.Client, serviceToken string) *NotifyWorker {
	return &NotifyWorker{
		api:   api,
		token: serviceToken,
	}
}

// HandleEvent processes one family event. Unknown event types are dropped
// without error so old queue entries never wedge the consumer.
func (w *NotifyWorker) HandleEvent(ctx context.Context, e events.Event) error {
	message, ok := messageFor(e)
	if !ok {
		slog.WarnContext(ctx, "Dropping event of unknown type",
			"event_id", e.ID,
			"type", e.Type)
		return nil
	}

	body := map[string]any{
		"familyUuid":    e.FamilyUUID,
		"kind":          e.Type,
		"message":       message,
		"actorId":       e.ActorID,
		"excludeUserId": e.ActorID, // the actor already knows what they did
	}
	if err := w.api.Post(ctx, w.token, "/notifications", body, nil); err != nil {
		return fmt.Errorf("create notification for event %s: %w", e.ID, err)
	}

	slog.InfoContext(ctx, "Notification created",
		"event_id", e.ID,
		"type", e.Type,
		"family_uuid", e.FamilyUUID)
	return nil
}

func messageFor(e events.Event) (string, bool) {
	switch e.Type {
	case events.TypeExpenseCreated:
		return fmt.Sprintf("%s님이 새 지출을 등록했습니다", e.ActorName), true
	case events.TypeIncomeCreated:
		return fmt.Sprintf("%s님이 새 수입을 등록했습니다", e.ActorName), true
	case events.TypeInvitationCreated:
		return fmt.Sprintf("%s님이 새 구성원을 초대했습니다", e.ActorName), true
	case events.TypeInvitationAccepted:
		return fmt.Sprintf("%s님이 가족에 합류했습니다", e.ActorName), true
	}
	return "", false
}
