package meetinghub

import (
	"context"

	"confusense/backend/internal/models"
)

// EventTap receives a copy of every room broadcast, for observers outside the
// process (the admin CLI tails it through Redis Pub/Sub).
type EventTap interface {
	PublishMeetingEvent(ctx context.Context, meetingID string, msg models.OutboundMessage) error
}
