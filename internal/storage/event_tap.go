package storage

import (
	"context"
	"encoding/json"

	"confusense/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// MeetingChannel is the Redis channel carrying a meeting's relayed frames.
func (s *Service) MeetingChannel(meetingID string) string {
	return s.Topic + meetingID
}

// PublishMeetingEvent mirrors a relayed frame to Redis Pub/Sub. Without a
// Redis client it does nothing.
func (s *Service) PublishMeetingEvent(ctx context.Context, meetingID string, msg models.OutboundMessage) error {
	if s.Redis == nil {
		return nil
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.Redis.Publish(ctx, s.MeetingChannel(meetingID), string(msgBytes)).Err()
}

// SubscribeMeeting subscribes to the frames relayed in one meeting.
func (s *Service) SubscribeMeeting(ctx context.Context, meetingID string) *redis.PubSub {
	return s.Redis.Subscribe(ctx, s.MeetingChannel(meetingID))
}
