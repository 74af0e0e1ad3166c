package storage

import (
	"context"
	"encoding/json"
	"errors"

	"confusense/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func activeSessionKey(meetingID string) string {
	return "session:active:" + meetingID
}

// cachedSession returns the cached active session, or nil on a miss or any Redis error.
func (s *Service) cachedSession(ctx context.Context, meetingID string) *models.Session {
	if s.Redis == nil {
		return nil
	}

	raw, err := s.Redis.Get(ctx, activeSessionKey(meetingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("meeting_id", meetingID).Msg("session cache read failed")
		return nil
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("meeting_id", meetingID).Msg("session cache entry corrupt")
		return nil
	}
	return &session
}

func (s *Service) cacheSession(ctx context.Context, session *models.Session) {
	if s.Redis == nil || !session.IsActive {
		return
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, activeSessionKey(session.MeetingID), raw, s.SessionTTL).Err(); err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("meeting_id", session.MeetingID).Msg("session cache write failed")
	}
}

func (s *Service) forgetSession(ctx context.Context, meetingID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, activeSessionKey(meetingID)).Err(); err != nil {
		log.Warn().Err(err).Str("module", "storage").Str("meeting_id", meetingID).Msg("session cache delete failed")
	}
}
