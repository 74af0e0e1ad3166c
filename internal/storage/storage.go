package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confusense/backend/internal/config"
	"confusense/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage is the persistence collaborator consumed by the relay and the HTTP API.
// Lookups that find nothing return a nil record (or false) and a nil error.
type Storage interface {
	UpsertParticipantStatus(ctx context.Context, meetingID, participantID, name string, detectionEnabled bool, now time.Time) error
	InsertConfusionEvent(ctx context.Context, meetingID, participantID, name string, rate float64, confirmed bool, now time.Time) (uint, error)
	MarkLatestIntervention(ctx context.Context, meetingID, participantID, tutorName string) (bool, error)

	FindActiveSession(ctx context.Context, meetingID string) (*models.Session, error)
	CreateSession(ctx context.Context, sessionID, meetingID, hostName string) (*models.Session, error)
	EndSession(ctx context.Context, sessionID string) (bool, error)

	ListSessions(ctx context.Context, meetingID string) ([]models.Session, error)
	ListConfusionEvents(ctx context.Context, meetingID string) ([]models.ConfusionEvent, error)
	ListParticipantStatuses(ctx context.Context, meetingID string) ([]models.ParticipantStatus, error)
}

// Service implements Storage on Postgres (gorm) with an optional Redis client
// for the active-session cache and the meeting event tap.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client

	SessionTTL time.Duration
	Topic      string
}

// NewStorageService Constructor. rdb may be nil; Redis features are then skipped.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:         db,
		Redis:      rdb,
		SessionTTL: config.DefaultSessionCacheTTL,
		Topic:      config.DefaultEventTopic,
	}
}

// UpsertParticipantStatus inserts or updates the status row keyed by (meeting, participant).
func (s *Service) UpsertParticipantStatus(ctx context.Context, meetingID, participantID, name string, detectionEnabled bool, now time.Time) error {
	rec := models.ParticipantStatus{
		MeetingID:        meetingID,
		ParticipantID:    participantID,
		ParticipantName:  name,
		DetectionEnabled: detectionEnabled,
		LastUpdate:       now,
	}

	// A write older than the stored row is ignored, so last_update never goes back.
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"participant_name", "detection_enabled", "last_update"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "participant_statuses.last_update <= excluded.last_update"},
		}},
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert participant status %s/%s: %w", meetingID, participantID, err)
	}
	return nil
}

// InsertConfusionEvent appends a confusion event and returns its record id.
func (s *Service) InsertConfusionEvent(ctx context.Context, meetingID, participantID, name string, rate float64, confirmed bool, now time.Time) (uint, error) {
	ev := models.ConfusionEvent{
		MeetingID:       meetingID,
		ParticipantID:   participantID,
		ParticipantName: name,
		ConfusionRate:   rate,
		Confirmed:       confirmed,
		OccurredAt:      now,
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		return 0, fmt.Errorf("insert confusion event %s/%s: %w", meetingID, participantID, err)
	}
	return ev.ID, nil
}

// MarkLatestIntervention sets intervention_by on the most recent unresolved event
// of the participant. Ties on occurred_at go to the highest id. It reports whether
// a row was updated; no matching row is not an error.
func (s *Service) MarkLatestIntervention(ctx context.Context, meetingID, participantID, tutorName string) (bool, error) {
	updated := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev models.ConfusionEvent
		err := tx.Where("meeting_id = ? AND participant_id = ? AND intervention_by IS NULL", meetingID, participantID).
			Order("occurred_at DESC").
			Order("id DESC").
			Limit(1).
			Take(&ev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		// The IS NULL guard keeps intervention_by write-once under concurrent interventions.
		res := tx.Model(&models.ConfusionEvent{}).
			Where("id = ? AND intervention_by IS NULL", ev.ID).
			Update("intervention_by", tutorName)
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mark intervention %s/%s: %w", meetingID, participantID, err)
	}
	return updated, nil
}

// FindActiveSession returns the latest active session of a meeting, or nil.
func (s *Service) FindActiveSession(ctx context.Context, meetingID string) (*models.Session, error) {
	if cached := s.cachedSession(ctx, meetingID); cached != nil {
		return cached, nil
	}

	var session models.Session
	err := s.DB.WithContext(ctx).
		Where("meeting_id = ? AND is_active = ?", meetingID, true).
		Order("start_time DESC").
		Limit(1).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active session %s: %w", meetingID, err)
	}

	s.cacheSession(ctx, &session)
	return &session, nil
}

// CreateSession inserts a new active session. An empty sessionID gets a UUID.
func (s *Service) CreateSession(ctx context.Context, sessionID, meetingID, hostName string) (*models.Session, error) {
	session := models.Session{
		SessionID: sessionID,
		MeetingID: meetingID,
		HostName:  hostName,
		StartTime: time.Now().UTC(),
		IsActive:  true,
	}
	if err := s.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session for meeting %s: %w", meetingID, err)
	}

	s.cacheSession(ctx, &session)
	return &session, nil
}

// EndSession marks an active session inactive. It reports false when no active
// session has that id.
func (s *Service) EndSession(ctx context.Context, sessionID string) (bool, error) {
	var session models.Session
	err := s.DB.WithContext(ctx).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find session %s: %w", sessionID, err)
	}

	res := s.DB.WithContext(ctx).Model(&models.Session{}).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"end_time":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("end session %s: %w", sessionID, res.Error)
	}

	s.forgetSession(ctx, session.MeetingID)
	return res.RowsAffected > 0, nil
}

// ListSessions returns every session of a meeting, newest first.
func (s *Service) ListSessions(ctx context.Context, meetingID string) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.DB.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("start_time DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions %s: %w", meetingID, err)
	}
	return sessions, nil
}

// ListConfusionEvents returns the confusion history of a meeting in insertion order.
func (s *Service) ListConfusionEvents(ctx context.Context, meetingID string) ([]models.ConfusionEvent, error) {
	var events []models.ConfusionEvent
	if err := s.DB.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("occurred_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list confusion events %s: %w", meetingID, err)
	}
	return events, nil
}

// ListParticipantStatuses returns everyone who was ever in the meeting.
func (s *Service) ListParticipantStatuses(ctx context.Context, meetingID string) ([]models.ParticipantStatus, error) {
	var statuses []models.ParticipantStatus
	if err := s.DB.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("participant_id ASC").
		Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("list participant statuses %s: %w", meetingID, err)
	}
	return statuses, nil
}
