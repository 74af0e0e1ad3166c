package handler_test

import (
	"context"
	"time"

	"confusense/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UpsertParticipantStatus(ctx context.Context, meetingID, participantID, name string, detectionEnabled bool, now time.Time) error {
	return m.Called(ctx, meetingID, participantID, name, detectionEnabled, now).Error(0)
}

func (m *MockStorage) InsertConfusionEvent(ctx context.Context, meetingID, participantID, name string, rate float64, confirmed bool, now time.Time) (uint, error) {
	args := m.Called(ctx, meetingID, participantID, name, rate, confirmed, now)
	return uint(args.Int(0)), args.Error(1)
}

func (m *MockStorage) MarkLatestIntervention(ctx context.Context, meetingID, participantID, tutorName string) (bool, error) {
	args := m.Called(ctx, meetingID, participantID, tutorName)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) FindActiveSession(ctx context.Context, meetingID string) (*models.Session, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockStorage) CreateSession(ctx context.Context, sessionID, meetingID, hostName string) (*models.Session, error) {
	args := m.Called(ctx, sessionID, meetingID, hostName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockStorage) EndSession(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListSessions(ctx context.Context, meetingID string) ([]models.Session, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Session), args.Error(1)
}

func (m *MockStorage) ListConfusionEvents(ctx context.Context, meetingID string) ([]models.ConfusionEvent, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConfusionEvent), args.Error(1)
}

func (m *MockStorage) ListParticipantStatuses(ctx context.Context, meetingID string) ([]models.ParticipantStatus, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ParticipantStatus), args.Error(1)
}
