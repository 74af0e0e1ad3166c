package models_test

import (
	"confusense/backend/internal/models"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestSessionBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestSessionBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	session := &models.Session{
		MeetingID: "abc-defg-hij",
		HostName:  "Alice",
		IsActive:  true,
	}
	assert.Empty(t, session.SessionID, "SessionID should be empty before BeforeCreate")

	// Act - nil *gorm.DB is acceptable for this hook
	err := session.BeforeCreate(nil)

	// Assert
	assert.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	parsed, parseErr := uuid.Parse(session.SessionID)
	assert.NoError(t, parseErr, "SessionID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
	assert.False(t, session.StartTime.IsZero(), "StartTime should be filled in")
}

// TestSessionBeforeCreate_PreservesExistingValues verifies the hook doesn't overwrite supplied fields.
func TestSessionBeforeCreate_PreservesExistingValues(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	session := &models.Session{SessionID: "host-chosen-id", MeetingID: "m1", StartTime: start}

	err := session.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, "host-chosen-id", session.SessionID)
	assert.Equal(t, start, session.StartTime)
}

// TestStructTags guards the indexes the storage queries rely on.
func TestStructTags(t *testing.T) {
	statusType := reflect.TypeOf(models.ParticipantStatus{})
	for _, name := range []string{"MeetingID", "ParticipantID"} {
		field, found := statusType.FieldByName(name)
		assert.True(t, found, "%s field should exist", name)
		assert.Contains(t, field.Tag.Get("gorm"), "uniqueIndex:idx_status_meeting_participant",
			"%s should be part of the natural key", name)
	}

	eventType := reflect.TypeOf(models.ConfusionEvent{})
	occurred, found := eventType.FieldByName("OccurredAt")
	assert.True(t, found)
	assert.Equal(t, "timestamp", occurred.Tag.Get("json"))

	sessionType := reflect.TypeOf(models.Session{})
	idField, found := sessionType.FieldByName("SessionID")
	assert.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.Role
	}{
		{"tutor", models.RoleTutor},
		{" Tutor ", models.RoleTutor},
		{"student", models.RoleStudent},
		{"", models.RoleStudent},
		{"admin", models.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ParseRole(tt.in))
		})
	}
}

func TestParticipantView_DropsConnectionID(t *testing.T) {
	p := models.Participant{
		ParticipantID:    "p1",
		ConnectionID:     "conn-1",
		Name:             "Alice",
		Role:             models.RoleTutor,
		DetectionEnabled: true,
	}

	assert.Equal(t, models.ParticipantView{
		ParticipantID:    "p1",
		ParticipantName:  "Alice",
		Role:             models.RoleTutor,
		DetectionEnabled: true,
	}, p.View())
}

func TestConfusionEventResolved(t *testing.T) {
	tutor := "Alice"
	assert.False(t, models.ConfusionEvent{}.Resolved())
	assert.True(t, models.ConfusionEvent{InterventionBy: &tutor}.Resolved())
}
