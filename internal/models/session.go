package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session represents a tutoring session hosted in a meeting.
// At most one active session per meeting is intended; the storage layer
// returns the existing active row instead of inserting a second one.
type Session struct {
	// SessionID is the unique identifier of the session (UUID unless supplied by the host).
	SessionID string `gorm:"primaryKey" json:"session_id"`
	// MeetingID is the meeting (room) the session belongs to.
	MeetingID string `gorm:"type:text;not null;index:idx_session_meeting" json:"meeting_id"`
	// HostName is the display name of the tutor who opened the session.
	HostName string `gorm:"type:text" json:"host_name"`
	// StartTime is when the session was created.
	StartTime time.Time `json:"start_time"`
	// EndTime is set when the session is ended explicitly.
	EndTime *time.Time `json:"end_time,omitempty"`
	// IsActive indicates whether the session is still running.
	IsActive bool `gorm:"index:idx_session_meeting" json:"is_active"`
}

// BeforeCreate generates a SessionID and StartTime when they were not supplied.
func (s *Session) BeforeCreate(tx *gorm.DB) (err error) {
	if s.SessionID == "" {
		s.SessionID = uuid.New().String()
	}
	if s.StartTime.IsZero() {
		s.StartTime = time.Now().UTC()
	}
	return
}
