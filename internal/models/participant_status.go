package models

import "time"

// ParticipantStatus is the durable mirror of a participant's detection flag and name.
// It is keyed by (MeetingID, ParticipantID), upserted on every join and status
// update, and never deleted when the participant leaves.
type ParticipantStatus struct {
	ID uint `gorm:"primaryKey" json:"-"`

	MeetingID     string `gorm:"type:text;not null;uniqueIndex:idx_status_meeting_participant" json:"meeting_id"`
	ParticipantID string `gorm:"type:text;not null;uniqueIndex:idx_status_meeting_participant" json:"participant_id"`

	ParticipantName  string    `gorm:"type:text" json:"participant_name"`
	DetectionEnabled bool      `json:"detection_enabled"`
	LastUpdate       time.Time `json:"last_update"`
}
