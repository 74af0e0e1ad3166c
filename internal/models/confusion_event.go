package models

import "time"

// ConfusionEvent is one confirmed-confusion occurrence for a participant.
// Rows are append-only; the only field ever updated is InterventionBy,
// and only while it is still NULL.
type ConfusionEvent struct {
	// ID is the auto-increment record id, also the tie-breaker for intervention matching.
	ID uint `gorm:"primaryKey" json:"id"`

	// MeetingID and ParticipantID identify whose confusion was recorded.
	MeetingID     string `gorm:"type:text;not null;index:idx_confusion_lookup" json:"meeting_id"`
	ParticipantID string `gorm:"type:text;not null;index:idx_confusion_lookup" json:"participant_id"`
	// ParticipantName is the display name at the time of the event.
	ParticipantName string `gorm:"type:text" json:"participant_name"`
	// ConfusionRate is the externally computed confusion level, passed through untouched.
	ConfusionRate float64 `json:"confusion_rate"`
	// Confirmed reports whether the participant confirmed being confused.
	Confirmed bool `json:"confirmed"`
	// InterventionBy is the tutor who acknowledged the event; NULL until then.
	InterventionBy *string `gorm:"type:text;index" json:"intervention_by"`
	// OccurredAt is when the event was recorded.
	OccurredAt time.Time `gorm:"not null;index" json:"timestamp"`
}

// Resolved reports whether a tutor has already intervened on this event.
func (e ConfusionEvent) Resolved() bool {
	return e.InterventionBy != nil
}
