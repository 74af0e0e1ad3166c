package models

import "strings"

// Role of a live participant.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// ParseRole normalises a client-supplied role; anything unrecognised is a student.
func ParseRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleTutor {
		return RoleTutor
	}
	return RoleStudent
}

// Participant is the live, connection-scoped entry held by the room registry.
type Participant struct {
	ParticipantID    string
	ConnectionID     string
	Name             string
	Role             Role
	DetectionEnabled bool
}

// ParticipantView is the wire form of a Participant.
type ParticipantView struct {
	ParticipantID    string `json:"participant_id"`
	ParticipantName  string `json:"participant_name"`
	Role             Role   `json:"role"`
	DetectionEnabled bool   `json:"detection_enabled"`
}

// View returns the wire form, without the connection id.
func (p Participant) View() ParticipantView {
	return ParticipantView{
		ParticipantID:    p.ParticipantID,
		ParticipantName:  p.Name,
		Role:             p.Role,
		DetectionEnabled: p.DetectionEnabled,
	}
}
