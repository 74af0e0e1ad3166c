package models

import "encoding/json"

// Inbound event names.
const (
	EventJoinMeeting             = "join_meeting"
	EventLeaveMeeting            = "leave_meeting"
	EventParticipantStatusUpdate = "participant_status_update"
	EventConfusionUpdate         = "confusion_update"
	EventConfusionConfirmed      = "confusion_confirmed"
	EventIntervention            = "intervention"
)

// Outbound event names. confusion_confirmed and intervention keep their inbound names.
const (
	EventConnected                = "connected"
	EventParticipantJoined        = "participant_joined"
	EventParticipantLeft          = "participant_left"
	EventParticipantsList         = "participants_list"
	EventParticipantStatusChanged = "participant_status_changed"
	EventStudentConfusionUpdate   = "student_confusion_update"
	EventError                    = "error"
)

// InboundMessage is a frame received from a client: {"event": "...", "data": {...}}.
type InboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EventPayload carries the union of fields any inbound event may set.
// Pointer fields distinguish "absent" from the zero value.
type EventPayload struct {
	MeetingID        string   `json:"meeting_id"`
	ParticipantID    string   `json:"participant_id"`
	ParticipantName  string   `json:"participant_name"`
	Role             string   `json:"role"`
	DetectionEnabled *bool    `json:"detection_enabled"`
	ConfusionRate    *float64 `json:"confusion_rate"`
	Confirmed        *bool    `json:"confirmed"`
	TutorName        string   `json:"tutor_name"`
	Message          string   `json:"message"`
}

// OutboundMessage is a frame sent to a client.
type OutboundMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ConnectedData acknowledges a new connection with its own id.
type ConnectedData struct {
	SID string `json:"sid"`
}

// ErrorData is sent to the originating client only.
type ErrorData struct {
	Message string `json:"message"`
}

// ParticipantsListData is the snapshot sent to a joiner.
type ParticipantsListData struct {
	MeetingID    string            `json:"meeting_id"`
	Participants []ParticipantView `json:"participants"`
}

// ParticipantLeftData announces a removal from a meeting.
type ParticipantLeftData struct {
	MeetingID       string `json:"meeting_id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name,omitempty"`
}

// ConfusionData is relayed for confusion_update and confusion_confirmed.
type ConfusionData struct {
	MeetingID       string  `json:"meeting_id"`
	ParticipantID   string  `json:"participant_id"`
	ParticipantName string  `json:"participant_name"`
	ConfusionRate   float64 `json:"confusion_rate"`
	Confirmed       bool    `json:"confirmed"`
	Timestamp       string  `json:"timestamp"`
}

// InterventionData is relayed to the whole room, sender included.
type InterventionData struct {
	MeetingID     string `json:"meeting_id"`
	ParticipantID string `json:"participant_id"`
	TutorName     string `json:"tutor_name"`
	Message       string `json:"message,omitempty"`
	Timestamp     string `json:"timestamp"`
}
