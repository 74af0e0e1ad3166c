package meetinghub

import (
	"context"
	"slices"
	"strings"
	"time"

	"confusense/backend/internal/models"

	"github.com/rs/zerolog/log"
)

func (rt *Router) handleJoin(connID string, p models.EventPayload) error {
	if p.MeetingID == "" {
		return ErrMeetingIDRequired
	}
	if err := ValidateName(p.ParticipantName); err != nil {
		return err
	}

	participantID := p.ParticipantID
	if participantID == "" {
		participantID = connID
	}
	enabled := true
	if p.DetectionEnabled != nil {
		enabled = *p.DetectionEnabled
	}
	participant := models.Participant{
		ParticipantID:    participantID,
		ConnectionID:     connID,
		Name:             strings.TrimSpace(p.ParticipantName),
		Role:             models.ParseRole(p.Role),
		DetectionEnabled: enabled,
	}

	if !rt.registry.UpsertParticipant(p.MeetingID, participant) {
		log.Debug().Str("module", "meetinghub.router").Str("sid", connID).Str("meeting_id", p.MeetingID).Msg("join after disconnect ignored")
		return nil
	}
	log.Info().Str("module", "meetinghub.router").
		Str("sid", connID).
		Str("meeting_id", p.MeetingID).
		Str("participant_id", participantID).
		Str("role", string(participant.Role)).
		Msg("join")

	rt.broadcast(p.MeetingID, models.OutboundMessage{
		Event: models.EventParticipantJoined,
		Data:  participant.View(),
	}, "")

	members := rt.registry.ListParticipants(p.MeetingID)
	views := make([]models.ParticipantView, 0, len(members))
	for _, m := range members {
		views = append(views, m.View())
	}
	rt.hub.SendTo(connID, models.OutboundMessage{
		Event: models.EventParticipantsList,
		Data:  models.ParticipantsListData{MeetingID: p.MeetingID, Participants: views},
	})

	now := rt.timestamp()
	rt.persist.Go("upsert_participant_status", p.MeetingID, func(ctx context.Context) error {
		return rt.storage.UpsertParticipantStatus(ctx, p.MeetingID, participantID, participant.Name, enabled, now)
	})
	return nil
}

func (rt *Router) handleLeave(connID string, p models.EventPayload) error {
	if p.MeetingID == "" {
		return ErrMeetingIDRequired
	}
	participantID := p.ParticipantID
	if participantID == "" {
		participantID = connID
	}

	left := models.ParticipantLeftData{MeetingID: p.MeetingID, ParticipantID: participantID}
	if removed, ok := rt.registry.RemoveParticipant(p.MeetingID, participantID); ok {
		left.ParticipantName = removed.Name
	}
	log.Info().Str("module", "meetinghub.router").
		Str("sid", connID).
		Str("meeting_id", p.MeetingID).
		Str("participant_id", participantID).
		Msg("leave")

	rt.broadcast(p.MeetingID, models.OutboundMessage{Event: models.EventParticipantLeft, Data: left}, "")
	return nil
}

func (rt *Router) handleStatusUpdate(connID string, p models.EventPayload) error {
	if p.MeetingID == "" {
		return ErrMeetingIDRequired
	}
	if err := ValidateName(p.ParticipantName); err != nil {
		return err
	}

	participantID := p.ParticipantID
	if participantID == "" {
		participantID = connID
	}
	enabled := true
	if p.DetectionEnabled != nil {
		enabled = *p.DetectionEnabled
	}

	updated, ok := rt.registry.SetDetectionEnabled(p.MeetingID, participantID, enabled)
	if !ok {
		return nil
	}

	rt.broadcast(p.MeetingID, models.OutboundMessage{
		Event: models.EventParticipantStatusChanged,
		Data:  updated.View(),
	}, connID)

	// The durable record mirrors the live entry, including the name it joined with.
	now := rt.timestamp()
	rt.persist.Go("upsert_participant_status", p.MeetingID, func(ctx context.Context) error {
		return rt.storage.UpsertParticipantStatus(ctx, p.MeetingID, participantID, updated.Name, enabled, now)
	})
	return nil
}

func (rt *Router) handleConfusionUpdate(connID string, p models.EventPayload) error {
	if p.MeetingID == "" {
		return ErrMeetingIDRequired
	}

	data := rt.confusionData(connID, p, false, rt.timestamp())
	rt.broadcast(p.MeetingID, models.OutboundMessage{Event: models.EventStudentConfusionUpdate, Data: data}, connID)
	return nil
}

func (rt *Router) handleConfusionConfirmed(connID string, p models.EventPayload) error {
	if p.MeetingID == "" {
		return ErrMeetingIDRequired
	}

	now := rt.timestamp()
	data := rt.confusionData(connID, p, true, now)
	log.Info().Str("module", "meetinghub.router").
		Str("meeting_id", p.MeetingID).
		Str("participant_id", data.ParticipantID).
		Float64("confusion_rate", data.ConfusionRate).
		Msg("confusion confirmed")

	rt.broadcast(p.MeetingID, models.OutboundMessage{Event: models.EventConfusionConfirmed, Data: data}, connID)

	rt.persist.Go("insert_confusion_event", p.MeetingID, func(ctx context.Context) error {
		_, err := rt.storage.InsertConfusionEvent(ctx, data.MeetingID, data.ParticipantID, data.ParticipantName,
			data.ConfusionRate, data.Confirmed, now)
		return err
	})
	return nil
}

func (rt *Router) handleIntervention(connID string, p models.EventPayload) error {
	if p.MeetingID == "" {
		return ErrMeetingIDRequired
	}

	tutor := strings.TrimSpace(p.TutorName)
	if tutor == "" {
		tutor = rt.nameOfConnection(p.MeetingID, connID)
	}
	data := models.InterventionData{
		MeetingID:     p.MeetingID,
		ParticipantID: p.ParticipantID,
		TutorName:     tutor,
		Message:       p.Message,
		Timestamp:     rt.timestamp().Format(time.RFC3339Nano),
	}
	log.Info().Str("module", "meetinghub.router").
		Str("meeting_id", p.MeetingID).
		Str("participant_id", p.ParticipantID).
		Str("tutor", tutor).
		Msg("intervention")

	conns := rt.recipients(p.MeetingID, "")
	if !slices.Contains(conns, connID) {
		conns = append(conns, connID)
	}
	rt.deliver(p.MeetingID, conns, models.OutboundMessage{Event: models.EventIntervention, Data: data})

	if p.ParticipantID == "" || tutor == "" {
		return nil
	}
	rt.persist.Go("mark_intervention", p.MeetingID, func(ctx context.Context) error {
		matched, err := rt.storage.MarkLatestIntervention(ctx, p.MeetingID, p.ParticipantID, tutor)
		if err != nil {
			return err
		}
		if !matched {
			log.Debug().Str("module", "meetinghub.router").
				Str("meeting_id", p.MeetingID).
				Str("participant_id", p.ParticipantID).
				Msg("no unresolved confusion event to attach intervention to")
		}
		return nil
	})
	return nil
}

// confusionData builds the relayed confusion frame, filling the participant id
// and name from the sender's live entry when the client omitted them.
func (rt *Router) confusionData(connID string, p models.EventPayload, defaultConfirmed bool, at time.Time) models.ConfusionData {
	participantID := p.ParticipantID
	if participantID == "" {
		participantID = connID
	}
	name := strings.TrimSpace(p.ParticipantName)
	if name == "" {
		if live, ok := rt.registry.Participant(p.MeetingID, participantID); ok {
			name = live.Name
		}
	}
	rate := 0.0
	if p.ConfusionRate != nil {
		rate = *p.ConfusionRate
	}
	confirmed := defaultConfirmed
	if p.Confirmed != nil {
		confirmed = *p.Confirmed
	}

	return models.ConfusionData{
		MeetingID:       p.MeetingID,
		ParticipantID:   participantID,
		ParticipantName: name,
		ConfusionRate:   rate,
		Confirmed:       confirmed,
		Timestamp:       at.Format(time.RFC3339Nano),
	}
}

// nameOfConnection returns the display name connID joined the meeting with, if any.
func (rt *Router) nameOfConnection(meetingID, connID string) string {
	for _, m := range rt.registry.ListParticipants(meetingID) {
		if m.ConnectionID == connID {
			return m.Name
		}
	}
	return ""
}
