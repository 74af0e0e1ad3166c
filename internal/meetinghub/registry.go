package meetinghub

import (
	"sort"
	"sync"

	"confusense/backend/internal/models"
)

// memberKey addresses one live entry.
type memberKey struct {
	meetingID     string
	participantID string
}

// room is the participant set of one meeting. order keeps insertion order.
type room struct {
	order   []string
	members map[string]models.Participant
}

func newRoom() *room {
	return &room{members: make(map[string]models.Participant)}
}

func (r *room) remove(participantID string) {
	delete(r.members, participantID)
	for i, id := range r.order {
		if id == participantID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Removal is one entry dropped by RemoveByConnection.
type Removal struct {
	MeetingID   string
	Participant models.Participant
}

// Registry is the authoritative meeting -> participant map. A single lock
// covers both the meetings map and the connection index, so every operation
// is one atomic step. Meetings are created on first join and deleted in the
// same critical section that removes their last participant.
type Registry struct {
	mu       sync.RWMutex
	meetings map[string]*room
	// byConn holds the entries each attached connection owns. A connection
	// is attached iff it has a key here, even with an empty set.
	byConn map[string]map[memberKey]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		meetings: make(map[string]*room),
		byConn:   make(map[string]map[memberKey]struct{}),
	}
}

// Attach marks a connection live. Joins are only accepted from attached connections.
func (r *Registry) Attach(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[connID]; !ok {
		r.byConn[connID] = make(map[memberKey]struct{})
	}
}

// UpsertParticipant inserts or overwrites the live entry for p.ParticipantID.
// A re-join keeps the participant's position in the listing. It returns false,
// storing nothing, when p.ConnectionID is not attached (it already disconnected).
func (r *Registry) UpsertParticipant(meetingID string, p models.Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned, attached := r.byConn[p.ConnectionID]
	if !attached {
		return false
	}

	rm, ok := r.meetings[meetingID]
	if !ok {
		rm = newRoom()
		r.meetings[meetingID] = rm
	}

	key := memberKey{meetingID: meetingID, participantID: p.ParticipantID}
	if prev, exists := rm.members[p.ParticipantID]; exists {
		if prev.ConnectionID != p.ConnectionID {
			if prevOwned, ok := r.byConn[prev.ConnectionID]; ok {
				delete(prevOwned, key)
			}
		}
	} else {
		rm.order = append(rm.order, p.ParticipantID)
	}

	rm.members[p.ParticipantID] = p
	owned[key] = struct{}{}
	return true
}

// RemoveParticipant drops one entry and garbage-collects the meeting if it became empty.
func (r *Registry) RemoveParticipant(meetingID, participantID string) (models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(memberKey{meetingID: meetingID, participantID: participantID})
}

func (r *Registry) removeLocked(key memberKey) (models.Participant, bool) {
	rm, ok := r.meetings[key.meetingID]
	if !ok {
		return models.Participant{}, false
	}
	p, ok := rm.members[key.participantID]
	if !ok {
		return models.Participant{}, false
	}

	rm.remove(key.participantID)
	if owned, ok := r.byConn[p.ConnectionID]; ok {
		delete(owned, key)
	}
	if len(rm.members) == 0 {
		delete(r.meetings, key.meetingID)
	}
	return p, true
}

// RemoveByConnection removes every entry owned by connID and detaches it.
// Results are ordered by meeting then participant id. A second call returns nothing.
func (r *Registry) RemoveByConnection(connID string) []Removal {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned, ok := r.byConn[connID]
	if !ok {
		return nil
	}
	delete(r.byConn, connID)

	keys := make([]memberKey, 0, len(owned))
	for k := range owned {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].meetingID != keys[j].meetingID {
			return keys[i].meetingID < keys[j].meetingID
		}
		return keys[i].participantID < keys[j].participantID
	})

	removed := make([]Removal, 0, len(keys))
	for _, k := range keys {
		if p, ok := r.removeLocked(k); ok {
			removed = append(removed, Removal{MeetingID: k.meetingID, Participant: p})
		}
	}
	return removed
}

// ListParticipants returns a snapshot of the meeting in insertion order.
func (r *Registry) ListParticipants(meetingID string) []models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.meetings[meetingID]
	if !ok {
		return nil
	}
	out := make([]models.Participant, 0, len(rm.order))
	for _, id := range rm.order {
		out = append(out, rm.members[id])
	}
	return out
}

// Participant looks up one live entry.
func (r *Registry) Participant(meetingID, participantID string) (models.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.meetings[meetingID]
	if !ok {
		return models.Participant{}, false
	}
	p, ok := rm.members[participantID]
	return p, ok
}

// SetDetectionEnabled updates the flag in place and returns the updated entry.
// ok is false when the participant is not in the meeting.
func (r *Registry) SetDetectionEnabled(meetingID, participantID string, enabled bool) (models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.meetings[meetingID]
	if !ok {
		return models.Participant{}, false
	}
	p, ok := rm.members[participantID]
	if !ok {
		return models.Participant{}, false
	}
	p.DetectionEnabled = enabled
	rm.members[participantID] = p
	return p, true
}

// HasMeeting reports whether the meeting currently has any participant.
func (r *Registry) HasMeeting(meetingID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.meetings[meetingID]
	return ok
}

// RoomCount is the number of meetings with at least one participant.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meetings)
}

// ParticipantCount is the number of live entries across all meetings.
func (r *Registry) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rm := range r.meetings {
		n += len(rm.members)
	}
	return n
}

// Meetings returns the ids of all live meetings, sorted.
func (r *Registry) Meetings() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.meetings))
	for id := range r.meetings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
