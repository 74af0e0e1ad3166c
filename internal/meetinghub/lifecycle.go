package meetinghub

import (
	"strings"

	"confusense/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// UnresolvedName is the placeholder clients send before they know the user's display name.
const UnresolvedName = "Unknown"

// ValidateName rejects empty and placeholder names.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == UnresolvedName {
		return ErrNameNotResolved
	}
	return nil
}

// Lifecycle ties transport connections to room membership. A dropped
// connection produces the same room-visible outcome as an explicit leave.
type Lifecycle struct {
	router *Router
}

func NewLifecycle(router *Router) *Lifecycle {
	return &Lifecycle{router: router}
}

// Router returns the router events from this lifecycle's clients go to.
func (l *Lifecycle) Router() *Router { return l.router }

// Connect registers the client, attaches its connection and acknowledges with its sid.
func (l *Lifecycle) Connect(c Client) {
	connID := c.GetConnID()
	l.router.hub.Register(c)
	l.router.registry.Attach(connID)

	log.Info().Str("module", "meetinghub.lifecycle").Str("sid", connID).Msg("connect")
	l.router.hub.SendTo(connID, models.OutboundMessage{
		Event: models.EventConnected,
		Data:  models.ConnectedData{SID: connID},
	})
}

// Disconnect removes everything connID held and announces participant_left
// to the remaining members of each affected meeting. Calling it again is a no-op.
func (l *Lifecycle) Disconnect(connID string) {
	removed := l.router.registry.RemoveByConnection(connID)

	if c, ok := l.router.hub.Unregister(connID); ok {
		c.Close()
	}

	for _, r := range removed {
		l.router.broadcast(r.MeetingID, models.OutboundMessage{
			Event: models.EventParticipantLeft,
			Data: models.ParticipantLeftData{
				MeetingID:       r.MeetingID,
				ParticipantID:   r.Participant.ParticipantID,
				ParticipantName: r.Participant.Name,
			},
		}, connID)
	}

	log.Info().Str("module", "meetinghub.lifecycle").
		Str("sid", connID).
		Int("removed", len(removed)).
		Msg("disconnect")
}
