package meetinghub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"confusense/backend/internal/config"
	"confusense/backend/internal/models"
	"confusense/backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// Validation errors, sent back to the originating connection as error{message}.
var (
	ErrMeetingIDRequired = errors.New("meeting_id required")
	ErrNameNotResolved   = errors.New("name_not_resolved")
)

// ErrUnknownEvent is returned by Dispatch for event names with no handler.
var ErrUnknownEvent = errors.New("unknown event")

type handlerFunc func(connID string, p models.EventPayload) error

// Router validates inbound events, applies them to the registry and fans the
// results out through the hub. Handlers run on the caller's goroutine; storage
// writes are handed to a background persister.
type Router struct {
	registry *Registry
	hub      *Hub
	storage  storage.Storage
	tap      EventTap
	persist  *persister
	now      func() time.Time

	handlers map[string]handlerFunc
}

type RouterOption func(*Router)

// WithEventTap mirrors every room broadcast to tap.
func WithEventTap(tap EventTap) RouterOption {
	return func(rt *Router) { rt.tap = tap }
}

// WithPersistTimeout bounds each background write.
func WithPersistTimeout(d time.Duration) RouterOption {
	return func(rt *Router) {
		if d > 0 {
			rt.persist.timeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RouterOption {
	return func(rt *Router) { rt.now = now }
}

func NewRouter(registry *Registry, hub *Hub, s storage.Storage, opts ...RouterOption) *Router {
	rt := &Router{
		registry: registry,
		hub:      hub,
		storage:  s,
		persist:  &persister{timeout: config.DefaultPersistTimeout},
		now:      time.Now,
	}
	rt.handlers = map[string]handlerFunc{
		models.EventJoinMeeting:             rt.handleJoin,
		models.EventLeaveMeeting:            rt.handleLeave,
		models.EventParticipantStatusUpdate: rt.handleStatusUpdate,
		models.EventConfusionUpdate:         rt.handleConfusionUpdate,
		models.EventConfusionConfirmed:      rt.handleConfusionConfirmed,
		models.EventIntervention:            rt.handleIntervention,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Registry exposes the room registry for read-only queries.
func (rt *Router) Registry() *Registry { return rt.registry }

// Hub exposes the connection directory.
func (rt *Router) Hub() *Hub { return rt.hub }

// Dispatch decodes one inbound frame from connID and runs its handler.
// Validation failures are reported to connID as an error frame and returned.
func (rt *Router) Dispatch(connID string, raw []byte) error {
	var in models.InboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		log.Warn().Err(err).Str("module", "meetinghub.router").Str("sid", connID).Msg("bad json")
		return fmt.Errorf("decode frame: %w", err)
	}

	handle, ok := rt.handlers[in.Event]
	if !ok {
		log.Warn().Str("module", "meetinghub.router").Str("sid", connID).Str("event", in.Event).Msg("unknown event")
		return fmt.Errorf("%w: %q", ErrUnknownEvent, in.Event)
	}

	var payload models.EventPayload
	if len(in.Data) > 0 && string(in.Data) != "null" {
		if err := json.Unmarshal(in.Data, &payload); err != nil {
			log.Warn().Err(err).Str("module", "meetinghub.router").Str("sid", connID).Str("event", in.Event).Msg("bad payload")
			return fmt.Errorf("decode %s payload: %w", in.Event, err)
		}
	}

	if err := handle(connID, payload); err != nil {
		if errors.Is(err, ErrMeetingIDRequired) || errors.Is(err, ErrNameNotResolved) {
			rt.hub.SendTo(connID, models.OutboundMessage{
				Event: models.EventError,
				Data:  models.ErrorData{Message: err.Error()},
			})
		}
		return err
	}
	return nil
}

// Wait blocks until all background writes scheduled so far have finished.
func (rt *Router) Wait() {
	rt.persist.Wait()
}

// Close stops scheduling background writes and drains the ones in flight.
// Events dispatched afterwards are still relayed, just not persisted.
func (rt *Router) Close() {
	rt.persist.Close()
}

// recipients returns the distinct connections of the meeting, minus exceptConn.
func (rt *Router) recipients(meetingID, exceptConn string) []string {
	members := rt.registry.ListParticipants(meetingID)
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m.ConnectionID == exceptConn {
			continue
		}
		if _, dup := seen[m.ConnectionID]; dup {
			continue
		}
		seen[m.ConnectionID] = struct{}{}
		out = append(out, m.ConnectionID)
	}
	return out
}

// deliver fans msg out to conns and mirrors it to the event tap.
func (rt *Router) deliver(meetingID string, conns []string, msg models.OutboundMessage) {
	n := rt.hub.Deliver(conns, msg)
	log.Debug().Str("module", "meetinghub.router").
		Str("meeting_id", meetingID).
		Str("event", msg.Event).
		Int("recipients", len(conns)).
		Int("delivered", n).
		Msg("broadcast")

	if rt.tap != nil {
		rt.persist.Go("publish_event", meetingID, func(ctx context.Context) error {
			return rt.tap.PublishMeetingEvent(ctx, meetingID, msg)
		})
	}
}

// broadcast sends msg to every connection in the meeting except exceptConn
// (pass "" to include everyone).
func (rt *Router) broadcast(meetingID string, msg models.OutboundMessage, exceptConn string) {
	rt.deliver(meetingID, rt.recipients(meetingID, exceptConn), msg)
}

func (rt *Router) timestamp() time.Time {
	return rt.now().UTC()
}
