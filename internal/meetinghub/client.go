package meetinghub

import (
	"errors"

	"confusense/backend/internal/models"
)

var (
	// ErrBackpressure is returned by Send when the client's buffer is full.
	ErrBackpressure = errors.New("backpressure")
	// ErrClientClosed is returned by Send after Close.
	ErrClientClosed = errors.New("client closed")
)

// Client is the interface for one realtime connection. It abstracts the
// underlying transport so the hub and router can be tested without sockets.
type Client interface {
	// GetConnID returns the transport-level connection identity (the "sid").
	GetConnID() string
	// Send queues a frame without blocking. It fails with ErrBackpressure when
	// the client cannot keep up, and with ErrClientClosed after Close.
	Send(msg models.OutboundMessage) error
	// Run starts the client's read and write pumps.
	Run()
	// Close stops delivery. Safe to call more than once.
	Close()
}
