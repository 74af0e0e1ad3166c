package meetinghub_test

import (
	"sync"

	"confusense/backend/internal/meetinghub"
	"confusense/backend/internal/models"
)

// MockClient records every frame the hub delivers to it.
type MockClient struct {
	connID string

	mu       sync.Mutex
	received []models.OutboundMessage
	closed   bool
	full     bool
}

func newMockClient(connID string) *MockClient {
	return &MockClient{connID: connID}
}

func (c *MockClient) GetConnID() string {
	return c.connID
}

func (c *MockClient) Send(msg models.OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return meetinghub.ErrClientClosed
	}
	if c.full {
		return meetinghub.ErrBackpressure
	}
	c.received = append(c.received, msg)
	return nil
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *MockClient) setFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.full = full
}

// Messages returns a copy of everything received so far.
func (c *MockClient) Messages() []models.OutboundMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.OutboundMessage, len(c.received))
	copy(out, c.received)
	return out
}

// ByEvent returns the received frames with the given event name.
func (c *MockClient) ByEvent(event string) []models.OutboundMessage {
	var out []models.OutboundMessage
	for _, m := range c.Messages() {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

// Reset forgets everything received so far.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = nil
}
