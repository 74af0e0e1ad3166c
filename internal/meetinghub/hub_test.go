package meetinghub_test

import (
	"testing"

	"confusense/backend/internal/meetinghub"
	"confusense/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterUnregister(t *testing.T) {
	hub := meetinghub.NewHub()
	clientA := newMockClient("user_A")

	hub.Register(clientA)
	assert.Equal(t, 1, hub.ClientCount())

	c, ok := hub.Unregister("user_A")
	require.True(t, ok)
	assert.Same(t, clientA, c)
	assert.Equal(t, 0, hub.ClientCount())

	_, ok = hub.Unregister("user_A")
	assert.False(t, ok)
}

func TestHub_Deliver(t *testing.T) {
	hub := meetinghub.NewHub()
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)

	msg := models.OutboundMessage{Event: models.EventParticipantLeft, Data: models.ParticipantLeftData{MeetingID: "M1", ParticipantID: "p1"}}
	n := hub.Deliver([]string{"user_A", "user_B", "gone"}, msg)

	assert.Equal(t, 2, n)
	assert.Equal(t, []models.OutboundMessage{msg}, clientA.Messages())
	assert.Equal(t, []models.OutboundMessage{msg}, clientB.Messages())
}

func TestHub_SlowClientDoesNotBlockOthers(t *testing.T) {
	hub := meetinghub.NewHub()
	slow := newMockClient("slow")
	fast := newMockClient("fast")
	slow.setFull(true)
	hub.Register(slow)
	hub.Register(fast)

	msg := models.OutboundMessage{Event: models.EventStudentConfusionUpdate}
	n := hub.Deliver([]string{"slow", "fast"}, msg)

	assert.Equal(t, 1, n)
	assert.Empty(t, slow.Messages())
	assert.Len(t, fast.Messages(), 1)
}

func TestHub_SendToUnknown(t *testing.T) {
	hub := meetinghub.NewHub()
	assert.False(t, hub.SendTo("nobody", models.OutboundMessage{Event: models.EventError}))
}

func TestHub_CloseAll(t *testing.T) {
	hub := meetinghub.NewHub()
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)

	hub.CloseAll()

	assert.True(t, clientA.IsClosed())
	assert.True(t, clientB.IsClosed())
	assert.Equal(t, 0, hub.ClientCount())
}
