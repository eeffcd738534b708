package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesEveryStreamOfUser(t *testing.T) {
	h := NewHub()
	a, cleanA := h.Subscribe("maria")
	b, cleanB := h.Subscribe("maria")
	other, cleanOther := h.Subscribe("ana")
	defer cleanA()
	defer cleanB()
	defer cleanOther()

	h.Publish("maria", Event{UserID: "maria", Event: "notification", Data: "x"})

	assert.Equal(t, "notification", (<-a).Event)
	assert.Equal(t, "notification", (<-b).Event)
	assert.Len(t, other, 0)
	assert.Equal(t, 2, h.SubscriberCount("maria"))
}

func TestHub_PublishDoesNotBlockOnFullBuffer(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("maria")
	defer cleanup()

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish("maria", Event{Event: "notification"})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("maria")

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.SubscriberCount("maria"))
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("maria")

	h.Close()
	_, open := <-ch
	assert.False(t, open)
	cleanup()

	late, _ := h.Subscribe("ana")
	_, open = <-late
	require.False(t, open)
}
