package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	a, b := bus.Subscribe(), bus.Subscribe()

	bus.Publish(Event{Resource: "layers", Action: "updated", ID: "road-street", Revision: 3})
	assert.Equal(t, "road-street", (<-a).ID)
	assert.Equal(t, uint64(3), (<-b).Revision)

	bus.Unsubscribe(a)
	bus.Unsubscribe(a)
	_, open := <-a
	assert.False(t, open)

	bus.Publish(Event{Resource: "versions", Action: "created"})
	assert.Equal(t, "versions", (<-b).Resource)
}

func TestEventBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe()
	for i := 0; i < 40; i++ {
		bus.Publish(Event{Resource: "layers", Action: "updated"})
	}
	assert.Len(t, ch, cap(ch))
}
