package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingDrainInOrder(t *testing.T) {
	r := NewRing()
	r.Push(Record{EventType: EventMemoryPressure, Payload: [PayloadWords]uint32{1}})
	r.Push(Record{EventType: EventRerootEnd, Payload: [PayloadWords]uint32{7, 0}})

	recs, last, overflow := r.Drain(0)
	require.Len(t, recs, 2)
	assert.EqualValues(t, 0, overflow)
	assert.EqualValues(t, 2, last)
	assert.Equal(t, EventMemoryPressure, recs[0].EventType)
	assert.Equal(t, EventRerootEnd, recs[1].EventType)
	assert.EqualValues(t, 7, recs[1].Payload[0])
}

func TestRingDetectsOverflow(t *testing.T) {
	r := NewRing()
	for i := 0; i < Capacity+10; i++ {
		r.Push(Record{EventType: EventHalt})
	}
	recs, last, overflow := r.Drain(0)
	assert.EqualValues(t, 10, overflow)
	assert.EqualValues(t, Capacity+10, last)
	assert.Len(t, recs, Capacity)
}

func TestGuardExactlyOneEmitter(t *testing.T) {
	const participants = 64
	g := NewGuard(participants)

	var wg sync.WaitGroup
	emits := make([]bool, participants)
	for i := 0; i < participants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emits[i] = g.Arrive()
		}(i)
	}
	wg.Wait()

	count := 0
	for _, e := range emits {
		if e {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one goroutine must observe the guard reach zero")
}
