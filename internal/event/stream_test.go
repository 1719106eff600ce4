package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	var s Stream[int]
	var got []string

	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })

	s.Publish(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribe(t *testing.T) {
	var s Stream[int]
	calls := 0
	unsubscribe := s.Subscribe(func(int) { calls++ })

	s.Publish(1)
	unsubscribe()
	unsubscribe()
	s.Publish(2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Len())
}

func TestNestedPublishIsDepthFirst(t *testing.T) {
	var outer, inner Stream[string]
	var got []string

	outer.Subscribe(func(v string) {
		got = append(got, "outer:"+v)
		inner.Publish(v + "-cascade")
	})
	outer.Subscribe(func(v string) { got = append(got, "outer2:"+v) })
	inner.Subscribe(func(v string) { got = append(got, "inner:"+v) })

	outer.Publish("x")

	assert.Equal(t, []string{"outer:x", "inner:x-cascade", "outer2:x"}, got)
}

func TestSubscribeDuringPublishWaitsForNextValue(t *testing.T) {
	var s Stream[int]
	var late []int

	s.Subscribe(func(v int) {
		if v == 1 {
			s.Subscribe(func(v int) { late = append(late, v) })
		}
	})

	s.Publish(1)
	s.Publish(2)

	assert.Equal(t, []int{2}, late)
}
