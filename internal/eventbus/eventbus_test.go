package eventbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscribeAndNotify(t *testing.T) {
	bus := New()

	calls := 0
	unsubscribe := bus.Subscribe(func() { calls++ })
	require.Equal(t, 1, bus.Len())

	bus.Notify()
	bus.Notify()
	require.Equal(t, 2, calls)

	unsubscribe()
	require.Equal(t, 0, bus.Len())

	bus.Notify()
	require.Equal(t, 2, calls, "unsubscribed listener must not be invoked")
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := New()
	unsubscribe := bus.Subscribe(func() {})
	unsubscribe()
	unsubscribe()
	require.Equal(t, 0, bus.Len())
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	bus := New()

	reached := 0
	bus.Subscribe(func() { panic("listener bug") })
	bus.Subscribe(func() { reached++ })
	bus.Subscribe(func() { panic("another one") })
	bus.Subscribe(func() { reached++ })

	require.NotPanics(t, func() { bus.Notify() })
	require.Equal(t, 2, reached)
}
