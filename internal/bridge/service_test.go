package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/keymap"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

func newTestService(t *testing.T, hw *fakeHardware, f *fakeFactory) *Service {
	t.Helper()
	s := NewService(hw, testRegistry(t), f.create, testConfig)
	s.Lifecycle().sleep = func(time.Duration) {}
	return s
}

func TestServiceRunUntilGone(t *testing.T) {
	hw := &fakeHardware{
		available: wiimote.IfaceCore,
		openable:  wiimote.Supported,
		events: []wiimote.Event{
			keyEvent(wiimote.KeyA, wiimote.StatePressed),
			keyEvent(wiimote.KeyA, wiimote.StateReleased),
			{Type: wiimote.EventGone},
			keyEvent(wiimote.KeyA, wiimote.StatePressed),
		},
	}
	f := &fakeFactory{}
	s := newTestService(t, hw, f)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []written{
		{event.Key, event.BtnA, 1}, syn,
		{event.Key, event.BtnA, 0}, syn,
	}, f.last().events)
	assert.Len(t, hw.events, 1)
}

func TestServiceRunCanceled(t *testing.T) {
	hw := &fakeHardware{available: wiimote.IfaceCore, openable: wiimote.Supported}
	s := newTestService(t, hw, &fakeFactory{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, s.Run(ctx))
}

func TestServiceRunHotplug(t *testing.T) {
	hw := &fakeHardware{
		available: wiimote.IfaceCore | wiimote.IfaceNunchuk,
		openable:  wiimote.Supported,
		events: []wiimote.Event{
			{Type: wiimote.EventWatch},
			{Type: wiimote.EventGone},
		},
	}
	f := &fakeFactory{}
	s := newTestService(t, hw, f)

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, f.created, 1)
	assert.Equal(t, keymap.Nunchuk, s.Lifecycle().Session().Kind)
}

func TestServiceRunErrors(t *testing.T) {
	t.Run("dispatch failure", func(t *testing.T) {
		errRead := errors.New("read failed")
		hw := &fakeHardware{available: wiimote.IfaceCore, openable: wiimote.Supported, err: errRead}
		s := newTestService(t, hw, &fakeFactory{})

		assert.ErrorIs(t, s.Run(context.Background()), errRead)
	})

	t.Run("gamepad creation failure", func(t *testing.T) {
		hw := &fakeHardware{available: wiimote.IfaceCore, openable: wiimote.Supported}
		s := newTestService(t, hw, &fakeFactory{err: errors.New("no uinput")})

		assert.Error(t, s.Run(context.Background()))
	})

	t.Run("relative binding", func(t *testing.T) {
		hw := &fakeHardware{
			available: wiimote.IfaceCore,
			openable:  wiimote.Supported,
			events:    []wiimote.Event{keyEvent(wiimote.KeyPlus, wiimote.StatePressed)},
		}
		s := newTestService(t, hw, &fakeFactory{})

		assert.ErrorIs(t, s.Run(context.Background()), ErrUnsupportedBinding)
	})
}

func TestServiceClose(t *testing.T) {
	hw := &fakeHardware{
		available: wiimote.IfaceCore,
		openable:  wiimote.Supported,
		events:    []wiimote.Event{{Type: wiimote.EventGone}},
	}
	f := &fakeFactory{}
	s := newTestService(t, hw, f)

	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, s.Close())
	assert.True(t, f.last().closed)
	assert.True(t, hw.closed)
	assert.Nil(t, s.Lifecycle().Session())
}
