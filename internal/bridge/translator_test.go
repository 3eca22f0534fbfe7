package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

var syn = written{event.Syn, event.SynReport, 0}

func newTestTranslator(t *testing.T, available wiimote.Iface) (*Translator, *fakeHardware, *fakeFactory) {
	t.Helper()
	hw := &fakeHardware{available: available, openable: wiimote.Supported}
	f := &fakeFactory{}
	l := newTestLifecycle(t, hw, f)
	require.NoError(t, l.Refresh())
	return NewTranslator(l, testConfig.AbsInfo.Max), hw, f
}

func keyEvent(key wiimote.Key, state int32) wiimote.Event {
	return wiimote.Event{Type: wiimote.EventKey, Key: key, State: state}
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		name string
		ev   wiimote.Event
		want []written
	}{
		{"press", keyEvent(wiimote.KeyA, wiimote.StatePressed), []written{{event.Key, event.BtnA, 1}, syn}},
		{"release", keyEvent(wiimote.KeyA, wiimote.StateReleased), []written{{event.Key, event.BtnA, 0}, syn}},
		{"repeat is ignored", keyEvent(wiimote.KeyA, wiimote.StateRepeated), nil},
		{"reversed press", keyEvent(wiimote.KeyB, wiimote.StatePressed), []written{{event.Key, event.BtnB, 0}, syn}},
		{"reversed release", keyEvent(wiimote.KeyB, wiimote.StateReleased), []written{{event.Key, event.BtnB, 1}, syn}},
		{"binding from wildcard", keyEvent(wiimote.KeyHome, wiimote.StatePressed), []written{{event.Key, event.BtnMode, 1}, syn}},
		{"abs press", keyEvent(wiimote.KeyOne, wiimote.StatePressed), []written{{event.Abs, 0x03, 98}, syn}},
		{"abs repeat", keyEvent(wiimote.KeyOne, wiimote.StateRepeated), []written{{event.Abs, 0x03, 98}, syn}},
		{"abs release", keyEvent(wiimote.KeyOne, wiimote.StateReleased), []written{{event.Abs, 0x03, 0}, syn}},
		{"reversed abs press", keyEvent(wiimote.KeyTwo, wiimote.StatePressed), []written{{event.Abs, 0x04, -98}, syn}},
		{"reversed abs release", keyEvent(wiimote.KeyTwo, wiimote.StateReleased), []written{{event.Abs, 0x04, 0}, syn}},
		{"unbound", keyEvent(wiimote.KeyUp, wiimote.StatePressed), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, f := newTestTranslator(t, wiimote.IfaceCore)

			require.NoError(t, tr.Handle(tt.ev))
			assert.Equal(t, tt.want, f.last().events)
		})
	}
}

func TestHandleRelBindingIsUnsupported(t *testing.T) {
	tr, _, f := newTestTranslator(t, wiimote.IfaceCore)

	err := tr.Handle(keyEvent(wiimote.KeyPlus, wiimote.StatePressed))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBinding)
	assert.Contains(t, err.Error(), "KEY_PLUS")
	assert.Empty(t, f.last().events)
}

func TestHandleExtensionKeysUseActiveTable(t *testing.T) {
	tr, _, f := newTestTranslator(t, wiimote.IfaceCore|wiimote.IfaceClassicController)

	require.NoError(t, tr.Handle(wiimote.Event{Type: wiimote.EventClassicKey, Key: wiimote.KeyA, State: wiimote.StatePressed}))
	require.NoError(t, tr.Handle(wiimote.Event{Type: wiimote.EventClassicKey, Key: wiimote.KeyZL, State: wiimote.StatePressed}))
	assert.Equal(t, []written{
		{event.Key, event.BtnB, 1}, syn,
		{event.Abs, 0x02, 98}, syn,
	}, f.last().events)
}

func TestHandleMove(t *testing.T) {
	tr, _, f := newTestTranslator(t, wiimote.IfaceCore|wiimote.IfaceNunchuk)

	require.NoError(t, tr.Handle(wiimote.Event{Type: wiimote.EventNunchukMove, X: 40, Y: 25}))
	require.NoError(t, tr.Handle(wiimote.Event{Type: wiimote.EventClassicMove, X: -10, Y: -60}))

	assert.Equal(t, []written{
		{event.Abs, event.AbsX, 40}, {event.Abs, event.AbsY, -25}, syn,
		{event.Abs, event.AbsX, -10}, {event.Abs, event.AbsY, 60}, syn,
	}, f.last().events)
}

func TestHandleGone(t *testing.T) {
	tr, _, _ := newTestTranslator(t, wiimote.IfaceCore)

	assert.ErrorIs(t, tr.Handle(wiimote.Event{Type: wiimote.EventGone}), ErrDisconnected)
}

func TestHandleWatchRefreshes(t *testing.T) {
	tr, hw, f := newTestTranslator(t, wiimote.IfaceCore)

	hw.available |= wiimote.IfaceNunchuk
	require.NoError(t, tr.Handle(wiimote.Event{Type: wiimote.EventWatch}))

	require.Len(t, f.created, 2)
	require.NoError(t, tr.Handle(wiimote.Event{Type: wiimote.EventNunchukKey, Key: wiimote.KeyC, State: wiimote.StatePressed}))
	assert.Equal(t, []written{{event.Key, event.BtnC, 1}, syn}, f.last().events)
}

func TestHandleWriteFailure(t *testing.T) {
	tr, _, f := newTestTranslator(t, wiimote.IfaceCore)
	errWrite := errors.New("write failed")
	f.last().err = errWrite

	assert.ErrorIs(t, tr.Handle(keyEvent(wiimote.KeyA, wiimote.StatePressed)), errWrite)
}

func TestHandleWithoutSession(t *testing.T) {
	hw := &fakeHardware{}
	l := newTestLifecycle(t, hw, &fakeFactory{})
	tr := NewTranslator(l, 98)

	assert.Error(t, tr.Handle(keyEvent(wiimote.KeyA, wiimote.StatePressed)))
}
