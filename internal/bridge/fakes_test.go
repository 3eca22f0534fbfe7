package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/char5742/wii2gamepad/internal/features"
	"github.com/char5742/wii2gamepad/internal/keymap"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

// fakeHardware は openable に含まれるインターフェースだけを開ける
type fakeHardware struct {
	available wiimote.Iface
	openable  wiimote.Iface
	opened    wiimote.Iface
	failFirst int // 最初の何回かの Open を失敗させる
	openCalls int

	events []wiimote.Event
	err    error
	closed bool
}

func (h *fakeHardware) Available() wiimote.Iface { return h.available }
func (h *fakeHardware) Opened() wiimote.Iface    { return h.opened }

func (h *fakeHardware) Open(mask wiimote.Iface) error {
	h.openCalls++
	if h.openCalls <= h.failFirst {
		return errors.New("not ready")
	}
	h.opened |= mask & h.openable
	if mask&^h.openable != 0 {
		return errors.New("some interfaces failed")
	}
	return nil
}

// Dispatch は events を順に返し、尽きたら ctx の終了を待つ
func (h *fakeHardware) Dispatch(ctx context.Context) (wiimote.Event, error) {
	if len(h.events) > 0 {
		ev := h.events[0]
		h.events = h.events[1:]
		return ev, nil
	}
	if h.err != nil {
		return wiimote.Event{}, h.err
	}
	<-ctx.Done()
	return wiimote.Event{}, ctx.Err()
}

func (h *fakeHardware) Close() error {
	h.closed = true
	return nil
}

type written struct {
	Type, Code uint16
	Value      int32
}

type fakeGamepad struct {
	spec   features.GamepadSpec
	events []written
	closed bool
	err    error
}

func (g *fakeGamepad) WriteEvent(evType, code uint16, value int32) error {
	if g.err != nil {
		return g.err
	}
	g.events = append(g.events, written{evType, code, value})
	return nil
}

func (g *fakeGamepad) Close() error {
	g.closed = true
	return nil
}

// fakeFactory は作成した仮想ゲームパッドを記録する
type fakeFactory struct {
	created []*fakeGamepad
	err     error
}

func (f *fakeFactory) create(spec features.GamepadSpec) (features.Gamepad, error) {
	if f.err != nil {
		return nil, f.err
	}
	g := &fakeGamepad{spec: spec}
	f.created = append(f.created, g)
	return g, nil
}

func (f *fakeFactory) last() *fakeGamepad {
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

const testKeymap = `
[All]
Name = Wii Gamepad
Vendor = 0x057e
Product = 0x0306
KEY_HOME = BTN_MODE

[None]
KEY_A = BTN_SOUTH
KEY_B = -BTN_EAST
KEY_ONE = ABS_RX
KEY_TWO = -ABS_RY
KEY_PLUS = REL_WHEEL

[Nunchuk]
Name = Wii Nunchuk Gamepad
KEY_C = BTN_C
KEY_Z = BTN_Z
KEY_A = BTN_SOUTH

[Classic Controller]
KEY_A = BTN_EAST
KEY_B = BTN_SOUTH
KEY_ZL = ABS_Z
KEY_ZR = ABS_Z
`

var testConfig = LifecycleConfig{
	MaxRetries:  3,
	AbsInfo:     features.AbsInfo{Max: 98, Fuzz: 2, Flat: 4},
	DefaultName: "Fallback Pad",
}

func testRegistry(t *testing.T) *keymap.Registry {
	t.Helper()
	r, err := keymap.Parse([]byte(testKeymap))
	require.NoError(t, err)
	return r
}

func newTestLifecycle(t *testing.T, hw Hardware, f *fakeFactory) *Lifecycle {
	t.Helper()
	l := NewLifecycle(hw, testRegistry(t), f.create, testConfig)
	l.sleep = func(time.Duration) {}
	return l
}
