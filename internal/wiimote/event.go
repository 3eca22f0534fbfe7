package wiimote

import (
	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/types"
)

// EventType はハードウェア層から届くイベントの種類
type EventType int

const (
	EventKey EventType = iota
	EventNunchukKey
	EventClassicKey
	EventNunchukMove
	EventClassicMove
	EventWatch // 利用可能なインターフェースが変化した
	EventGone  // デバイスが切断された
)

// キーの状態
const (
	StateReleased = 0
	StatePressed  = 1
	StateRepeated = 2
)

// Event はハードウェア層のイベント
type Event struct {
	Type  EventType
	Key   Key
	State int32
	X, Y  int32
}

// 各インターフェースの evdev コードと物理ボタンの対応
var (
	coreKeys = map[uint16]Key{
		event.KeyLeft:     KeyLeft,
		event.KeyRight:    KeyRight,
		event.KeyUp:       KeyUp,
		event.KeyDown:     KeyDown,
		event.BtnA:        KeyA,
		event.BtnB:        KeyB,
		event.BtnMode:     KeyHome,
		event.KeyPrevious: KeyMinus,
		event.KeyNext:     KeyPlus,
		event.Btn1:        KeyOne,
		event.Btn2:        KeyTwo,
	}
	nunchukKeys = map[uint16]Key{
		event.BtnC: KeyC,
		event.BtnZ: KeyZ,
	}
	classicKeys = map[uint16]Key{
		event.KeyLeft:     KeyLeft,
		event.KeyRight:    KeyRight,
		event.KeyUp:       KeyUp,
		event.KeyDown:     KeyDown,
		event.BtnA:        KeyA,
		event.BtnB:        KeyB,
		event.BtnX:        KeyX,
		event.BtnY:        KeyY,
		event.BtnMode:     KeyHome,
		event.KeyPrevious: KeyMinus,
		event.KeyNext:     KeyPlus,
		event.BtnTL:       KeyTL,
		event.BtnTR:       KeyTR,
		event.BtnTL2:      KeyZL,
		event.BtnTR2:      KeyZR,
		event.BtnThumbL:   KeyThumbL,
		event.BtnThumbR:   KeyThumbR,
	}
)

// decoder は1つのインターフェースの evdev イベント列を Event に変換する
type decoder struct {
	iface   Iface
	x, y    int32
	stickUp bool // SYN_REPORT までにスティックが動いた
}

func newDecoder(iface Iface) *decoder {
	return &decoder{iface: iface}
}

// feed は evdev イベントを1つ受け取り、確定したイベントがあれば返す
func (d *decoder) feed(ev types.Event) (Event, bool) {
	switch ev.Type {
	case event.Key:
		return d.key(ev)
	case event.Abs:
		d.stick(ev)
	case event.Syn:
		if ev.Code == event.SynReport && d.stickUp {
			d.stickUp = false
			t := EventNunchukMove
			if d.iface == IfaceClassicController {
				t = EventClassicMove
			}
			return Event{Type: t, X: d.x, Y: d.y}, true
		}
	}
	return Event{}, false
}

func (d *decoder) key(ev types.Event) (Event, bool) {
	var (
		table map[uint16]Key
		t     EventType
	)
	switch d.iface {
	case IfaceCore:
		table, t = coreKeys, EventKey
	case IfaceNunchuk:
		table, t = nunchukKeys, EventNunchukKey
	case IfaceClassicController:
		table, t = classicKeys, EventClassicKey
	}
	k, ok := table[ev.Code]
	if !ok {
		return Event{}, false
	}
	return Event{Type: t, Key: k, State: ev.Value}, true
}

// スティック以外の軸（加速度など）は無視する
func (d *decoder) stick(ev types.Event) {
	var xCode, yCode uint16
	switch d.iface {
	case IfaceNunchuk:
		xCode, yCode = event.AbsHat0X, event.AbsHat0Y
	case IfaceClassicController:
		xCode, yCode = event.AbsHat1X, event.AbsHat1Y
	default:
		return
	}
	switch ev.Code {
	case xCode:
		d.x = ev.Value
		d.stickUp = true
	case yCode:
		d.y = ev.Value
		d.stickUp = true
	}
}
