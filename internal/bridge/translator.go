package bridge

import (
	"errors"
	"fmt"
	"log"

	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/keymap"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

var (
	// ErrDisconnected はWiiリモコンとの接続が切れたことを表す。エラーではなく終了の合図
	ErrDisconnected = errors.New("wiimote disconnected")
	// ErrUnsupportedBinding は相対軸への割り当てが使われたことを表す
	ErrUnsupportedBinding = errors.New("relative axis bindings are unsupported")
)

// Translator はハードウェアのイベントを仮想ゲームパッドのイベントに変換する
type Translator struct {
	lifecycle *Lifecycle
	absMax    int32
}

// NewTranslator は新しい Translator を作成する
func NewTranslator(lifecycle *Lifecycle, absMax int32) *Translator {
	return &Translator{lifecycle: lifecycle, absMax: absMax}
}

// Handle はイベントを1つ処理する
func (t *Translator) Handle(ev wiimote.Event) error {
	switch ev.Type {
	case wiimote.EventGone:
		return ErrDisconnected
	case wiimote.EventWatch:
		return t.lifecycle.Refresh()
	case wiimote.EventNunchukMove, wiimote.EventClassicMove:
		return t.move(ev)
	case wiimote.EventKey, wiimote.EventNunchukKey, wiimote.EventClassicKey:
		return t.key(ev)
	}
	return nil
}

// move はスティックの位置をそのまま ABS_X / ABS_Y に送る（Y は上下反転）
func (t *Translator) move(ev wiimote.Event) error {
	session, err := t.session()
	if err != nil {
		return err
	}
	return emit(session,
		output{event.Abs, event.AbsX, ev.X},
		output{event.Abs, event.AbsY, -ev.Y},
	)
}

func (t *Translator) key(ev wiimote.Event) error {
	session, err := t.session()
	if err != nil {
		return err
	}

	b, ok := session.Table.Lookup(ev.Key)
	if !ok {
		log.Printf("割り当てのない入力です: %s (%s)", ev.Key, session.Kind)
		return nil
	}

	switch b.Category {
	case keymap.CategoryKey:
		if ev.State == wiimote.StateRepeated {
			return nil
		}
		value := ev.State
		if b.Reversed {
			value = 1 - value
		}
		return emit(session, output{event.Key, b.Code, value})

	case keymap.CategoryAbs:
		var value int32
		if ev.State != wiimote.StateReleased {
			value = t.absMax
			if b.Reversed {
				value = -value
			}
		}
		return emit(session, output{event.Abs, b.Code, value})

	case keymap.CategoryRel:
		return fmt.Errorf("%s -> %s: %w", ev.Key, b, ErrUnsupportedBinding)
	}
	return fmt.Errorf("unsupported binding category %d", b.Category)
}

func (t *Translator) session() (*Session, error) {
	session := t.lifecycle.Session()
	if session == nil {
		return nil, errors.New("仮想ゲームパッドがありません")
	}
	return session, nil
}

type output struct {
	evType uint16
	code   uint16
	value  int32
}

// emit はイベントを書き込み、最後に SYN_REPORT で確定させる
func emit(session *Session, outputs ...output) error {
	outputs = append(outputs, output{event.Syn, event.SynReport, 0})
	for _, o := range outputs {
		if err := session.Gamepad.WriteEvent(o.evType, o.code, o.value); err != nil {
			return fmt.Errorf("仮想ゲームパッドへの書き込みに失敗しました: %w", err)
		}
	}
	return nil
}
