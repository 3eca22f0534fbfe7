// Package keymap はキーマップファイルを読み込み、拡張コントローラーごとの
// 割り当て表とデバイス識別情報を保持する。
package keymap

import (
	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

// Kind は接続されている拡張コントローラーの種類
type Kind int

const (
	Core Kind = iota
	Nunchuk
	ClassicController

	kindCount
)

// Kinds はすべての種類を優先度の低い順に並べたもの
var Kinds = []Kind{Core, Nunchuk, ClassicController}

func (k Kind) String() string {
	switch k {
	case Core:
		return "None"
	case Nunchuk:
		return "Nunchuk"
	case ClassicController:
		return "Classic Controller"
	}
	return "Unknown"
}

// Category は割り当て先のイベントの種類
type Category int

const (
	CategoryNone Category = iota // 未設定
	CategoryKey                  // キーまたはボタン
	CategoryRel                  // 相対軸
	CategoryAbs                  // 絶対軸
)

// Binding は物理ボタン1つ分の割り当て
type Binding struct {
	Category Category
	Code     uint16
	Reversed bool
}

// Bound は割り当てが設定されているかを返す
func (b Binding) Bound() bool {
	return b.Category != CategoryNone
}

// EventType は割り当て先の evdev イベントタイプを返す
func (b Binding) EventType() uint16 {
	switch b.Category {
	case CategoryRel:
		return event.Rel
	case CategoryAbs:
		return event.Abs
	}
	return event.Key
}

// String は設定ファイルと同じ書式 ([-]NAME) で割り当てを表す
func (b Binding) String() string {
	if !b.Bound() {
		return ""
	}
	name := event.Name(b.EventType(), b.Code)
	if b.Reversed {
		return "-" + name
	}
	return name
}

// Table は物理ボタンから割り当てへの表。値として渡すとコピーになる
type Table [wiimote.KeyNum]Binding

// Lookup は物理ボタンの割り当てを返す
func (t Table) Lookup(key wiimote.Key) (Binding, bool) {
	if key < 0 || key >= wiimote.KeyNum {
		return Binding{}, false
	}
	b := t[key]
	return b, b.Bound()
}

// Identity は仮想デバイスの名前とID
type Identity struct {
	Name    string
	Vendor  uint16
	Product uint16
}
