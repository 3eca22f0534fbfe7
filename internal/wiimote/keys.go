package wiimote

// Key はWiiリモコンと拡張コントローラーの物理ボタン
type Key int

const (
	KeyLeft Key = iota
	KeyRight
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeyHome
	KeyMinus
	KeyPlus
	KeyOne
	KeyTwo
	KeyX
	KeyY
	KeyTL
	KeyTR
	KeyZL
	KeyZR
	KeyThumbL
	KeyThumbR
	KeyC
	KeyZ

	// KeyNum はキーの総数
	KeyNum
)

var keyNames = [KeyNum]string{
	KeyLeft:   "KEY_LEFT",
	KeyRight:  "KEY_RIGHT",
	KeyUp:     "KEY_UP",
	KeyDown:   "KEY_DOWN",
	KeyA:      "KEY_A",
	KeyB:      "KEY_B",
	KeyHome:   "KEY_HOME",
	KeyMinus:  "KEY_MINUS",
	KeyPlus:   "KEY_PLUS",
	KeyOne:    "KEY_ONE",
	KeyTwo:    "KEY_TWO",
	KeyX:      "KEY_X",
	KeyY:      "KEY_Y",
	KeyTL:     "KEY_TL",
	KeyTR:     "KEY_TR",
	KeyZL:     "KEY_ZL",
	KeyZR:     "KEY_ZR",
	KeyThumbL: "KEY_THUMBL",
	KeyThumbR: "KEY_THUMBR",
	KeyC:      "KEY_C",
	KeyZ:      "KEY_Z",
}

// LookupKey は設定ファイル上の名前からキーを引く
func LookupKey(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return Key(k), true
		}
	}
	return 0, false
}

func (k Key) String() string {
	if k < 0 || k >= KeyNum {
		return "KEY_UNKNOWN"
	}
	return keyNames[k]
}
