package event

// イベントタイプの定数（input-event-codes.hより）
const (
	Syn = 0x00 // 同期イベント
	Key = 0x01 // キーイベント
	Rel = 0x02 // 相対座標イベント
	Abs = 0x03 // 絶対座標イベント

	SynReport = 0 // イベント報告の同期
)

// 絶対座標のコード
const (
	AbsX     = 0x00 // X軸の絶対座標
	AbsY     = 0x01 // Y軸の絶対座標
	AbsHat0X = 0x10 // ヌンチャクのスティックX
	AbsHat0Y = 0x11 // ヌンチャクのスティックY
	AbsHat1X = 0x12 // クラシックコントローラーの左スティックX
	AbsHat1Y = 0x13 // クラシックコントローラーの左スティックY
)

// hid-wiimote ドライバが報告するキーコード
const (
	KeyUp       = 103
	KeyLeft     = 105
	KeyRight    = 106
	KeyDown     = 108
	KeyNext     = 0x197 // プラスボタン
	KeyPrevious = 0x19c // マイナスボタン

	Btn1      = 0x101
	Btn2      = 0x102
	BtnA      = 0x130
	BtnB      = 0x131
	BtnC      = 0x132
	BtnX      = 0x133
	BtnY      = 0x134
	BtnZ      = 0x135
	BtnTL     = 0x136
	BtnTR     = 0x137
	BtnTL2    = 0x138
	BtnTR2    = 0x139
	BtnMode   = 0x13c
	BtnThumbL = 0x13d
	BtnThumbR = 0x13e
)

// Code はイベントコードの名前と値の組
type Code struct {
	Name  string
	Value uint16
}

var (
	keyByName = make(map[string]uint16)
	relByName = make(map[string]uint16)
	absByName = make(map[string]uint16)

	keyByValue = make(map[uint16]string)
	relByValue = make(map[uint16]string)
	absByValue = make(map[uint16]string)
)

func init() {
	index(keyCodes, keyByName, keyByValue)
	index(relCodes, relByName, relByValue)
	index(absCodes, absByName, absByValue)
}

// 別名があるコードは後に定義された名前 (BTN_GAMEPAD より BTN_A) を逆引きに使う
func index(codes []Code, byName map[string]uint16, byValue map[uint16]string) {
	for _, c := range codes {
		byName[c.Name] = c.Value
		byValue[c.Value] = c.Name
	}
}

// KeyCode は KEY_* / BTN_* の名前からコードを引く
func KeyCode(name string) (uint16, bool) {
	v, ok := keyByName[name]
	return v, ok
}

// RelCode は REL_* の名前からコードを引く
func RelCode(name string) (uint16, bool) {
	v, ok := relByName[name]
	return v, ok
}

// AbsCode は ABS_* の名前からコードを引く
func AbsCode(name string) (uint16, bool) {
	v, ok := absByName[name]
	return v, ok
}

// Name はイベントタイプとコードから表示用の名前を返す
func Name(evType, code uint16) string {
	var (
		name string
		ok   bool
	)
	switch evType {
	case Key:
		name, ok = keyByValue[code]
	case Rel:
		name, ok = relByValue[code]
	case Abs:
		name, ok = absByValue[code]
	}
	if !ok {
		return "UNKNOWN"
	}
	return name
}
