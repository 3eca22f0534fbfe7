package wiimote

import "strings"

// Iface はデバイスのインターフェースを表すビットマスク
type Iface uint

const (
	IfaceCore Iface = 1 << iota
	IfaceNunchuk
	IfaceClassicController

	// Supported はこのプログラムが扱うインターフェースの集合
	Supported = IfaceCore | IfaceNunchuk | IfaceClassicController
)

// hid-wiimote が作る入力デバイスの名前
var ifaceDeviceNames = map[string]Iface{
	"Nintendo Wii Remote":                    IfaceCore,
	"Nintendo Wii Remote Nunchuk":            IfaceNunchuk,
	"Nintendo Wii Remote Classic Controller": IfaceClassicController,
}

var ifaceOrder = []Iface{IfaceCore, IfaceNunchuk, IfaceClassicController}

func (i Iface) String() string {
	if i == 0 {
		return "none"
	}
	var parts []string
	for _, f := range ifaceOrder {
		if i&f == 0 {
			continue
		}
		switch f {
		case IfaceCore:
			parts = append(parts, "core")
		case IfaceNunchuk:
			parts = append(parts, "nunchuk")
		case IfaceClassicController:
			parts = append(parts, "classic")
		}
	}
	return strings.Join(parts, "|")
}
