package consts

// uinput の ioctl 番号 (linux/uinput.h)
const (
	DevCreate  = 0x5501     // UI_DEV_CREATE
	DevDestroy = 0x5502     // UI_DEV_DESTROY
	SetEvBit   = 0x40045564 // UI_SET_EVBIT
	SetKeyBit  = 0x40045565 // UI_SET_KEYBIT
	SetRelBit  = 0x40045566 // UI_SET_RELBIT
	SetAbsBit  = 0x40045567 // UI_SET_ABSBIT
)

// struct uinput_user_dev の配列サイズ
const (
	MaxNameSize = 80 // UINPUT_MAX_NAME_SIZE
	AbsSize     = 64 // ABS_CNT
)

// BusBluetooth は仮想ゲームパッドが名乗るバスタイプ (BUS_BLUETOOTH)
const BusBluetooth = 0x05

// EventSize は struct input_event のバイト数 (64bit)
const EventSize = 24
