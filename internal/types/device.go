package types

import "github.com/char5742/wii2gamepad/internal/consts"

// InputID は struct input_id と同じ並び
type InputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// UserDev は UI_DEV_CREATE の前に uinput へ書き込む struct uinput_user_dev
// 絶対軸の範囲は軸コードで添字付けする
type UserDev struct {
	Name       [consts.MaxNameSize]byte
	ID         InputID
	EffectsMax uint32
	Absmax     [consts.AbsSize]int32
	Absmin     [consts.AbsSize]int32
	Absfuzz    [consts.AbsSize]int32
	Absflat    [consts.AbsSize]int32
}
