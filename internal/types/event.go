package types

import (
	"encoding/binary"
	"fmt"
	"syscall"

	"github.com/char5742/wii2gamepad/internal/consts"
)

// Event は入力イベントを表す構造体
type Event struct {
	Time  syscall.Timeval // イベント発生時刻
	Type  uint16          // イベントタイプ
	Code  uint16          // イベントコード
	Value int32           // イベント値
}

// ParseEvent は evdev から読んだ1レコード分のバイト列を Event に変換する
func ParseEvent(buf []byte) (Event, error) {
	var e Event
	if len(buf) < consts.EventSize {
		return e, fmt.Errorf("short input_event: %d bytes", len(buf))
	}

	e.Time.Sec = int64(binary.LittleEndian.Uint64(buf[0:8]))
	e.Time.Usec = int64(binary.LittleEndian.Uint64(buf[8:16]))
	e.Type = binary.LittleEndian.Uint16(buf[16:18])
	e.Code = binary.LittleEndian.Uint16(buf[18:20])
	e.Value = int32(binary.LittleEndian.Uint32(buf[20:24]))

	return e, nil
}
