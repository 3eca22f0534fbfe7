package features

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/char5742/wii2gamepad/internal/consts"
	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/types"
)

func TestNewUserDev(t *testing.T) {
	spec := GamepadSpec{
		Name:    "Wii Classic",
		Vendor:  0x057e,
		Product: 0x0306,
		Keys:    []uint16{event.BtnA},
		Abs:     []uint16{event.AbsX, event.AbsY, event.AbsHat0X},
		AbsInfo: AbsInfo{Max: 98, Fuzz: 2, Flat: 4},
	}

	dev := newUserDev(spec)

	assert.Equal(t, "Wii Classic", string(bytes.TrimRight(dev.Name[:], "\x00")))
	assert.Equal(t, types.InputID{Bustype: consts.BusBluetooth, Vendor: 0x057e, Product: 0x0306, Version: 1}, dev.ID)
	for _, code := range spec.Abs {
		assert.Equal(t, int32(-98), dev.Absmin[code])
		assert.Equal(t, int32(98), dev.Absmax[code])
		assert.Equal(t, int32(2), dev.Absfuzz[code])
		assert.Equal(t, int32(4), dev.Absflat[code])
	}
	assert.Equal(t, int32(0), dev.Absmax[event.AbsHat1X])
}

func TestToUinputNameTruncates(t *testing.T) {
	name := toUinputName([]byte(strings.Repeat("x", 200)))
	assert.Equal(t, byte(0), name[consts.MaxNameSize-1])
	assert.Equal(t, byte('x'), name[consts.MaxNameSize-2])
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, types.Event{Type: event.Abs, Code: event.AbsY, Value: -42}))
	require.Equal(t, consts.EventSize, buf.Len())

	got, err := types.ParseEvent(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(event.Abs), got.Type)
	assert.Equal(t, uint16(event.AbsY), got.Code)
	assert.Equal(t, int32(-42), got.Value)

	// uinput_user_dev のサイズはカーネルの定義と一致する
	assert.Equal(t, 80+8+4+64*4*4, binary.Size(types.UserDev{}))
}
