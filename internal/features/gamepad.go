package features

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/char5742/wii2gamepad/internal/consts"
	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/types"
	"github.com/char5742/wii2gamepad/internal/utils"
)

// 仮想ゲームパッドを表現するインターフェース
type Gamepad interface {
	WriteEvent(evType, code uint16, value int32) error
	io.Closer
}

// AbsInfo は絶対軸の範囲
type AbsInfo struct {
	Max  int32 // 最小値は -Max
	Fuzz int32
	Flat int32
}

// GamepadSpec は作成する仮想ゲームパッドの内容
type GamepadSpec struct {
	Name    string
	Vendor  uint16
	Product uint16
	Keys    []uint16 // EV_KEY のコード
	Rels    []uint16 // EV_REL のコード
	Abs     []uint16 // EV_ABS のコード
	AbsInfo AbsInfo
}

type virtualGamepad struct {
	name       string
	deviceFile *os.File
}

// CreateGamepad は uinput に新しいゲームパッドデバイスを作成する
func CreateGamepad(path string, spec GamepadSpec) (Gamepad, error) {
	deviceFile, err := createDeviceFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not create gamepad device: %w", err)
	}

	if err := enableEvents(deviceFile, spec); err != nil {
		_ = deviceFile.Close()
		return nil, err
	}

	if err := createDevice(deviceFile, newUserDev(spec)); err != nil {
		_ = deviceFile.Close()
		return nil, err
	}

	return &virtualGamepad{name: spec.Name, deviceFile: deviceFile}, nil
}

// WriteEvent はイベントを1つ書き込む
func (vg *virtualGamepad) WriteEvent(evType, code uint16, value int32) error {
	return writeEvent(vg.deviceFile, types.Event{Type: evType, Code: code, Value: value})
}

func (vg *virtualGamepad) Close() error {
	_ = releaseDevice(vg.deviceFile)
	return vg.deviceFile.Close()
}

// enableEvents は仮想デバイスが報告するイベントを登録する
func enableEvents(deviceFile *os.File, spec GamepadSpec) error {
	groups := []struct {
		evType uint16
		bit    uintptr
		codes  []uint16
	}{
		{event.Key, consts.SetKeyBit, spec.Keys},
		{event.Rel, consts.SetRelBit, spec.Rels},
		{event.Abs, consts.SetAbsBit, spec.Abs},
	}

	for _, g := range groups {
		if len(g.codes) == 0 {
			continue
		}
		if err := utils.IOCtl(deviceFile, consts.SetEvBit, uintptr(g.evType)); err != nil {
			return fmt.Errorf("イベントタイプ %d の登録に失敗しました: %w", g.evType, err)
		}
		for _, code := range g.codes {
			if err := utils.IOCtl(deviceFile, g.bit, uintptr(code)); err != nil {
				return fmt.Errorf("%s の登録に失敗しました: %w", event.Name(g.evType, code), err)
			}
		}
	}
	return nil
}

// newUserDev は uinput_user_dev 構造体を組み立てる
func newUserDev(spec GamepadSpec) types.UserDev {
	dev := types.UserDev{
		Name: toUinputName([]byte(spec.Name)),
		ID: types.InputID{
			Bustype: consts.BusBluetooth,
			Vendor:  spec.Vendor,
			Product: spec.Product,
			Version: 1,
		},
	}
	for _, code := range spec.Abs {
		if int(code) >= consts.AbsSize {
			continue
		}
		dev.Absmin[code] = -spec.AbsInfo.Max
		dev.Absmax[code] = spec.AbsInfo.Max
		dev.Absfuzz[code] = spec.AbsInfo.Fuzz
		dev.Absflat[code] = spec.AbsInfo.Flat
	}
	return dev
}

// デバイスファイルを開く
func createDeviceFile(path string) (*os.File, error) {
	deviceFile, err := os.OpenFile(path, syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("デバイスファイルを開くのに失敗しました: %w", err)
	}
	return deviceFile, nil
}

// デバイスを解放する
func releaseDevice(deviceFile *os.File) error {
	return utils.IOCtl(deviceFile, consts.DevDestroy, uintptr(0))
}

// デバイスを作成する
func createDevice(deviceFile *os.File, dev types.UserDev) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, dev); err != nil {
		return fmt.Errorf("ユーザーデバイスバッファの書き込みに失敗しました: %w", err)
	}
	if _, err := deviceFile.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("デバイス構造体をデバイスファイルに書き込むのに失敗しました: %w", err)
	}
	if err := utils.IOCtl(deviceFile, consts.DevCreate, uintptr(0)); err != nil {
		return fmt.Errorf("デバイスの作成に失敗しました: %w", err)
	}
	return nil
}

// イベントを書き込む
func writeEvent(w io.Writer, ev types.Event) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
		return fmt.Errorf("イベントをバッファに書き込むのに失敗しました: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return fmt.Errorf("イベントキューが一杯です: %w", err)
		}
		return fmt.Errorf("イベントの書き込みに失敗しました: %w", err)
	}
	return nil
}

// 名前をuinput用の固定長配列に変換する
func toUinputName(name []byte) (uinputName [consts.MaxNameSize]byte) {
	// 終端の NUL を残す
	copy(uinputName[:consts.MaxNameSize-1], name)
	return uinputName
}
