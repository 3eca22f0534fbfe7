package keymap

import (
	"fmt"
	"os"

	"github.com/char5742/wii2gamepad/internal/wiimote"
)

// Registry は解決済みのキーマップ。作成後は変更されない
type Registry struct {
	tables     [kindCount]Table
	identities [kindCount]Identity
}

// Load はキーマップファイルを読み込んで Registry を作成する
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("キーマップファイルを開けませんでした: %w", err)
	}
	return Parse(data)
}

// Lookup は拡張の種類と物理ボタンから割り当てを引く
func (r *Registry) Lookup(kind Kind, key wiimote.Key) (Binding, bool) {
	if !kind.valid() {
		return Binding{}, false
	}
	return r.tables[kind].Lookup(key)
}

// Table は拡張の種類に対応する割り当て表のコピーを返す
func (r *Registry) Table(kind Kind) Table {
	if !kind.valid() {
		return Table{}
	}
	return r.tables[kind]
}

// Identity は拡張の種類に対応するデバイス識別情報を返す
func (r *Registry) Identity(kind Kind) Identity {
	if !kind.valid() {
		return Identity{}
	}
	return r.identities[kind]
}

func (k Kind) valid() bool {
	return k >= 0 && k < kindCount
}
