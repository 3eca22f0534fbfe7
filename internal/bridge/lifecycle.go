package bridge

import (
	"fmt"
	"log"
	"time"

	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/features"
	"github.com/char5742/wii2gamepad/internal/keymap"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

// Hardware はWiiリモコンのインターフェースを操作する
type Hardware interface {
	Available() wiimote.Iface
	Opened() wiimote.Iface
	Open(mask wiimote.Iface) error
}

// GamepadFactory は仮想ゲームパッドを作成する
type GamepadFactory func(spec features.GamepadSpec) (features.Gamepad, error)

// Session は現在使用中の拡張と仮想ゲームパッド。変更時は作り直される
type Session struct {
	Kind     keymap.Kind
	Table    keymap.Table
	Identity keymap.Identity
	Gamepad  features.Gamepad
}

// LifecycleConfig は Lifecycle の動作設定
type LifecycleConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	AbsInfo     features.AbsInfo
	DefaultName string
}

// Lifecycle は接続中の拡張に合わせて仮想ゲームパッドを作り直す
type Lifecycle struct {
	hw       Hardware
	registry *keymap.Registry
	create   GamepadFactory
	cfg      LifecycleConfig
	sleep    func(time.Duration)

	session *Session
}

// NewLifecycle は新しい Lifecycle を作成する
func NewLifecycle(hw Hardware, registry *keymap.Registry, create GamepadFactory, cfg LifecycleConfig) *Lifecycle {
	return &Lifecycle{
		hw:       hw,
		registry: registry,
		create:   create,
		cfg:      cfg,
		sleep:    time.Sleep,
	}
}

// Session は現在のセッションを返す。Refresh 前は nil
func (l *Lifecycle) Session() *Session {
	return l.session
}

// Refresh はインターフェースを開き直し、必要なら仮想ゲームパッドを作り直す
// 仮想ゲームパッドの作成に失敗した場合だけエラーを返す
func (l *Lifecycle) Refresh() error {
	available := l.hw.Available() & wiimote.Supported

	// 拡張を挿した直後はすぐに開けないことがあるので何度か試す
	for tries := 0; ; {
		err := l.hw.Open(available)
		if err == nil {
			break
		}
		tries++
		if tries > l.cfg.MaxRetries {
			log.Printf("インターフェースを開けませんでした: %v", err)
			break
		}
		log.Printf("インターフェースを開けません。再試行します (%d/%d)", tries, l.cfg.MaxRetries)
		l.sleep(l.cfg.RetryDelay)
	}

	opened := l.hw.Opened()
	if opened&available != available {
		log.Printf("一部のインターフェースを開けませんでした (利用可能: %s, 使用中: %s)", available, opened)
	}

	kind := SelectKind(opened)
	if l.session != nil && l.session.Kind == kind {
		return nil
	}

	if l.session != nil {
		if err := l.session.Gamepad.Close(); err != nil {
			log.Printf("仮想ゲームパッドの破棄に失敗しました: %v", err)
		}
		l.session = nil
	}

	table := l.registry.Table(kind)
	identity := l.registry.Identity(kind)

	gamepad, err := l.create(l.gamepadSpec(table, identity))
	if err != nil {
		return fmt.Errorf("仮想ゲームパッドの作成に失敗しました: %w", err)
	}

	l.session = &Session{
		Kind:     kind,
		Table:    table,
		Identity: identity,
		Gamepad:  gamepad,
	}

	switch kind {
	case keymap.ClassicController:
		log.Println("クラシックコントローラーを使用します")
	case keymap.Nunchuk:
		log.Println("Wiiリモコンとヌンチャクを使用します")
	default:
		log.Println("Wiiリモコンのみを使用します")
	}
	return nil
}

// Close は仮想ゲームパッドを破棄する
func (l *Lifecycle) Close() error {
	if l.session == nil {
		return nil
	}
	err := l.session.Gamepad.Close()
	l.session = nil
	return err
}

// SelectKind は開いているインターフェースから使う拡張を1つ選ぶ
// 優先度はクラシックコントローラー > ヌンチャク > リモコン単体
func SelectKind(opened wiimote.Iface) keymap.Kind {
	switch {
	case opened&wiimote.IfaceClassicController != 0:
		return keymap.ClassicController
	case opened&wiimote.IfaceNunchuk != 0:
		return keymap.Nunchuk
	default:
		return keymap.Core
	}
}

// gamepadSpec は割り当て表から仮想ゲームパッドの内容を決める
// スティック用の ABS_X / ABS_Y は常に有効にする
func (l *Lifecycle) gamepadSpec(table keymap.Table, identity keymap.Identity) features.GamepadSpec {
	spec := features.GamepadSpec{
		Name:    identity.Name,
		Vendor:  identity.Vendor,
		Product: identity.Product,
		Abs:     []uint16{event.AbsX, event.AbsY},
		AbsInfo: l.cfg.AbsInfo,
	}
	if spec.Name == "" {
		spec.Name = l.cfg.DefaultName
	}

	seen := map[keymap.Binding]bool{
		{Category: keymap.CategoryAbs, Code: event.AbsX}: true,
		{Category: keymap.CategoryAbs, Code: event.AbsY}: true,
	}
	for key := wiimote.Key(0); key < wiimote.KeyNum; key++ {
		b, ok := table.Lookup(key)
		if !ok {
			continue
		}
		capability := keymap.Binding{Category: b.Category, Code: b.Code}
		if seen[capability] {
			continue
		}
		seen[capability] = true

		switch b.Category {
		case keymap.CategoryKey:
			spec.Keys = append(spec.Keys, b.Code)
		case keymap.CategoryRel:
			spec.Rels = append(spec.Rels, b.Code)
		case keymap.CategoryAbs:
			spec.Abs = append(spec.Abs, b.Code)
		}
	}
	return spec
}
