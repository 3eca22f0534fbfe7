package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/char5742/wii2gamepad/internal/keymap"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

// Device はサービスが使うハードウェア層の機能
type Device interface {
	Hardware
	Dispatch(ctx context.Context) (wiimote.Event, error)
	Close() error
}

// Service はWiiリモコンのイベントを仮想ゲームパッドに流すメインループを管理する
type Service struct {
	dev        Device
	lifecycle  *Lifecycle
	translator *Translator
}

// NewService は新しいサービスを作成する
func NewService(dev Device, registry *keymap.Registry, create GamepadFactory, cfg LifecycleConfig) *Service {
	lifecycle := NewLifecycle(dev, registry, create, cfg)
	return &Service{
		dev:        dev,
		lifecycle:  lifecycle,
		translator: NewTranslator(lifecycle, cfg.AbsInfo.Max),
	}
}

// Lifecycle は拡張の管理を返す
func (s *Service) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// Run は ctx がキャンセルされるか、リモコンが切断されるまでイベントを処理する
// 割り込みと切断は nil を返す
func (s *Service) Run(ctx context.Context) error {
	if err := s.lifecycle.Refresh(); err != nil {
		return err
	}

	log.Println("実行中です (Ctrl-C で終了)")

	for {
		ev, err := s.dev.Dispatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("シャットダウンします...")
				return nil
			}
			return fmt.Errorf("Wiiリモコンのイベントを取得できませんでした: %w", err)
		}

		if err := s.translator.Handle(ev); err != nil {
			if errors.Is(err, ErrDisconnected) {
				log.Println("Wiiリモコンが切断されました")
				return nil
			}
			return err
		}
	}
}

// Close は仮想ゲームパッドを破棄してからハードウェアを解放する
func (s *Service) Close() error {
	gamepadErr := s.lifecycle.Close()
	devErr := s.dev.Close()
	return errors.Join(gamepadErr, devErr)
}
