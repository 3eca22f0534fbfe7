package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/char5742/wii2gamepad/internal/bridge"
	"github.com/char5742/wii2gamepad/internal/config"
	"github.com/char5742/wii2gamepad/internal/features"
	"github.com/char5742/wii2gamepad/internal/keymap"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

func main() {
	if err := run(); err != nil {
		log.Printf("エラー: %v", err)
		os.Exit(1)
	}
}

// options はコマンドラインで指定された値
type options struct {
	keymapPath string
	maxRetries int
	configPath string
	dump       bool
}

// newFlagSet はコマンドライン引数の定義を作る
// 再試行回数のデフォルトはデフォルト設定と同じ値を表示する
func newFlagSet(name string, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVarP(&opts.keymapPath, "keymap", "m", config.DefaultKeymapPath, "キーマップファイルのパス (指定しない場合は設定ファイルの値を使用)")
	fs.IntVarP(&opts.maxRetries, "retries", "r", config.DefaultConfig().Retry.MaxRetries, "インターフェースを開くときの最大再試行回数")
	fs.StringVarP(&opts.configPath, "config", "c", "", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)")
	fs.BoolVar(&opts.dump, "dump", false, "キーマップを YAML で表示して終了します")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "使い方: %s [options] <device-number>\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func run() error {
	// コマンドライン引数の解析
	var opts options
	flags := newFlagSet(filepath.Base(os.Args[0]), &opts)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg := loadConfig(opts.configPath)

	// コマンドラインの指定は設定ファイルより優先する
	if flags.Changed("keymap") {
		cfg.Keymap.Path = opts.keymapPath
	}
	if flags.Changed("retries") {
		if opts.maxRetries < 0 {
			return fmt.Errorf("再試行回数が不正です: %d", opts.maxRetries)
		}
		cfg.Retry.MaxRetries = opts.maxRetries
	}

	registry, err := keymap.Load(cfg.Keymap.Path)
	if err != nil {
		return err
	}
	log.Printf("キーマップを読み込みました: %s", cfg.Keymap.Path)

	if opts.dump {
		return keymap.Dump(os.Stdout, registry)
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("デバイス番号を指定してください")
	}
	num, err := strconv.Atoi(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("デバイス番号が不正です: %q", flags.Arg(0))
	}

	syspath, err := wiimote.Find(cfg.Hardware.SysfsRoot, num)
	if err != nil {
		return err
	}
	dev, err := wiimote.NewDevice(syspath, cfg.Hardware.DevRoot)
	if err != nil {
		return err
	}
	log.Printf("Wiiリモコンを使用します: %s", dev.Path())

	if err := dev.Watch(true); err != nil {
		closeLogged(dev)
		return fmt.Errorf("ホットプラグの監視を開始できませんでした: %w", err)
	}

	create := func(spec features.GamepadSpec) (features.Gamepad, error) {
		return features.CreateGamepad(cfg.Uinput.Path, spec)
	}
	service := bridge.NewService(dev, registry, create, bridge.LifecycleConfig{
		MaxRetries: cfg.Retry.MaxRetries,
		RetryDelay: cfg.Retry.Delay,
		AbsInfo: features.AbsInfo{
			Max:  cfg.Axis.Max,
			Fuzz: cfg.Axis.Fuzz,
			Flat: cfg.Axis.Flat,
		},
		DefaultName: cfg.Uinput.DefaultName,
	})
	defer closeLogged(service)

	// シグナルハンドラの設定
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return service.Run(ctx)
}

// loadConfig は設定ファイルを読み込む。失敗した場合はデフォルト設定を使う
func loadConfig(path string) *config.Config {
	if path == "" {
		configDir, err := config.GetDefaultConfigDir()
		if err != nil {
			return config.DefaultConfig()
		}
		path = filepath.Join(configDir, "config.toml")
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("設定ファイルの読み込みに失敗しました: %v\nデフォルト設定を使用します", err)
		return config.DefaultConfig()
	}
	log.Printf("設定ファイルを読み込みました: %s", path)
	return cfg
}

// closeLogged は c を閉じ、失敗したらログに残す
func closeLogged(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("終了処理に失敗しました: %v", err)
	}
}
