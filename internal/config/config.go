package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultKeymapPath はキーマップファイルが指定されなかったときのパス
const DefaultKeymapPath = "default.cfg"

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Keymap   KeymapConfig   `toml:"keymap"`
	Retry    RetryConfig    `toml:"retry"`
	Axis     AxisConfig     `toml:"axis"`
	Uinput   UinputConfig   `toml:"uinput"`
	Hardware HardwareConfig `toml:"hardware"`
}

// KeymapConfig はキーマップファイルの設定
type KeymapConfig struct {
	Path string `toml:"path"`
}

// RetryConfig はインターフェースを開き直すときの設定
type RetryConfig struct {
	MaxRetries int           `toml:"max_retries"`
	Delay      time.Duration `toml:"delay"`
}

// AxisConfig は仮想ゲームパッドの絶対軸の設定
type AxisConfig struct {
	Max  int32 `toml:"max"`
	Fuzz int32 `toml:"fuzz"`
	Flat int32 `toml:"flat"`
}

// UinputConfig は仮想デバイスの設定
type UinputConfig struct {
	Path        string `toml:"path"`
	DefaultName string `toml:"default_name"`
}

// HardwareConfig はWiiリモコンを探す場所の設定
type HardwareConfig struct {
	SysfsRoot string `toml:"sysfs_root"`
	DevRoot   string `toml:"dev_root"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Keymap: KeymapConfig{
			Path: DefaultKeymapPath,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			Delay:      time.Second,
		},
		Axis: AxisConfig{
			Max:  98,
			Fuzz: 2,
			Flat: 4,
		},
		Uinput: UinputConfig{
			Path:        "/dev/uinput",
			DefaultName: "Wii Remote Gamepad",
		},
		Hardware: HardwareConfig{
			SysfsRoot: "/sys",
			DevRoot:   "/dev/input",
		},
	}
}

// GetDefaultConfigDir は設定ファイルを置くディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wii2gamepad"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	// 設定ファイルの読み込み（書かれていない項目はデフォルトのまま）
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// ファイルを開く（なければ作成）
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// TOML形式でエンコードして書き込み
	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}
