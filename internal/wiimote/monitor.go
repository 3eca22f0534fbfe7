package wiimote

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// hotplugDebounce の間に続いたファイルシステムイベントは1回の通知にまとめる
const hotplugDebounce = 200 * time.Millisecond

// Enumerate は hid-wiimote ドライバに接続されたデバイスの sysfs パスを返す
func Enumerate(sysRoot string) ([]string, error) {
	driverDir := filepath.Join(sysRoot, "bus", "hid", "drivers", "wiimote")
	entries, err := os.ReadDir(driverDir)
	if err != nil {
		if os.IsNotExist(err) {
			// ドライバが読み込まれていなければデバイスもない
			return nil, nil
		}
		return nil, err
	}

	var devices []string
	for _, entry := range entries {
		// bind / unbind / uevent などの属性ファイルはスキップ
		if !strings.Contains(entry.Name(), ":") {
			continue
		}
		path, err := filepath.EvalSymlinks(filepath.Join(driverDir, entry.Name()))
		if err != nil {
			continue
		}
		devices = append(devices, path)
	}
	sort.Strings(devices)

	return devices, nil
}

// Find は1から数えて num 番目のデバイスのパスを返す
func Find(sysRoot string, num int) (string, error) {
	devices, err := Enumerate(sysRoot)
	if err != nil {
		return "", fmt.Errorf("デバイス一覧の取得に失敗しました: %w", err)
	}
	if num < 1 || num > len(devices) {
		return "", fmt.Errorf("デバイス #%d が見つかりません (検出数: %d)", num, len(devices))
	}
	return devices[num-1], nil
}

// hotplugWatcher は evdev ノードの作成/削除を監視する
type hotplugWatcher struct {
	watcher  *fsnotify.Watcher
	notify   func()
	stopChan chan struct{}
}

func newHotplugWatcher(dir string, notify func()) (*hotplugWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("ディレクトリの監視に失敗しました: %s - %w", dir, err)
	}

	w := &hotplugWatcher{
		watcher:  watcher,
		notify:   notify,
		stopChan: make(chan struct{}),
	}
	go w.watchEvents()

	return w, nil
}

func (w *hotplugWatcher) stop() {
	close(w.stopChan)
	w.watcher.Close()
}

func (w *hotplugWatcher) watchEvents() {
	timer := time.NewTimer(hotplugDebounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-w.stopChan:
			timer.Stop()
			return

		case <-timer.C:
			if pending {
				pending = false
				w.notify()
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(event.Name), "event") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if !pending {
				pending = true
				timer.Reset(hotplugDebounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("ファイルシステム監視エラー: %v", err)
		}
	}
}
