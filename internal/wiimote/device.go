package wiimote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/char5742/wii2gamepad/internal/consts"
	"github.com/char5742/wii2gamepad/internal/types"
)

// Device は hid-wiimote ドライバに接続された1台のWiiリモコン
type Device struct {
	syspath string
	devRoot string

	mutex  sync.Mutex
	opened map[Iface]*os.File

	events chan Event
	errs   chan error
	done   chan struct{}
	once   sync.Once

	watcher *hotplugWatcher
}

// NewDevice は sysfs 上のデバイスパスから Device を作成する
// devRoot は evdev ノードのあるディレクトリ（通常は /dev/input）
func NewDevice(syspath, devRoot string) (*Device, error) {
	if _, err := os.Stat(syspath); err != nil {
		return nil, fmt.Errorf("デバイスが見つかりません: %w", err)
	}
	return &Device{
		syspath: syspath,
		devRoot: devRoot,
		opened:  make(map[Iface]*os.File),
		events:  make(chan Event, 64),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}, nil
}

// Path は sysfs 上のデバイスパスを返す
func (d *Device) Path() string {
	return d.syspath
}

// Available は現在利用可能なインターフェースを返す
func (d *Device) Available() Iface {
	nodes, err := d.scanNodes()
	if err != nil {
		log.Printf("インターフェースの検出に失敗しました: %v", err)
		return 0
	}
	var mask Iface
	for iface := range nodes {
		mask |= iface
	}
	return mask
}

// Opened は現在開いているインターフェースを返す
func (d *Device) Opened() Iface {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var mask Iface
	for iface := range d.opened {
		mask |= iface
	}
	return mask
}

// Open は指定されたインターフェースを開く。既に開いているものはそのまま
// 1つでも開けなかった場合はエラーを返すが、開けたものは開いたままになる
func (d *Device) Open(mask Iface) error {
	nodes, err := d.scanNodes()
	if err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var failed Iface
	for _, iface := range ifaceOrder {
		if mask&iface == 0 {
			continue
		}
		if _, ok := d.opened[iface]; ok {
			continue
		}
		node, ok := nodes[iface]
		if !ok {
			failed |= iface
			continue
		}
		f, err := os.OpenFile(node, syscall.O_RDONLY|syscall.O_NONBLOCK, 0)
		if err != nil {
			log.Printf("%s を開けませんでした [path=%s]: %v", iface, node, err)
			failed |= iface
			continue
		}
		d.opened[iface] = f
		go d.readLoop(iface, f)
	}

	if failed != 0 {
		return fmt.Errorf("インターフェースを開けませんでした: %s", failed)
	}
	return nil
}

// CloseIfaces は指定されたインターフェースを閉じる
func (d *Device) CloseIfaces(mask Iface) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for iface, f := range d.opened {
		if mask&iface == 0 {
			continue
		}
		_ = f.Close()
		delete(d.opened, iface)
	}
}

// Watch はホットプラグ通知 (EventWatch / EventGone) の有効/無効を切り替える
func (d *Device) Watch(enable bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !enable {
		if d.watcher != nil {
			d.watcher.stop()
			d.watcher = nil
		}
		return nil
	}
	if d.watcher != nil {
		return nil
	}
	w, err := newHotplugWatcher(d.devRoot, d.hotplug)
	if err != nil {
		return fmt.Errorf("ホットプラグ監視の初期化に失敗しました: %w", err)
	}
	d.watcher = w
	return nil
}

// hotplug は evdev ノードの変化を通知する
// sysfs からデバイス自体が消えていれば、コアを開いていなくても切断として扱う
func (d *Device) hotplug() {
	if _, err := os.Stat(d.syspath); errors.Is(err, os.ErrNotExist) {
		d.send(Event{Type: EventGone})
		return
	}
	d.send(Event{Type: EventWatch})
}

// Dispatch は次のイベントが届くまでブロックする
func (d *Device) Dispatch(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case ev := <-d.events:
		return ev, nil
	case err := <-d.errs:
		return Event{}, err
	}
}

// Close はすべてのインターフェースとホットプラグ監視を閉じる
func (d *Device) Close() error {
	d.once.Do(func() { close(d.done) })
	if err := d.Watch(false); err != nil {
		return err
	}
	d.CloseIfaces(Supported)
	return nil
}

// scanNodes は sysfs を走査して各インターフェースの evdev ノードを返す
func (d *Device) scanNodes() (map[Iface]string, error) {
	inputs, err := filepath.Glob(filepath.Join(d.syspath, "input", "input*"))
	if err != nil {
		return nil, err
	}

	nodes := make(map[Iface]string)
	for _, input := range inputs {
		name, err := os.ReadFile(filepath.Join(input, "name"))
		if err != nil {
			continue
		}
		iface, ok := ifaceDeviceNames[strings.TrimSpace(string(name))]
		if !ok {
			continue
		}
		events, err := filepath.Glob(filepath.Join(input, "event*"))
		if err != nil || len(events) == 0 {
			// ノードがまだ作られていない
			continue
		}
		nodes[iface] = filepath.Join(d.devRoot, filepath.Base(events[0]))
	}
	return nodes, nil
}

func (d *Device) readLoop(iface Iface, f *os.File) {
	dec := newDecoder(iface)
	buf := make([]byte, consts.EventSize)

	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			d.forget(iface, f)
			switch {
			case errors.Is(err, os.ErrClosed):
				return
			case errors.Is(err, unix.ENODEV), errors.Is(err, io.EOF):
				if iface == IfaceCore {
					d.send(Event{Type: EventGone})
				} else {
					log.Printf("%s が取り外されました", iface)
					d.send(Event{Type: EventWatch})
				}
				return
			default:
				d.fail(fmt.Errorf("%s からの読み込みに失敗しました: %w", iface, err))
				return
			}
		}

		ev, err := types.ParseEvent(buf)
		if err != nil {
			d.fail(err)
			return
		}
		if out, ok := dec.feed(ev); ok {
			d.send(out)
		}
	}
}

// forget は読み込みが終わったファイルを開いているインターフェースから外す
func (d *Device) forget(iface Iface, f *os.File) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.opened[iface] == f {
		_ = f.Close()
		delete(d.opened, iface)
	}
}

func (d *Device) send(ev Event) {
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

func (d *Device) fail(err error) {
	select {
	case d.errs <- err:
	case <-d.done:
	default:
		log.Printf("エラーを破棄しました: %v", err)
	}
}
