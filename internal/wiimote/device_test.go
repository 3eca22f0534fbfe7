package wiimote

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/types"
)

// fakeSysfs は hid-wiimote の sysfs ツリーを模したディレクトリを作る
type fakeSysfs struct {
	root    string
	devRoot string
	device  string
}

func newFakeSysfs(t *testing.T) *fakeSysfs {
	t.Helper()

	root := t.TempDir()
	devRoot := t.TempDir()
	device := filepath.Join(root, "devices", "0005:057E:0306.0001")
	require.NoError(t, os.MkdirAll(device, 0755))

	driverDir := filepath.Join(root, "bus", "hid", "drivers", "wiimote")
	require.NoError(t, os.MkdirAll(driverDir, 0755))
	require.NoError(t, os.Symlink(device, filepath.Join(driverDir, "0005:057E:0306.0001")))
	require.NoError(t, os.WriteFile(filepath.Join(driverDir, "uevent"), nil, 0644))

	return &fakeSysfs{root: root, devRoot: devRoot, device: device}
}

// addInput は入力デバイスと evdev ノードを追加する
func (s *fakeSysfs) addInput(t *testing.T, n int, name string, events ...types.Event) {
	t.Helper()

	input := filepath.Join(s.device, "input", "input"+strconv.Itoa(n))
	eventDir := filepath.Join(input, "event"+strconv.Itoa(n))
	require.NoError(t, os.MkdirAll(eventDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "name"), []byte(name+"\n"), 0644))

	buf := new(bytes.Buffer)
	for _, ev := range events {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, ev))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.devRoot, "event"+strconv.Itoa(n)), buf.Bytes(), 0644))
}

func TestEnumerateAndFind(t *testing.T) {
	s := newFakeSysfs(t)

	devices, err := Enumerate(s.root)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(s.device)
	require.NoError(t, err)
	assert.Equal(t, []string{want}, devices)

	path, err := Find(s.root, 1)
	require.NoError(t, err)
	assert.Equal(t, want, path)

	_, err = Find(s.root, 2)
	assert.Error(t, err)
}

func TestEnumerateWithoutDriver(t *testing.T) {
	devices, err := Enumerate(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestAvailable(t *testing.T) {
	s := newFakeSysfs(t)
	s.addInput(t, 1, "Nintendo Wii Remote")
	s.addInput(t, 2, "Nintendo Wii Remote Accelerometer")
	s.addInput(t, 3, "Nintendo Wii Remote Nunchuk")

	dev, err := NewDevice(s.device, s.devRoot)
	require.NoError(t, err)
	defer dev.Close()

	assert.Equal(t, IfaceCore|IfaceNunchuk, dev.Available())
	assert.Equal(t, Iface(0), dev.Opened())
}

func TestOpenMissingInterfaceFails(t *testing.T) {
	s := newFakeSysfs(t)
	s.addInput(t, 1, "Nintendo Wii Remote")

	dev, err := NewDevice(s.device, s.devRoot)
	require.NoError(t, err)
	defer dev.Close()

	err = dev.Open(IfaceCore | IfaceNunchuk)
	assert.Error(t, err)
}

func TestDispatchDeliversDecodedEvents(t *testing.T) {
	s := newFakeSysfs(t)
	s.addInput(t, 1, "Nintendo Wii Remote",
		types.Event{Type: event.Key, Code: event.BtnA, Value: 1},
		types.Event{Type: event.Syn, Code: event.SynReport},
	)

	dev, err := NewDevice(s.device, s.devRoot)
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.Open(IfaceCore))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev, err := dev.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, Event{Type: EventKey, Key: KeyA, State: 1}, ev)

	// 通常ファイルの終端は切断として扱われる
	ev, err = dev.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventGone, ev.Type)

	assert.Eventually(t, func() bool { return dev.Opened() == 0 }, time.Second, 10*time.Millisecond)
}

func TestDispatchHonoursContext(t *testing.T) {
	s := newFakeSysfs(t)
	dev, err := NewDevice(s.device, s.devRoot)
	require.NoError(t, err)
	defer dev.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = dev.Dispatch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatchReportsNewNodes(t *testing.T) {
	s := newFakeSysfs(t)
	dev, err := NewDevice(s.device, s.devRoot)
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.Watch(true))
	require.NoError(t, os.WriteFile(filepath.Join(s.devRoot, "event7"), nil, 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev, err := dev.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventWatch, ev.Type)
}

func TestWatchReportsRemovedDeviceAsGone(t *testing.T) {
	s := newFakeSysfs(t)
	s.addInput(t, 1, "Nintendo Wii Remote")

	dev, err := NewDevice(s.device, s.devRoot)
	require.NoError(t, err)
	defer dev.Close()

	// コアを開かないまま取り外す
	require.NoError(t, dev.Watch(true))
	require.NoError(t, os.RemoveAll(s.device))
	require.NoError(t, os.Remove(filepath.Join(s.devRoot, "event1")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev, err := dev.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventGone, ev.Type)
	assert.Equal(t, Iface(0), dev.Available())
}
