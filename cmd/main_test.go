package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagDefaultsMatchDefaultConfig(t *testing.T) {
	var opts options
	fs := newFlagSet("wii2gamepad", &opts)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, 3, opts.maxRetries)
	assert.Equal(t, "default.cfg", opts.keymapPath)
	assert.Contains(t, fs.FlagUsages(), "(default 3)")
	assert.False(t, fs.Changed("retries"))
}

func TestFlagsOverride(t *testing.T) {
	var opts options
	fs := newFlagSet("wii2gamepad", &opts)
	require.NoError(t, fs.Parse([]string{"-m", "classic.cfg", "-r", "0", "--dump", "2"}))

	assert.Equal(t, "classic.cfg", opts.keymapPath)
	assert.Equal(t, 0, opts.maxRetries)
	assert.True(t, opts.dump)
	assert.True(t, fs.Changed("retries"))
	assert.Equal(t, []string{"2"}, fs.Args())
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("device busy") }

func TestCloseLoggedReportsError(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	closeLogged(failingCloser{})
	assert.Contains(t, buf.String(), "device busy")
}
