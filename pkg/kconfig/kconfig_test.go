package kconfig

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	fails map[string]bool
	calls []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, bool) {
	key := strings.Join(append([]string{name}, args...), " ")
	s.calls = append(s.calls, key)
	if s.fails[key] {
		return []byte(key + ": failed\n"), false
	}
	return nil, true
}

// stubSource is a chain entry with fixed behavior.
type stubSource struct {
	name    string
	content []byte
	found   bool
	reads   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Read(context.Context) ([]byte, bool) {
	s.reads++
	return s.content, s.found
}

func TestPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(path, []byte("CONFIG_IKCONFIG=y\n"), 0o644))

	content, found := (&PlainFile{Path: path}).Read(context.Background())
	assert.True(t, found)
	assert.Equal(t, "CONFIG_IKCONFIG=y\n", string(content))

	_, found = (&PlainFile{Path: filepath.Join(dir, "missing")}).Read(context.Background())
	assert.False(t, found)
}

func TestProcConfigGZ(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("CONFIG_PRINTK_TIME=y\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "config.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	content, found := (&ProcConfigGZ{Path: path}).Read(context.Background())
	assert.True(t, found)
	assert.Equal(t, "CONFIG_PRINTK_TIME=y\n", string(content))
}

func TestProcConfigGZ_NotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.gz")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, found := (&ProcConfigGZ{Path: path}).Read(context.Background())
	assert.False(t, found)
}

func TestModuleLoad(t *testing.T) {
	cfg := &stubSource{name: "cfg", content: []byte("CONFIG_MODULES=y\n"), found: true}
	r := &stubRunner{fails: map[string]bool{}}

	src := &ModuleLoad{
		Runner: r,
		Load:   []string{"modprobe", "configs"},
		Unload: []string{"rmmod", "configs"},
		Config: cfg,
	}

	content, found := src.Read(context.Background())
	assert.True(t, found)
	assert.Equal(t, "CONFIG_MODULES=y\n", string(content))
	assert.Equal(t, []string{"modprobe configs", "rmmod configs"}, r.calls)
}

func TestModuleLoad_LoadFails(t *testing.T) {
	cfg := &stubSource{name: "cfg", found: true}
	r := &stubRunner{fails: map[string]bool{"modprobe configs": true}}

	src := &ModuleLoad{
		Runner: r,
		Load:   []string{"modprobe", "configs"},
		Unload: []string{"rmmod", "configs"},
		Config: cfg,
	}

	_, found := src.Read(context.Background())
	assert.False(t, found)
	assert.Zero(t, cfg.reads, "config must not be read when the module failed to load")
	assert.Equal(t, []string{"modprobe configs"}, r.calls)
}

func TestProbe_FirstSourceWins(t *testing.T) {
	first := &stubSource{name: "first", content: []byte("first\n"), found: true}
	second := &stubSource{name: "second", content: []byte("second\n"), found: true}

	p := &Probe{Sources: []Source{first, second}}

	out, ok := p.Collect(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "first\n", string(out))
	assert.Zero(t, second.reads, "later sources must not be tried after a hit")
}

func TestProbe_FallsThrough(t *testing.T) {
	miss := &stubSource{name: "miss"}
	hit := &stubSource{name: "hit", content: []byte("hit\n"), found: true}

	p := &Probe{Sources: []Source{miss, hit}}

	out, ok := p.Collect(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "hit\n", string(out))
	assert.Equal(t, 1, miss.reads)
}

func TestProbe_ExhaustionIsInformative(t *testing.T) {
	p := &Probe{Sources: []Source{&stubSource{name: "a"}, &stubSource{name: "b"}}}

	out, ok := p.Collect(context.Background())
	assert.True(t, ok, "a missing kernel config is informative, not a failure")
	assert.Equal(t, NotFoundMessage, string(out))
}

func TestDefaultSources_Order(t *testing.T) {
	srcs := DefaultSources(&stubRunner{fails: map[string]bool{}}, "6.12.0-test")
	require.Len(t, srcs, 6)

	assert.Equal(t, "/proc/config.gz", srcs[0].Name())
	assert.Equal(t, "modprobe configs", srcs[1].Name())
	assert.Equal(t, "insmod /lib/modules/6.12.0-test/kernel/kernel/configs.ko.gz", srcs[2].Name())
	assert.Equal(t, "/lib/modules/6.12.0-test/build/.config", srcs[3].Name())
	assert.Equal(t, "/boot/config-6.12.0-test", srcs[4].Name())
	assert.Equal(t, "/boot/config", srcs[5].Name())
}
