package qoiview

import (
	"encoding/binary"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/qoiview/catalog"
	"github.com/bodgit/qoiview/metrics"
	"github.com/bodgit/qoiview/qoi"
	"github.com/bodgit/qoiview/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h uint32, r, g, b byte) []byte {
	buf := []byte("qoif")
	buf = binary.BigEndian.AppendUint32(buf, w)
	buf = binary.BigEndian.AppendUint32(buf, h)
	buf = append(buf, 3, 0)
	buf = append(buf, 0xfe, r, g, b)
	for n := int(w*h) - 1; n > 0; n -= 62 {
		run := n
		if run > 62 {
			run = 62
		}
		buf = append(buf, byte(0xc0|(run-1)))
	}
	return append(buf, 0, 0, 0, 0, 0, 0, 0, 1)
}

var small = DisplayMode{Width: 8, Height: 8}

func newStore(t *testing.T, files map[string][]byte) store.Store {
	t.Helper()
	dir := t.TempDir()
	for name, b := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0644))
	}
	s, err := store.NewDir(dir)
	require.NoError(t, err)
	return s
}

func threeImages(t *testing.T) store.Store {
	return newStore(t, map[string][]byte{
		"a.qoi": solidImage(4, 4, 1, 0, 0),
		"b.qoi": solidImage(8, 8, 2, 0, 0),
		"c.qoi": solidImage(2, 3, 3, 0, 0),
	})
}

func TestNewEmpty(t *testing.T) {
	_, err := New(newStore(t, nil), small, nil)
	require.ErrorIs(t, err, catalog.ErrEmpty)
	assert.True(t, catalog.IsFatal(err))
}

func TestNewFirstImage(t *testing.T) {
	v, err := New(threeImages(t), small, nil)
	require.NoError(t, err)

	info := v.Info()
	assert.Equal(t, qoi.OK, info.Status)
	assert.Equal(t, "a.qoi", info.Name)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 4, info.Height)
	assert.Equal(t, 3, info.Channels)
	assert.Equal(t, []byte{1, 0, 0, 0xff}, v.Frame()[:4])
	assert.Len(t, v.Frame(), small.BufferSize())
}

func TestNewFirstImageFails(t *testing.T) {
	_, err := New(newStore(t, map[string][]byte{"a.qoi": []byte("junk")}), small, nil)
	assert.Equal(t, qoi.MalformedStream, qoi.StatusOf(err))
}

func TestNavigation(t *testing.T) {
	v, err := New(threeImages(t), small, nil)
	require.NoError(t, err)

	var forward []string
	for i := 0; i < 4; i++ {
		require.NoError(t, v.Next())
		forward = append(forward, v.Current())
		assert.Equal(t, v.Current(), v.Info().Name)
	}
	assert.Equal(t, []string{"b.qoi", "c.qoi", "a.qoi", "b.qoi"}, forward)

	require.NoError(t, v.Previous())
	require.NoError(t, v.Previous())
	assert.Equal(t, "c.qoi", v.Current())
	assert.Equal(t, []byte{3, 0, 0, 0xff}, v.Frame()[:4])

	m := v.Image()
	assert.Equal(t, image.Rect(0, 0, 2, 3), m.Bounds())
}

func TestFailedDecodeKeepsFrame(t *testing.T) {
	v, err := New(newStore(t, map[string][]byte{
		"a.qoi": solidImage(4, 4, 9, 9, 9),
		"b.qoi": append(solidImage(4, 4, 5, 5, 5)[:15], 0, 0, 0, 0, 0, 0, 0, 1),
	}), small, nil)
	require.NoError(t, err)

	frame := append([]byte(nil), v.Frame()...)
	info := v.Info()

	err = v.Next()
	assert.Equal(t, qoi.MalformedStream, qoi.StatusOf(err))
	assert.Equal(t, "b.qoi", v.Current())
	assert.Equal(t, frame, v.Frame())
	assert.Equal(t, info, v.Info())
	// The frame on display is still the previous image
	assert.Equal(t, "a.qoi", v.Info().Name)

	require.NoError(t, v.Next())
	assert.Equal(t, "a.qoi", v.Current())
}

func TestImageTooLarge(t *testing.T) {
	v, err := New(newStore(t, map[string][]byte{
		"a.qoi": solidImage(8, 8, 1, 1, 1),
		"b.qoi": solidImage(9, 8, 1, 1, 1),
	}), small, nil)
	require.NoError(t, err)

	err = v.Next()
	require.Error(t, err)
	assert.True(t, qoi.IsFatal(err))
}

func TestOverlay(t *testing.T) {
	v, err := New(threeImages(t), small, nil)
	require.NoError(t, err)

	assert.Equal(t, "", v.Overlay())
	assert.False(t, v.Info().Overlay)

	assert.True(t, v.ToggleOverlay())
	assert.True(t, v.Info().Overlay)
	assert.True(t, strings.HasPrefix(v.Overlay(), "a.qoi 4x4 c3 "))
	assert.True(t, strings.HasSuffix(v.Overlay(), " ms"))

	// The flag survives navigation
	require.NoError(t, v.Next())
	assert.True(t, v.Info().Overlay)
	assert.True(t, strings.HasPrefix(v.Overlay(), "b.qoi 8x8 c3 "))

	assert.False(t, v.ToggleOverlay())
	assert.Equal(t, "", v.Overlay())
}

func TestWithMetrics(t *testing.T) {
	r := metrics.New()
	v, err := New(threeImages(t), small, nil, WithMetrics(r))
	require.NoError(t, err)
	require.NoError(t, v.Next())

	s, err := r.Summary()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Decodes["ok"])
	assert.Equal(t, uint64(2), s.Count)
}

func TestWithMetricsSkipsTooLarge(t *testing.T) {
	r := metrics.New()
	v, err := New(newStore(t, map[string][]byte{
		"a.qoi": solidImage(8, 8, 1, 1, 1),
		"b.qoi": solidImage(9, 8, 1, 1, 1),
	}), small, nil, WithMetrics(r))
	require.NoError(t, err)
	require.True(t, qoi.IsFatal(v.Next()))

	s, err := r.Summary()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"ok": 1}, s.Decodes)
}

func TestDefaultMode(t *testing.T) {
	assert.Equal(t, 307200, DefaultMode.BufferSize())
}
