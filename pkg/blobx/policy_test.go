package blobx_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/aussiebroadwan/storefront/pkg/blobx"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	p := blobx.DefaultImagePolicy

	cases := []struct {
		w, h, ww, wh int
	}{
		{600, 300, 500, 250},
		{300, 600, 250, 500},
		{1000, 1000, 500, 500},
		{500, 500, 500, 500},
		{200, 100, 200, 100},
		{5000, 1, 500, 1},
	}
	for _, c := range cases {
		w, h := p.Fit(c.w, c.h)
		require.Equal(t, c.ww, w, "%dx%d", c.w, c.h)
		require.Equal(t, c.wh, h, "%dx%d", c.w, c.h)
	}
}

func TestApplyResizesLargeImage(t *testing.T) {
	out, err := blobx.DefaultImagePolicy.Apply(pngOf(t, 600, 300), "png", "image/png")
	require.NoError(t, err)
	require.True(t, out.Resized)
	require.Equal(t, "image/png", out.ContentType)

	cfg, err := png.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Width)
	require.Equal(t, 250, cfg.Height)
}

func TestApplyKeepsSmallImage(t *testing.T) {
	in := pngOf(t, 200, 100)

	out, err := blobx.DefaultImagePolicy.Apply(in, "png", "image/png")
	require.NoError(t, err)
	require.False(t, out.Resized)
	require.Equal(t, in, out.Data)
	require.Equal(t, 200, out.Width)
}

func TestApplyJPEGStaysJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 800, 800)), nil))

	out, err := blobx.DefaultImagePolicy.Apply(buf.Bytes(), "jpg", "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", out.ContentType)
	require.Equal(t, "jpg", out.Ext)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Width)
	require.Equal(t, 500, cfg.Height)
}

func TestApplyRejectsGarbage(t *testing.T) {
	_, err := blobx.DefaultImagePolicy.Apply([]byte("\x89PNG\r\n\x1a\nnot really"), "png", "image/png")
	require.ErrorIs(t, err, blobx.ErrUndecodable)
}

// pngHeader is a PNG signature plus an IHDR for a w x h grayscale image and
// nothing else. DecodeConfig accepts it; a full decode would fail.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth, color type 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestApplyRejectsHugeDimensionsBeforeDecoding(t *testing.T) {
	data := pngHeader(20000, 20000)
	require.Less(t, len(data), 64)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 20000, cfg.Width)

	_, err = blobx.DefaultImagePolicy.Apply(data, "png", "image/png")
	require.ErrorIs(t, err, blobx.ErrTooManyPixels)

	// A policy without MaxPixels still gets the default ceiling.
	_, err = blobx.ImagePolicy{MaxWidth: 500, MaxHeight: 500}.Apply(data, "png", "image/png")
	require.ErrorIs(t, err, blobx.ErrTooManyPixels)
}

func TestApplyMaxPixels(t *testing.T) {
	p := blobx.ImagePolicy{MaxWidth: 500, MaxHeight: 500, MaxPixels: 400}

	_, err := p.Apply(pngOf(t, 20, 20), "png", "image/png")
	require.NoError(t, err)

	_, err = p.Apply(pngOf(t, 21, 20), "png", "image/png")
	require.ErrorIs(t, err, blobx.ErrTooManyPixels)
}
