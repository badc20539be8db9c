// internal/workers/media/crop-image/handler_test.go
package cropimage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type stubFetcher struct {
	data        []byte
	contentType string
	err         error
	calls       []string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, string, error) {
	f.calls = append(f.calls, rawURL)
	return f.data, f.contentType, f.err
}

// quadrantImage is a w x h image with four solid quadrants.
func quadrantImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	colors := []color.RGBA{
		{R: 220, G: 30, B: 30, A: 255},
		{R: 30, G: 200, B: 40, A: 255},
		{R: 30, G: 40, B: 210, A: 255},
		{R: 230, G: 220, B: 40, A: 255},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			q := 0
			if x >= w/2 {
				q++
			}
			if y >= h/2 {
				q += 2
			}
			img.Set(x, y, colors[q])
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeOutput(t *testing.T, out *Output) image.Image {
	t.Helper()
	d, err := models.ParseDataURI(out.CroppedImage)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", d.MediaType)
	img, err := jpeg.Decode(bytes.NewReader(d.Data))
	require.NoError(t, err)
	return img
}

func channelDiff(a, b uint32) int {
	d := int(a>>8) - int(b>>8)
	if d < 0 {
		return -d
	}
	return d
}

func assertSimilar(t *testing.T, want, got image.Image, tolerance int) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size())
	wb, gb := want.Bounds(), got.Bounds()
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			wr, wg, wbl, _ := want.At(wb.Min.X+x, wb.Min.Y+y).RGBA()
			gr, gg, gbl, _ := got.At(gb.Min.X+x, gb.Min.Y+y).RGBA()
			if channelDiff(wr, gr) > tolerance || channelDiff(wg, gg) > tolerance || channelDiff(wbl, gbl) > tolerance {
				t.Fatalf("pixel (%d,%d) differs beyond tolerance", x, y)
			}
		}
	}
}

func newTestHandler(t *testing.T, f Fetcher) *Handler {
	return NewHandler(LoadConfig(), f, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FullAreaRoundTrip(t *testing.T) {
	src := quadrantImage(64, 48)
	source := models.EncodeDataURI("image/png", pngBytes(t, src))
	handler := newTestHandler(t, nil)

	out, err := handler.Execute(context.Background(), &Input{
		ImageSource: source,
		CropArea:    &models.CropArea{X: 0, Y: 0, Width: 64, Height: 48},
	})

	require.NoError(t, err)
	assert.Equal(t, 64, out.Width)
	assert.Equal(t, 48, out.Height)
	// Quadrant edges blur under JPEG; interiors must match closely.
	got := decodeOutput(t, out)
	for _, p := range []image.Point{{8, 8}, {56, 8}, {8, 40}, {56, 40}} {
		wr, wg, wb, _ := src.At(p.X, p.Y).RGBA()
		gr, gg, gb, _ := got.At(p.X, p.Y).RGBA()
		assert.LessOrEqual(t, channelDiff(wr, gr), 12)
		assert.LessOrEqual(t, channelDiff(wg, gg), 12)
		assert.LessOrEqual(t, channelDiff(wb, gb), 12)
	}
}

func TestHandler_Execute_SubRegion(t *testing.T) {
	src := quadrantImage(64, 64)
	source := models.EncodeDataURI("image/png", pngBytes(t, src))
	handler := newTestHandler(t, nil)

	// Bottom-right quadrant only.
	out, err := handler.Execute(context.Background(), &Input{
		ImageSource: source,
		CropArea:    &models.CropArea{X: 32, Y: 32, Width: 32, Height: 32},
	})

	require.NoError(t, err)
	assertSimilar(t, src.SubImage(image.Rect(32, 32, 64, 64)), decodeOutput(t, out), 12)
}

func TestHandler_Execute_OutOfRangeIsBlank(t *testing.T) {
	src := quadrantImage(16, 16)
	source := models.EncodeDataURI("image/png", pngBytes(t, src))
	handler := newTestHandler(t, nil)

	out, err := handler.Execute(context.Background(), &Input{
		ImageSource: source,
		CropArea:    &models.CropArea{X: 100, Y: 100, Width: 8, Height: 8},
	})

	require.NoError(t, err)
	got := decodeOutput(t, out)
	r, g, b, _ := got.At(4, 4).RGBA()
	assert.LessOrEqual(t, int(r>>8), 8)
	assert.LessOrEqual(t, int(g>>8), 8)
	assert.LessOrEqual(t, int(b>>8), 8)
}

func TestHandler_Execute_RemoteSources(t *testing.T) {
	data := pngBytes(t, quadrantImage(20, 10))

	tests := []struct {
		name    string
		source  string
		fetched string
	}{
		{"blob reference", "blob:http://localhost:3000/5a1c", "http://localhost:3000/5a1c"},
		{"https url", "https://cdn.example.com/label.png", "https://cdn.example.com/label.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{data: data, contentType: "image/png"}
			handler := newTestHandler(t, fetcher)

			out, err := handler.Execute(context.Background(), &Input{
				ImageSource: tt.source,
				CropArea:    &models.CropArea{Width: 10, Height: 10},
			})

			require.NoError(t, err)
			assert.Equal(t, []string{tt.fetched}, fetcher.calls)
			assert.Equal(t, 10, out.Width)
		})
	}
}

func TestHandler_Execute_PassThrough(t *testing.T) {
	data := pngBytes(t, quadrantImage(12, 6))

	t.Run("data uri returned unchanged", func(t *testing.T) {
		source := models.EncodeDataURI("image/png", data)
		out, err := newTestHandler(t, nil).Execute(context.Background(), &Input{ImageSource: source})
		require.NoError(t, err)
		assert.Equal(t, source, out.CroppedImage)
		assert.Equal(t, 12, out.Width)
		assert.Equal(t, 6, out.Height)
	})

	t.Run("remote bytes wrapped", func(t *testing.T) {
		fetcher := &stubFetcher{data: data}
		out, err := newTestHandler(t, fetcher).Execute(context.Background(), &Input{ImageSource: "blob:http://x/1"})
		require.NoError(t, err)
		assert.Equal(t, models.EncodeDataURI("image/png", data), out.CroppedImage)
	})
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	valid := models.EncodeDataURI("image/png", pngBytes(t, quadrantImage(4, 4)))

	tests := []struct {
		name    string
		input   *Input
		fetcher *stubFetcher
		code    stderrors.ErrorCode
	}{
		{
			name:  "empty source",
			input: &Input{ImageSource: " "},
			code:  stderrors.ErrCodeInvalidInput,
		},
		{
			name:  "zero width",
			input: &Input{ImageSource: valid, CropArea: &models.CropArea{Width: 0, Height: 4}},
			code:  stderrors.ErrCodeInvalidInput,
		},
		{
			name:  "unsupported scheme",
			input: &Input{ImageSource: "ftp://example.com/a.png", CropArea: &models.CropArea{Width: 1, Height: 1}},
			code:  stderrors.ErrCodeUnsupportedImageSource,
		},
		{
			name:  "not an image",
			input: &Input{ImageSource: "data:text/plain,hello", CropArea: &models.CropArea{Width: 1, Height: 1}},
			code:  stderrors.ErrCodeImageLoadFailed,
		},
		{
			name:    "fetch fails",
			input:   &Input{ImageSource: "blob:http://x/gone", CropArea: &models.CropArea{Width: 1, Height: 1}},
			fetcher: &stubFetcher{err: errors.New("connection refused")},
			code:    stderrors.ErrCodeImageLoadFailed,
		},
		{
			name:  "missing file",
			input: &Input{ImageSource: "file:///nonexistent/label.png", CropArea: &models.CropArea{Width: 1, Height: 1}},
			code:  stderrors.ErrCodeImageLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Fetcher
			if tt.fetcher != nil {
				f = tt.fetcher
			}
			_, err := newTestHandler(t, f).Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, stderrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestHandler_Execute_LoadErrorsAreWrapped(t *testing.T) {
	_, err := newTestHandler(t, &stubFetcher{err: errors.New("boom")}).Execute(context.Background(), &Input{
		ImageSource: "https://example.com/a.png",
		CropArea:    &models.CropArea{Width: 1, Height: 1},
	})
	assert.ErrorIs(t, err, ErrImageLoad)
}

// ==========================
// Session Tests
// ==========================

func TestSession_ApplyCrop(t *testing.T) {
	source := models.EncodeDataURI("image/png", pngBytes(t, quadrantImage(32, 32)))
	s := NewSession(newTestHandler(t, nil), source)

	_, err := s.ApplyCrop(context.Background())
	assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeInvalidInput))

	s.OnCropComplete(models.CropArea{Width: 4, Height: 4})
	s.OnCropComplete(models.CropArea{X: 16, Y: 16, Width: 16, Height: 8})
	assert.True(t, s.Pending())

	uri, err := s.ApplyCrop(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Pending())

	img := decodeOutput(t, &Output{CroppedImage: uri})
	assert.Equal(t, image.Pt(16, 8), img.Bounds().Size())
}

func TestSession_Skip(t *testing.T) {
	source := models.EncodeDataURI("image/png", pngBytes(t, quadrantImage(8, 8)))
	s := NewSession(newTestHandler(t, nil), source)
	s.OnCropComplete(models.CropArea{Width: 2, Height: 2})

	uri, err := s.Skip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, source, uri)
	assert.False(t, s.Pending())
	assert.Equal(t, source, s.Source())
}
