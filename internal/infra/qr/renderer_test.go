//go:build unit

package qr_test

import (
	"bytes"
	"image/png"
	"testing"

	"rogu-booking/internal/infra/qr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererPNG(t *testing.T) {
	t.Run("renders a square png of the requested size", func(t *testing.T) {
		out, err := qr.NewRenderer(128).PNG("0123456789abcdef0123456789abcdef")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 128, img.Bounds().Dx())
		assert.Equal(t, 128, img.Bounds().Dy())
	})

	t.Run("non-positive size falls back to the default", func(t *testing.T) {
		out, err := qr.NewRenderer(0).PNG("token")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, qr.DefaultSize, img.Bounds().Dx())
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		_, err := qr.NewRenderer(64).PNG("")
		assert.Error(t, err)
	})
}
