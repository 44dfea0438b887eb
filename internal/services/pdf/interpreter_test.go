package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretPage(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []string
	}{
		{"literal strings", "BT /F1 12 Tf 100 200 Td (Hello) Tj (World) Tj ET", []string{"Hello", "World"}},
		{"TJ array word gap", "BT /F1 12 Tf [(Hello) -250 (world)] TJ ET", []string{"Hello world"}},
		{"TJ kerning is not a gap", "BT /F1 12 Tf [(W) 80 (ave)] TJ ET", []string{"Wave"}},
		{"hex string", "BT /F1 12 Tf <48656C6C6F> Tj ET", []string{"Hello"}},
		{"escapes", `BT /F1 12 Tf (a\(b\)) Tj (\101\102) Tj ET`, []string{"a(b)", "AB"}},
		{"blank text skipped", "BT /F1 12 Tf (   ) Tj (x) Tj ET", []string{"x"}},
		{"mirrored text skipped", "-1 0 0 1 0 0 cm BT /F1 12 Tf (gone) Tj ET", nil},
		{"inline image skipped", "BI /W 1 /H 1 /BPC 8 ID \x00(\xff EI BT /F1 12 Tf (after) Tj ET", []string{"after"}},
		{"winansi decoding", "BT /F1 12 Tf (caf\xe9) Tj ET", []string{"café"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragments, err := interpretPage([]byte(tt.stream), 0, nil)
			require.NoError(t, err)

			var got []string
			for _, f := range fragments {
				got = append(got, f.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpretPage_Positions(t *testing.T) {
	fragments, err := interpretPage([]byte("BT /F1 12 Tf 1 0 0 1 100 200 Tm (Hello) Tj (World) Tj ET"), 3, nil)
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	first := fragments[0]
	assert.Equal(t, uint(3), first.PageIndex)
	assert.InDelta(t, 100, first.X, 1e-9)
	assert.InDelta(t, 200, first.Y, 1e-9)
	assert.InDelta(t, 36, first.Width, 1e-9)
	assert.InDelta(t, 12, first.Height, 1e-9)

	// the text matrix advances past the first string
	assert.InDelta(t, 136, fragments[1].X, 1e-9)
	assert.InDelta(t, 200, fragments[1].Y, 1e-9)
}

func TestInterpretPage_TransformsAndState(t *testing.T) {
	t.Run("cm scales and translates", func(t *testing.T) {
		fragments, err := interpretPage([]byte("2 0 0 2 10 20 cm BT /F1 10 Tf 5 5 Td (Hi) Tj ET"), 0, nil)
		require.NoError(t, err)
		require.Len(t, fragments, 1)

		assert.InDelta(t, 20, fragments[0].X, 1e-9)
		assert.InDelta(t, 30, fragments[0].Y, 1e-9)
		assert.InDelta(t, 20, fragments[0].Height, 1e-9)
	})

	t.Run("Q restores the transform", func(t *testing.T) {
		fragments, err := interpretPage([]byte("q 2 0 0 2 0 0 cm Q BT /F1 10 Tf (a) Tj ET"), 0, nil)
		require.NoError(t, err)
		require.Len(t, fragments, 1)
		assert.InDelta(t, 10, fragments[0].Height, 1e-9)
	})

	t.Run("leading moves to the next line", func(t *testing.T) {
		fragments, err := interpretPage([]byte("BT /F1 10 Tf 12 TL 50 100 Td (a) Tj T* (b) Tj ET"), 0, nil)
		require.NoError(t, err)
		require.Len(t, fragments, 2)

		assert.InDelta(t, 50, fragments[1].X, 1e-9)
		assert.InDelta(t, 88, fragments[1].Y, 1e-9)
	})

	t.Run("font size carries across text objects", func(t *testing.T) {
		fragments, err := interpretPage([]byte("BT /F1 14 Tf ET BT 10 10 Td (a) Tj ET"), 0, nil)
		require.NoError(t, err)
		require.Len(t, fragments, 1)
		assert.InDelta(t, 14, fragments[0].Height, 1e-9)
	})
}

func TestInterpretPage_UnterminatedString(t *testing.T) {
	_, err := interpretPage([]byte("BT /F1 12 Tf (never closed Tj ET"), 0, nil)
	assert.Error(t, err)
}
