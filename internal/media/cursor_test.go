package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorToken(t *testing.T) {
	c := Cursor{Page: 2, Sort: "-views", Filter: &Filter{Title: "cat", Categories: "Action,-Romance"}}

	got, err := DecodeCursor(c.Encode())
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestDecodeCursorEmpty(t *testing.T) {
	c, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, Cursor{}, c)
	assert.False(t, c.Exhausted())
}

func TestDecodeCursorInvalid(t *testing.T) {
	tests := map[string]string{
		"not base64":    "!!!",
		"not json":      "bm90IGpzb24",
		"negative page": Cursor{Page: -1}.Encode(),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCursor(token)
			assert.Error(t, err)
		})
	}
}

func TestDetailTitle(t *testing.T) {
	assert.Equal(t, "", Detail{}.Title())
	assert.Equal(t, "A", Detail{Titles: []string{"A", "B"}}.Title())
}

func TestChapterHasVolume(t *testing.T) {
	assert.False(t, Chapter{}.HasVolume())
	assert.True(t, Chapter{Volume: 1}.HasVolume())
}
